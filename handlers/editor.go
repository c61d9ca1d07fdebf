package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"

	"quotelines/logger"
	"quotelines/metrics"
	"quotelines/quote"
	"quotelines/services"
	"quotelines/store"
)

// EditorView is the editor state returned by every editor endpoint.
type EditorView struct {
	QuoteID        string               `json:"quoteId"`
	Rows           []quote.Row          `json:"rows"`
	Selected       int                  `json:"selected"`
	Candidates     []quote.Candidate    `json:"candidates"`
	OverallRate    float64              `json:"overallRate"`
	RateOptions    []string             `json:"rateOptions"`
	PendingDeletes []string             `json:"pendingDeletes"`
	Totals         services.QuoteTotals `json:"totals"`
	Notifications  []quote.Notification `json:"notifications"`
	Error          string               `json:"error,omitempty"`
}

func snapshot(ed *quote.Editor) EditorView {
	return EditorView{
		QuoteID:        ed.QuoteID(),
		Rows:           ed.Rows(),
		Selected:       ed.Selected(),
		Candidates:     ed.Candidates(),
		OverallRate:    ed.OverallRate(),
		RateOptions:    quote.OverallDiscountOptions,
		PendingDeletes: ed.PendingDeletes(),
		Totals:         ed.Totals(),
	}
}

// commandBody carries the arguments of every editor command; each command
// reads only the fields it needs.
type commandBody struct {
	Index     int    `json:"index" validate:"gte=0"`
	RowID     int64  `json:"rowId" validate:"gte=0"`
	Field     string `json:"field" validate:"max=32"`
	Value     any    `json:"value"`
	Rate      any    `json:"rate"`
	Term      string `json:"term" validate:"max=200"`
	ProductID string `json:"productId" validate:"max=64"`
}

// editorCommand runs on the session loop. ctx outlives the request.
type editorCommand func(ctx context.Context, ed *quote.Editor, body commandBody) error

// sessionFor resolves the quote's editor session, writing the error response
// itself when it cannot.
func sessionFor(e *core.RequestEvent, reg *EditorRegistry) (*Session, bool, error) {
	quoteID := e.Request.PathValue("quoteId")
	if quoteID == "" {
		return nil, false, ErrorToast(e, http.StatusBadRequest, "Missing quote ID")
	}
	s, err := reg.Get(e.Request.Context(), quoteID)
	if errors.Is(err, store.ErrQuoteNotFound) {
		return nil, false, ErrorToast(e, http.StatusNotFound, "Quote not found")
	}
	if err != nil {
		reg.log.Error(reg.log.WithQuoteID(e.Request.Context(), quoteID), "open editor session", err)
		return nil, false, ErrorToast(e, http.StatusInternalServerError, "Failed to load items")
	}
	return s, true, nil
}

// respond writes the view, mirrors the latest notification into a toast and
// maps the command error to a status code.
func respond(e *core.RequestEvent, log *logger.Logger, view EditorView, cmdErr error) error {
	if len(view.Notifications) > 0 {
		last := view.Notifications[len(view.Notifications)-1]
		SetToast(e, toastType(last.Severity), last.Message)
	}

	status := http.StatusOK
	if cmdErr != nil {
		view.Error = cmdErr.Error()
		status = http.StatusInternalServerError
		if quote.IsRejection(cmdErr) {
			status = http.StatusUnprocessableEntity
		} else {
			log.Error(log.WithQuoteID(e.Request.Context(), view.QuoteID), "editor command failed", cmdErr)
		}
	}
	return e.JSON(status, view)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case quote.IsRejection(err):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeFailed
	}
}

func toastType(s quote.Severity) string {
	if s == quote.SeverityInfo {
		return "success"
	}
	return string(s)
}

// HandleEditorState returns the current editor state for a quote.
func HandleEditorState(reg *EditorRegistry) func(*core.RequestEvent) error {
	return handleCommand(reg, "state", func(context.Context, *quote.Editor, commandBody) error { return nil })
}

func handleCommand(reg *EditorRegistry, name string, cmd editorCommand) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var body commandBody
		if err := e.BindBody(&body); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid request body")
		}
		if msg, ok := validateBody(&body); !ok {
			return ErrorToast(e, http.StatusBadRequest, msg)
		}

		s, ok, err := sessionFor(e, reg)
		if !ok {
			return err
		}

		var view EditorView
		var cmdErr error
		notes, err := s.Do(e.Request.Context(), func(ed *quote.Editor) {
			cmdErr = cmd(s.ctx, ed, body)
			view = snapshot(ed)
		})
		if err != nil {
			return ErrorToast(e, http.StatusServiceUnavailable, "Editor is not available")
		}
		view.Notifications = notes
		reg.metrics.ObserveCommand(name, outcomeOf(cmdErr))
		return respond(e, reg.log, view, cmdErr)
	}
}

func HandleEditorSelect(reg *EditorRegistry) func(*core.RequestEvent) error {
	return handleCommand(reg, "select", func(_ context.Context, ed *quote.Editor, b commandBody) error {
		return ed.Select(b.Index)
	})
}

func HandleEditorToggle(reg *EditorRegistry) func(*core.RequestEvent) error {
	return handleCommand(reg, "toggle", func(_ context.Context, ed *quote.Editor, b commandBody) error {
		return ed.ToggleEdit(b.Index)
	})
}

func HandleEditorCancel(reg *EditorRegistry) func(*core.RequestEvent) error {
	return handleCommand(reg, "cancel", func(_ context.Context, ed *quote.Editor, b commandBody) error {
		ed.Cancel(b.Index)
		return nil
	})
}

func HandleEditorInsert(reg *EditorRegistry) func(*core.RequestEvent) error {
	return handleCommand(reg, "insert", func(_ context.Context, ed *quote.Editor, b commandBody) error {
		_, err := ed.Insert(b.Index)
		return err
	})
}

func HandleEditorRemove(reg *EditorRegistry) func(*core.RequestEvent) error {
	return handleCommand(reg, "remove", func(_ context.Context, ed *quote.Editor, b commandBody) error {
		return ed.Remove(b.Index)
	})
}

// HandleEditorField writes one cell. Numeric values may arrive as JSON
// numbers or strings.
func HandleEditorField(reg *EditorRegistry) func(*core.RequestEvent) error {
	return handleCommand(reg, "field", func(_ context.Context, ed *quote.Editor, b commandBody) error {
		return ed.Update(b.RowID, quote.Field(b.Field), cast.ToString(b.Value))
	})
}

func HandleEditorDiscount(reg *EditorRegistry) func(*core.RequestEvent) error {
	return handleCommand(reg, "discount", func(_ context.Context, ed *quote.Editor, b commandBody) error {
		return ed.SetOverallDiscount(cast.ToString(b.Rate))
	})
}

// HandleEditorSearch types into a row's product name; suggestions arrive
// after the debounce and show up in later state reads.
func HandleEditorSearch(reg *EditorRegistry) func(*core.RequestEvent) error {
	return handleCommand(reg, "search", func(ctx context.Context, ed *quote.Editor, b commandBody) error {
		return ed.Query(ctx, b.RowID, b.Term)
	})
}

func HandleEditorFocus(reg *EditorRegistry) func(*core.RequestEvent) error {
	return handleCommand(reg, "focus", func(_ context.Context, ed *quote.Editor, b commandBody) error {
		ed.Focus(b.RowID)
		return nil
	})
}

func HandleEditorBlur(reg *EditorRegistry) func(*core.RequestEvent) error {
	return handleCommand(reg, "blur", func(_ context.Context, ed *quote.Editor, b commandBody) error {
		ed.Blur(b.RowID)
		return nil
	})
}

func HandleEditorPick(reg *EditorRegistry) func(*core.RequestEvent) error {
	return handleCommand(reg, "pick", func(_ context.Context, ed *quote.Editor, b commandBody) error {
		return ed.Pick(b.Index, b.ProductID)
	})
}

// HandleEditorSave persists the rows and waits for the store to answer.
func HandleEditorSave(reg *EditorRegistry) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		s, ok, err := sessionFor(e, reg)
		if !ok {
			return err
		}

		start := time.Now()
		notes, saveErr := s.Await(e.Request.Context(), func(ed *quote.Editor, done func(error)) {
			ed.Save(s.ctx, done)
		})
		if errors.Is(saveErr, quote.ErrLoopStopped) || errors.Is(saveErr, context.Canceled) ||
			errors.Is(saveErr, context.DeadlineExceeded) {
			return ErrorToast(e, http.StatusServiceUnavailable, "Editor is not available")
		}
		outcome := outcomeOf(saveErr)
		reg.metrics.ObserveSave(outcome, time.Since(start))
		reg.metrics.ObserveCommand("save", outcome)

		var view EditorView
		more, err := s.Do(e.Request.Context(), func(ed *quote.Editor) { view = snapshot(ed) })
		if err != nil {
			return ErrorToast(e, http.StatusServiceUnavailable, "Editor is not available")
		}
		view.Notifications = append(notes, more...)
		return respond(e, reg.log, view, saveErr)
	}
}

// HandleEditorReload discards unsaved edits and reloads the quote.
func HandleEditorReload(reg *EditorRegistry) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quoteID := e.Request.PathValue("quoteId")
		reg.Close(quoteID)
		return HandleEditorState(reg)(e)
	}
}
