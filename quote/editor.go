package quote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quotelines/logger"
	"quotelines/services"
)

const (
	msgLoadFailed   = "Failed to load items"
	msgSaveFailed   = "Failed to save items"
	msgSaved        = "Quote Line Items saved successfully!"
	msgSearchFailed = "Failed to load product suggestions"
)

type Options struct {
	QuoteID        string
	BaseUnit       string
	ResyncDelay    time.Duration
	SearchDebounce time.Duration
	Logger         *logger.Logger
	Notifier       Notifier
}

// Editor is the command surface over one quote's rows. Every method must be
// called on the editor's loop; collaborator calls run off the loop and report
// back through it.
type Editor struct {
	quoteID   string
	loop      Loop
	store     Store
	table     *Table
	discounts *Discounts
	catalog   *Catalog
	notifier  Notifier
	log       *logger.Logger
	logCtx    context.Context

	resyncDelay   time.Duration
	pendingResync Task
}

func NewEditor(loop Loop, store Store, searcher Searcher, opts Options) *Editor {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = NotifierFunc(func(Notification) {})
	}
	table := NewTable(opts.BaseUnit)
	return &Editor{
		quoteID:     opts.QuoteID,
		loop:        loop,
		store:       store,
		table:       table,
		discounts:   NewDiscounts(table),
		catalog:     NewCatalog(loop, searcher, opts.SearchDebounce),
		notifier:    notifier,
		log:         log,
		logCtx:      log.WithQuoteID(context.Background(), opts.QuoteID),
		resyncDelay: opts.ResyncDelay,
	}
}

func (e *Editor) QuoteID() string { return e.quoteID }

func (e *Editor) Rows() []Row { return e.table.Rows() }

func (e *Editor) Selected() int { return e.table.Selected() }

func (e *Editor) Candidates() []Candidate { return e.catalog.Candidates() }

func (e *Editor) OverallRate() float64 { return e.discounts.Rate() }

func (e *Editor) PendingDeletes() []string { return e.table.Ledger().IDs() }

// Totals summarises gross, both discount kinds and the net payable.
func (e *Editor) Totals() services.QuoteTotals { return totalsOf(e.table.rows) }

// reject reports a refused command to the user and hands the error back.
func (e *Editor) reject(err error) error {
	if err == nil {
		return nil
	}
	e.log.Warn(e.log.WithField(e.logCtx, "reason", err.Error()), "command rejected")
	e.notifier.Notify(notificationFor(err, err.Error()))
	return err
}

func (e *Editor) fail(msg string, err error) {
	e.log.Error(e.logCtx, msg, err)
	e.notifier.Notify(notificationFor(err, msg))
}

// Load replaces the rows with the stored line items. A failed load leaves
// one blank row. done runs on the loop.
func (e *Editor) Load(ctx context.Context, done func(error)) {
	e.cancelResync()
	e.loop.Go(func() func() {
		items, err := e.store.Load(ctx, e.quoteID)
		return func() {
			if err != nil {
				err = fmt.Errorf("load quote %s: %w", e.quoteID, err)
				e.fail(msgLoadFailed, err)
				items = nil
			}
			e.discounts.restore(e.table.Load(items))
			e.catalog.Clear()
			e.log.Info(e.log.WithField(e.logCtx, "rows", e.table.Len()), "quote loaded")
			if done != nil {
				done(err)
			}
		}
	})
}

// Save flushes any pending resync, numbers the rows and upserts them with the
// deletion ledger. The ledger only forgets ids the store confirmed.
func (e *Editor) Save(ctx context.Context, done func(error)) {
	e.flushResync()
	e.table.AssignRowNumbers()

	deleted := e.table.Ledger().IDs()
	req := SaveRequest{
		Items:           BuildPayload(e.table.Rows()),
		DiscountPercent: e.discounts.Rate(),
		DiscountAmount:  e.discounts.OverallAmount(),
		DeletedIDs:      deleted,
	}
	e.loop.Go(func() func() {
		res, err := e.store.Upsert(ctx, e.quoteID, req)
		return func() {
			if err != nil {
				err = fmt.Errorf("save quote %s: %w", e.quoteID, err)
				e.fail(msgSaveFailed, err)
			} else {
				e.table.applySaved(res, deleted)
				e.log.Info(e.log.WithFields(e.logCtx, map[string]any{
					"rows":    len(req.Items),
					"deleted": len(deleted),
				}), "quote saved")
				e.notifier.Notify(Notification{Severity: SeverityInfo, Message: msgSaved})
			}
			if done != nil {
				done(err)
			}
		}
	})
}

func (e *Editor) Select(index int) error {
	return e.reject(e.table.Select(index))
}

func (e *Editor) ToggleEdit(index int) error {
	return e.reject(e.table.ToggleEdit(index))
}

func (e *Editor) Cancel(index int) {
	e.table.Cancel(index)
	e.scheduleResync()
}

func (e *Editor) Insert(afterIndex int) (int, error) {
	at, err := e.table.Insert(afterIndex)
	if err != nil {
		return -1, e.reject(err)
	}
	e.scheduleResync()
	return at, nil
}

func (e *Editor) Remove(index int) error {
	removed, err := e.table.Remove(index)
	if err != nil {
		return e.reject(err)
	}
	for _, r := range removed {
		if r.Kind == KindOverallDiscount {
			e.discounts.ClearRate()
		}
		e.log.Debug(e.log.WithRowID(e.logCtx, r.LocalID), "row removed")
	}
	e.scheduleResync()
	return nil
}

// Update writes value into one field of the row with localID.
func (e *Editor) Update(localID int64, field Field, value string) error {
	stale, err := e.table.Update(localID, field, value)
	if err != nil {
		return e.reject(err)
	}
	if stale {
		e.scheduleResync()
	}
	return nil
}

// SetOverallDiscount applies a percentage immediately. Blank clears it.
func (e *Editor) SetOverallDiscount(raw string) error {
	e.flushResync()
	return e.reject(e.discounts.SetOverallRate(raw))
}

// Query types term into the product name of row localID and searches the
// catalog for it.
func (e *Editor) Query(ctx context.Context, localID int64, term string) error {
	if _, err := e.table.Update(localID, FieldProductName, term); err != nil {
		return e.reject(err)
	}
	e.catalog.OnQueryChange(ctx, term, func(err error) {
		if err != nil {
			e.fail(msgSearchFailed, err)
			return
		}
		e.table.SetSuggestionsVisible(localID, true)
	})
	return nil
}

func (e *Editor) Focus(localID int64) { e.table.SetSuggestionsVisible(localID, true) }

func (e *Editor) Blur(localID int64) { e.table.SetSuggestionsVisible(localID, false) }

// Pick applies a listed candidate to the row at index. A discount product is
// attached to the row above on the next loop turn.
func (e *Editor) Pick(index int, productID string) error {
	cand, ok := e.catalog.Find(productID)
	if !ok {
		return e.reject(ErrCandidateNotFound)
	}
	discount, err := e.table.Pick(index, cand)
	if err != nil {
		return e.reject(err)
	}
	e.catalog.Clear()

	if !discount {
		e.scheduleResync()
		return nil
	}
	localID := e.table.rows[index].LocalID
	e.loop.Post(func() {
		i := e.table.indexOf(localID)
		if i == -1 {
			return
		}
		if err := e.discounts.ApplyIndividual(i); err != nil {
			e.reject(err)
		}
	})
	return nil
}

// Resync rebuilds discount rows now, replacing any scheduled resync.
func (e *Editor) Resync() {
	e.cancelResync()
	e.discounts.Resync()
}

func (e *Editor) scheduleResync() {
	e.cancelResync()
	e.pendingResync = e.loop.After(e.resyncDelay, func() {
		e.pendingResync = nil
		e.discounts.Resync()
	})
}

func (e *Editor) cancelResync() {
	if e.pendingResync != nil {
		e.pendingResync.Cancel()
		e.pendingResync = nil
	}
}

// flushResync runs a scheduled resync early so a command sees settled rows.
func (e *Editor) flushResync() {
	if e.pendingResync != nil {
		e.Resync()
	}
}

// IsRejection reports whether err is a refused command rather than a failure.
func IsRejection(err error) bool {
	var rej *Rejection
	return errors.As(err, &rej)
}
