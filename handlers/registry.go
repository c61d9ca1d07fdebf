package handlers

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"quotelines/config"
	"quotelines/logger"
	"quotelines/metrics"
	"quotelines/quote"
)

// Backend is what an editor session needs from storage.
type Backend interface {
	quote.Store
	quote.Searcher
}

// Session is one quote's editor running on its own event loop.
type Session struct {
	editor *quote.Editor
	loop   *quote.EventLoop
	inbox  *quote.Inbox
	ctx    context.Context
	cancel context.CancelFunc
}

// Do runs fn on the session's loop and returns the notifications it raised.
func (s *Session) Do(ctx context.Context, fn func(ed *quote.Editor)) ([]quote.Notification, error) {
	var notes []quote.Notification
	err := s.loop.Do(ctx, func() {
		fn(s.editor)
		notes = s.inbox.Drain()
	})
	return notes, err
}

// Await starts an asynchronous editor command and waits for its completion
// callback. The returned error is the command's own failure, if any.
func (s *Session) Await(ctx context.Context, start func(ed *quote.Editor, done func(error))) ([]quote.Notification, error) {
	result := make(chan error, 1)
	if err := s.loop.Do(ctx, func() {
		start(s.editor, func(err error) { result <- err })
	}); err != nil {
		return nil, err
	}

	var opErr error
	select {
	case opErr = <-result:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	notes, err := s.Do(ctx, func(*quote.Editor) {})
	if err != nil {
		return nil, err
	}
	return notes, opErr
}

// EditorRegistry keeps one live editor session per quote. Concurrent first
// requests for the same quote share a single load.
type EditorRegistry struct {
	backend Backend
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.EditorMetrics
	root    context.Context

	mu       sync.Mutex
	sessions map[string]*Session
	group    singleflight.Group
}

func NewEditorRegistry(root context.Context, backend Backend, cfg *config.Config, log *logger.Logger) *EditorRegistry {
	if log == nil {
		log = logger.Nop()
	}
	return &EditorRegistry{
		backend:  backend,
		cfg:      cfg,
		log:      log,
		root:     root,
		sessions: make(map[string]*Session),
	}
}

// WithMetrics records session and command activity on m.
func (r *EditorRegistry) WithMetrics(m *metrics.EditorMetrics) *EditorRegistry {
	r.metrics = m
	return r
}

func (r *EditorRegistry) lookup(quoteID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[quoteID]
	return s, ok
}

// Get returns the session for quoteID, opening and loading it on first use.
func (r *EditorRegistry) Get(ctx context.Context, quoteID string) (*Session, error) {
	if s, ok := r.lookup(quoteID); ok {
		return s, nil
	}

	v, err, _ := r.group.Do(quoteID, func() (any, error) {
		if s, ok := r.lookup(quoteID); ok {
			return s, nil
		}
		s, err := r.open(ctx, quoteID)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.sessions[quoteID] = s
		r.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (r *EditorRegistry) open(ctx context.Context, quoteID string) (*Session, error) {
	loopCtx, cancel := context.WithCancel(r.root)
	loop := quote.NewEventLoop()
	go loop.Run(loopCtx)

	inbox := &quote.Inbox{}
	ed := quote.NewEditor(loop, r.backend, r.backend, quote.Options{
		QuoteID:        quoteID,
		BaseUnit:       r.cfg.BaseUnit,
		ResyncDelay:    r.cfg.ResyncDelay,
		SearchDebounce: r.cfg.SearchDebounce,
		Logger:         r.log,
		Notifier:       inbox,
	})
	s := &Session{editor: ed, loop: loop, inbox: inbox, ctx: loopCtx, cancel: cancel}

	if _, err := s.Await(ctx, func(ed *quote.Editor, done func(error)) {
		ed.Load(loopCtx, done)
	}); err != nil {
		cancel()
		return nil, fmt.Errorf("open editor for quote %s: %w", quoteID, err)
	}

	r.metrics.SessionOpened()
	r.log.Info(r.log.WithQuoteID(context.Background(), quoteID), "editor session opened")
	return s, nil
}

// Close stops the session for quoteID. Unsaved edits are discarded.
func (r *EditorRegistry) Close(quoteID string) {
	r.mu.Lock()
	s, ok := r.sessions[quoteID]
	delete(r.sessions, quoteID)
	r.mu.Unlock()

	if ok {
		s.cancel()
		r.metrics.SessionClosed()
		r.log.Info(r.log.WithQuoteID(context.Background(), quoteID), "editor session closed")
	}
}

// CloseAll stops every session.
func (r *EditorRegistry) CloseAll() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.Close(id)
	}
}
