package quote

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrLoopStopped is returned by Do once the loop has exited.
var ErrLoopStopped = errors.New("quote: event loop stopped")

// Task is a handle to deferred work that has not run yet.
type Task interface {
	Cancel()
}

// Loop serialises all editor work. Everything the editor does runs inside
// callbacks handed to a Loop, so row state needs no locking.
type Loop interface {
	// Post queues fn to run on the loop.
	Post(fn func())
	// After runs fn on the loop once d has elapsed, unless cancelled first.
	After(d time.Duration, fn func()) Task
	// Go runs work off the loop and posts the continuation it returns.
	Go(work func() func())
}

// EventLoop is the production Loop: a single goroutine draining an
// unbounded queue. Posting never blocks, so callbacks may post follow-up work
// to their own loop.
type EventLoop struct {
	mu      sync.Mutex
	pending []func()
	stopped bool

	wake chan struct{}
	done chan struct{}
}

func NewEventLoop() *EventLoop {
	return &EventLoop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Run drains the queue until ctx is cancelled. Work still queued at that
// point is dropped.
func (l *EventLoop) Run(ctx context.Context) {
	defer func() {
		l.mu.Lock()
		l.stopped = true
		l.pending = nil
		l.mu.Unlock()
		close(l.done)
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.wake:
		}
		for ctx.Err() == nil {
			fn, ok := l.next()
			if !ok {
				break
			}
			fn()
		}
	}
}

func (l *EventLoop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.pending) == 0 {
		return nil, false
	}
	fn := l.pending[0]
	l.pending[0] = nil
	l.pending = l.pending[1:]
	return fn, true
}

// enqueue reports false once the loop has stopped.
func (l *EventLoop) enqueue(fn func()) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Post queues fn. After the loop has stopped it is dropped.
func (l *EventLoop) Post(fn func()) {
	l.enqueue(fn)
}

// Do runs fn on the loop and waits for it to return. When ctx ends first fn
// may still run later.
func (l *EventLoop) Do(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	finished := make(chan struct{})
	if !l.enqueue(func() {
		defer close(finished)
		fn()
	}) {
		return ErrLoopStopped
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *EventLoop) After(d time.Duration, fn func()) Task {
	t := &timerTask{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.cancelled.Load() {
				return
			}
			fn()
		})
	})
	return t
}

func (l *EventLoop) Go(work func() func()) {
	go func() {
		if next := work(); next != nil {
			l.Post(next)
		}
	}()
}

type timerTask struct {
	timer     *time.Timer
	cancelled atomic.Bool
}

// Cancel is safe even after the timer fired: the queued callback re-checks
// the flag on the loop before running.
func (t *timerTask) Cancel() {
	t.cancelled.Store(true)
	t.timer.Stop()
}
