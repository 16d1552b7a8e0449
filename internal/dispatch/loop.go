// Package dispatch provides the single execution loop on which all session
// state is mutated.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrStopped is returned when work is submitted to a stopped loop.
var ErrStopped = errors.New("dispatch loop stopped")

// Loop runs posted funcs one at a time, in order, on one goroutine.
type Loop struct {
	queue chan func()
	done  chan struct{}
	log   *slog.Logger

	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a loop with room for size queued funcs.
func New(size int, log *slog.Logger) *Loop {
	if size <= 0 {
		size = 256
	}
	return &Loop{
		queue: make(chan func(), size),
		done:  make(chan struct{}),
		log:   log,
	}
}

// Start launches the loop goroutine. Cancelling ctx stops the loop.
func (l *Loop) Start(ctx context.Context) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for {
			select {
			case <-ctx.Done():
				l.stop()
				return
			case <-l.done:
				return
			case fn := <-l.queue:
				l.run(fn)
			}
		}
	}()
}

// Stop ends the loop and waits for the running func to finish. Funcs still
// queued are dropped.
func (l *Loop) Stop() {
	l.stop()
	l.wg.Wait()
}

func (l *Loop) stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

// Post queues fn and returns immediately. It blocks only while the queue is
// full, and returns false once the loop is stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop and waits for it to return. It must not be called
// from the loop goroutine.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrStopped
	}
}

func (l *Loop) run(fn func()) {
	defer func() {
		if p := recover(); p != nil {
			l.log.Error("dispatch: recovered panic", "panic", fmt.Sprint(p))
		}
	}()
	fn()
}
