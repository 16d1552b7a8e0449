// Package debounce collapses bursts of triggers into one call made after an
// idle interval.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the idle window used when none is configured.
const DefaultDelay = 250 * time.Millisecond

// Timer is the part of *time.Timer the scheduler needs.
type Timer interface {
	Stop() bool
}

// AfterFunc starts a timer that calls f after d.
type AfterFunc func(d time.Duration, f func()) Timer

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithPoster makes fires run through post instead of on the timer goroutine.
// Passing a dispatch loop's Post keeps the callback on that loop.
func WithPoster(post func(func()) bool) Option {
	return func(s *Scheduler) { s.post = post }
}

// WithAfterFunc replaces time.AfterFunc, mainly for tests.
func WithAfterFunc(af AfterFunc) Option {
	return func(s *Scheduler) { s.after = af }
}

// Scheduler runs fn once per burst of Trigger calls, delay after the last one.
type Scheduler struct {
	delay time.Duration
	fn    func()
	post  func(func()) bool
	after AfterFunc

	mu      sync.Mutex
	timer   Timer
	gen     uint64
	pending bool
}

// New returns a scheduler for fn. A non-positive delay uses DefaultDelay.
func New(delay time.Duration, fn func(), opts ...Option) *Scheduler {
	if delay <= 0 {
		delay = DefaultDelay
	}
	s := &Scheduler{
		delay: delay,
		fn:    fn,
		post:  func(f func()) bool { f(); return true },
		after: func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Delay returns the idle window.
func (s *Scheduler) Delay() time.Duration { return s.delay }

// Trigger restarts the countdown. Any earlier pending fire is superseded.
func (s *Scheduler) Trigger() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	s.pending = true
	gen := s.gen
	s.timer = s.after(s.delay, func() {
		if !s.post(func() { s.fire(gen) }) {
			s.drop(gen)
		}
	})
}

// drop clears a fire that could not be delivered.
func (s *Scheduler) drop(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.gen {
		s.pending = false
		s.timer = nil
	}
}

// Pending reports whether a fire is outstanding.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Flush runs a pending fire immediately and reports whether there was one.
func (s *Scheduler) Flush() bool {
	if !s.cancel() {
		return false
	}
	s.fn()
	return true
}

// Stop drops a pending fire without running it.
func (s *Scheduler) Stop() {
	s.cancel()
}

func (s *Scheduler) cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pending {
		return false
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.pending = false
	return true
}

// fire runs fn if gen is still the latest trigger. Timers stopped too late
// still deliver their fire; the generation check drops those.
func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || !s.pending {
		s.mu.Unlock()
		return
	}
	s.pending = false
	s.timer = nil
	s.mu.Unlock()

	s.fn()
}
