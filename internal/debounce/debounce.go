// Package debounce collapses bursts of calls into one delayed action.
package debounce

import (
	"context"
	"sync"
	"time"
)

// DefaultDelay is the quiet period used when New is given a non-positive delay.
const DefaultDelay = time.Second

// Action is the unit of deferred work.
type Action func(ctx context.Context)

// Scheduler runs the most recently scheduled Action once no Schedule call
// has happened for the quiet period. Each Scheduler owns its own timer.
//
// Actions never overlap: a timer that fires while an action is still
// running is re-armed, and the newest pending action runs afterwards.
type Scheduler struct {
	delay time.Duration

	mu      sync.Mutex
	idle    *sync.Cond
	timer   *time.Timer
	pending Action
	running bool
	stopped bool
}

func New(delay time.Duration) *Scheduler {
	if delay <= 0 {
		delay = DefaultDelay
	}
	s := &Scheduler{delay: delay}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// Delay returns the quiet period.
func (s *Scheduler) Delay() time.Duration { return s.delay }

// Schedule replaces any pending action with action and restarts the quiet period.
func (s *Scheduler) Schedule(action Action) {
	if s == nil || action == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.pending = action
	if s.timer == nil {
		s.timer = time.AfterFunc(s.delay, s.onTimer)
		return
	}
	s.timer.Reset(s.delay)
}

// Pending reports whether an action is waiting to run.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

func (s *Scheduler) onTimer() {
	s.mu.Lock()
	if s.running {
		// Pick up the pending action once the in-flight one returns.
		if s.timer != nil {
			s.timer.Reset(s.delay)
		}
		s.mu.Unlock()
		return
	}
	action := s.pending
	if action == nil {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	s.running = true
	s.mu.Unlock()

	action(context.Background())
	s.finish()
}

func (s *Scheduler) finish() {
	s.mu.Lock()
	s.running = false
	s.idle.Broadcast()
	s.mu.Unlock()
}

// Flush cancels the timer and runs the pending action, if any, on the
// calling goroutine. It waits for an in-flight action to return first.
func (s *Scheduler) Flush(ctx context.Context) {
	if s == nil {
		return
	}

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	for s.running {
		s.idle.Wait()
	}
	action := s.pending
	if action == nil {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	s.running = true
	s.mu.Unlock()

	action(ctx)
	s.finish()
}

// Cancel drops the pending action, if any, and reports whether there was
// one. Later Schedule calls work as usual.
func (s *Scheduler) Cancel() bool {
	if s == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	had := s.pending != nil
	s.pending = nil
	return had
}

// Stop discards the pending action and ignores later Schedule calls.
// An action that is already running is left to finish.
func (s *Scheduler) Stop() {
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
	}
}
