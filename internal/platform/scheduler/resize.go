// Package scheduler implements the single pending-resize scheduler that
// coalesces bursts of layout events into one trailing-edge callback.
package scheduler

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

const (
	// DefaultWindow is the debounce window shared by every resize trigger.
	DefaultWindow = 150 * time.Millisecond
	// MinWindow and MaxWindow bound configurable windows.
	MinWindow = 100 * time.Millisecond
	MaxWindow = 250 * time.Millisecond
)

// ResizeScheduler holds at most one pending run of its callback. Each call to
// Schedule re-arms the timer, so the callback fires once, window after the last
// trigger.
type ResizeScheduler struct {
	mu      sync.Mutex
	clk     clock.Clock
	window  time.Duration
	fn      func()
	timer   *clock.Timer
	gen     uint64
	stopped bool
	runs    uint64
}

// NewResizeScheduler creates a scheduler that calls fn after window of quiet.
// A nil clk uses the wall clock; window is clamped to [MinWindow, MaxWindow]
// and zero selects DefaultWindow.
func NewResizeScheduler(clk clock.Clock, window time.Duration, fn func()) *ResizeScheduler {
	if clk == nil {
		clk = clock.New()
	}
	switch {
	case window <= 0:
		window = DefaultWindow
	case window < MinWindow:
		window = MinWindow
	case window > MaxWindow:
		window = MaxWindow
	}
	return &ResizeScheduler{clk: clk, window: window, fn: fn}
}

// Window returns the effective debounce window.
func (s *ResizeScheduler) Window() time.Duration {
	return s.window
}

// Schedule arms the timer, resetting any pending one.
func (s *ResizeScheduler) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = s.clk.AfterFunc(s.window, func() { s.fire(gen) })
}

// fire runs the callback unless a later Schedule, Cancel or Stop superseded
// the timer that invoked it.
func (s *ResizeScheduler) fire(gen uint64) {
	s.mu.Lock()
	if s.stopped || s.timer == nil || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.runs++
	fn := s.fn
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Pending reports whether a run is armed.
func (s *ResizeScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Runs returns how many times the callback has fired.
func (s *ResizeScheduler) Runs() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// Cancel drops a pending run without invoking the callback.
func (s *ResizeScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disarm()
}

// Flush runs a pending callback immediately. It is a no-op when nothing is armed.
func (s *ResizeScheduler) Flush() {
	s.mu.Lock()
	if s.stopped || s.timer == nil {
		s.mu.Unlock()
		return
	}
	s.disarm()
	s.runs++
	fn := s.fn
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Stop cancels any pending run and rejects further scheduling.
func (s *ResizeScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disarm()
	s.stopped = true
}

func (s *ResizeScheduler) disarm() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}
