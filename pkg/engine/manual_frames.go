package engine

import (
	"sync"
	"time"
)

// ManualFrames is a FrameRequester that only fires when told to. Headless
// runs and tests use it to step frames on a simulated clock. It is safe for
// concurrent use.
type ManualFrames struct {
	mu       sync.Mutex
	fn       func(time.Time)
	requests int
	cancels  int
}

// RequestFrame records fn as the pending frame, replacing any earlier one.
func (f *ManualFrames) RequestFrame(fn func(now time.Time)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fn = fn
	f.requests++
}

// CancelFrame drops the pending frame.
func (f *ManualFrames) CancelFrame() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fn = nil
	f.cancels++
}

// Pending reports whether a frame is waiting to fire.
func (f *ManualFrames) Pending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fn != nil
}

// Requests returns the number of RequestFrame calls so far.
func (f *ManualFrames) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

// Cancels returns the number of CancelFrame calls so far.
func (f *ManualFrames) Cancels() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancels
}

// Fire runs the pending frame at now and reports whether one was pending.
func (f *ManualFrames) Fire(now time.Time) bool {
	f.mu.Lock()
	fn := f.fn
	f.fn = nil
	f.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(now)
	return true
}
