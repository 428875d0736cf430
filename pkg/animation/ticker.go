// Package animation provides the timing primitives of the fastener engine.
//
// # Core Components
//
//   - [Timing]: an immutable duration plus [Easing] curve mapping elapsed time
//     to eased progress in [0, 1].
//
//   - [Interpolator]: an immutable pair of endpoints and a pure function from
//     progress to value. A [Registry] resolves the lerp for a value type, so
//     animators only need two endpoints to build one.
//
//   - [Ticker]: per-frame callbacks stepped by the host loop via [StepTickers].
//     [TickerFrames] adapts the ticker registry to the scheduler's
//     request/cancel frame contract.
//
// # Basic Usage
//
//	timing := animation.TimingOf(300*time.Millisecond, animation.EaseOut)
//	in := animation.Between(animation.DefaultRegistry(), 0.0, 1.0)
//	opacity := in.Evaluate(timing.Progress(150 * time.Millisecond))
package animation

import (
	"sync"
	"time"
)

var (
	tickerMu      sync.Mutex
	activeTickers = make(map[*Ticker]struct{})
)

// Ticker calls a callback on each frame while active.
//
// The callback receives the frame time. Tickers are driven by the host's
// frame loop via [StepTickers]. Start and Stop may be called from any
// goroutine; callbacks run on the goroutine calling StepTickers.
type Ticker struct {
	callback func(now time.Time)
	oneShot  bool

	// guarded by tickerMu
	isActive bool
	start    time.Time
}

// NewTicker creates a new ticker with the given callback.
func NewTicker(callback func(now time.Time)) *Ticker {
	return &Ticker{callback: callback}
}

// Start activates the ticker.
func (t *Ticker) Start() {
	now := Now()
	tickerMu.Lock()
	defer tickerMu.Unlock()
	if t.isActive {
		return
	}
	t.isActive = true
	t.start = now
	activeTickers[t] = struct{}{}
}

// Stop deactivates the ticker.
func (t *Ticker) Stop() {
	tickerMu.Lock()
	defer tickerMu.Unlock()
	t.stopLocked()
}

func (t *Ticker) stopLocked() {
	if !t.isActive {
		return
	}
	t.isActive = false
	delete(activeTickers, t)
}

// IsActive returns whether the ticker is currently running.
func (t *Ticker) IsActive() bool {
	tickerMu.Lock()
	defer tickerMu.Unlock()
	return t.isActive
}

// Elapsed returns the time since the ticker started.
func (t *Ticker) Elapsed() time.Duration {
	tickerMu.Lock()
	active, start := t.isActive, t.start
	tickerMu.Unlock()
	if !active {
		return 0
	}
	return Now().Sub(start)
}

// claim reports whether t should fire this step. One-shot tickers are
// stopped by a successful claim.
func (t *Ticker) claim() bool {
	tickerMu.Lock()
	defer tickerMu.Unlock()
	if !t.isActive || t.callback == nil {
		return false
	}
	if t.oneShot {
		t.stopLocked()
	}
	return true
}

// StepTickers advances all active tickers with the current clock time.
// This should be called once per frame by the host. Tickers started by a
// callback first fire on the next step.
func StepTickers() {
	tickerMu.Lock()
	if len(activeTickers) == 0 {
		tickerMu.Unlock()
		return
	}
	tickers := make([]*Ticker, 0, len(activeTickers))
	for ticker := range activeTickers {
		tickers = append(tickers, ticker)
	}
	tickerMu.Unlock()

	now := Now()
	for _, ticker := range tickers {
		if ticker.claim() {
			ticker.callback(now)
		}
	}
}

// HasActiveTickers returns true if any tickers are active.
func HasActiveTickers() bool {
	tickerMu.Lock()
	defer tickerMu.Unlock()
	return len(activeTickers) > 0
}

// TickerFrames schedules frame callbacks on the ticker registry. At most one
// request is pending; it fires on the next StepTickers call. It is safe for
// concurrent use, so it can back a scheduler that receives Dispatch calls
// from other goroutines.
type TickerFrames struct {
	mu      sync.Mutex
	pending *Ticker
}

// RequestFrame arranges for fn to run on the next host frame. A request made
// while another is pending replaces it.
func (f *TickerFrames) RequestFrame(fn func(now time.Time)) {
	var ticker *Ticker
	ticker = NewTicker(func(now time.Time) {
		f.mu.Lock()
		if f.pending == ticker {
			f.pending = nil
		}
		f.mu.Unlock()
		fn(now)
	})
	ticker.oneShot = true

	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelLocked()
	f.pending = ticker
	ticker.Start()
}

// CancelFrame drops the pending request, if any.
func (f *TickerFrames) CancelFrame() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelLocked()
}

func (f *TickerFrames) cancelLocked() {
	if f.pending != nil {
		f.pending.Stop()
		f.pending = nil
	}
}

// Pending reports whether a frame request is outstanding.
func (f *TickerFrames) Pending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending != nil
}
