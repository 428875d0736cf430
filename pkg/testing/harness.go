package testing

import (
	"errors"
	"testing"
	"time"

	"github.com/go-drift/fasten/pkg/animation"
	"github.com/go-drift/fasten/pkg/core"
	"github.com/go-drift/fasten/pkg/engine"
)

// FrameInterval is the clock step PumpUntilIdle takes between frames.
const FrameInterval = 16 * time.Millisecond

// ErrSettleTimeout is returned when PumpUntilIdle exceeds its timeout.
var ErrSettleTimeout = errors.New("PumpUntilIdle timed out: tree did not settle")

// Harness mounts an owner tree on a scheduler driven by a fake clock and
// manual frames. Frames run only inside Pump and PumpUntilIdle.
type Harness struct {
	clock     *FakeClock
	frames    *engine.ManualFrames
	scheduler *engine.Scheduler
	root      *core.Node
	restore   func()
}

// NewHarness installs a fake clock and mounts root on a new scheduler.
// Call Cleanup when done, or use NewHarnessWithT instead.
func NewHarness(root *core.Node, opts ...engine.Option) *Harness {
	h := &Harness{
		clock:  NewFakeClock(),
		frames: &engine.ManualFrames{},
		root:   root,
	}
	h.restore = h.clock.Install()
	h.scheduler = engine.New(root, h.frames, opts...)
	return h
}

// NewHarnessWithT creates a harness that cleans up via t.Cleanup.
// This is the recommended constructor for tests.
func NewHarnessWithT(t testing.TB, root *core.Node, opts ...engine.Option) *Harness {
	h := NewHarness(root, opts...)
	t.Cleanup(h.Cleanup)
	return h
}

// Cleanup closes the scheduler, unmounts the tree and restores the clock.
func (h *Harness) Cleanup() {
	h.scheduler.Close()
	h.root.Unmount()
	h.restore()
}

// Clock returns the fake clock.
func (h *Harness) Clock() *FakeClock { return h.clock }

// Frames returns the manual frame source.
func (h *Harness) Frames() *engine.ManualFrames { return h.frames }

// Scheduler returns the scheduler driving the tree.
func (h *Harness) Scheduler() *engine.Scheduler { return h.scheduler }

// Root returns the root owner.
func (h *Harness) Root() *core.Node { return h.root }

// Pump advances the clock by d, steps tickers and runs the pending frame,
// if any. It reports the stats of the frame and whether one ran.
func (h *Harness) Pump(d time.Duration) (engine.FrameStats, bool) {
	now := h.clock.Advance(d)
	animation.StepTickers()
	if !h.frames.Fire(now) {
		return engine.FrameStats{}, false
	}
	return h.scheduler.LastStats(), true
}

// PumpUntilIdle runs frames until none is pending, advancing the clock by
// FrameInterval between frames. It returns ErrSettleTimeout if the tree
// still has work after timeout of fake time.
func (h *Harness) PumpUntilIdle(timeout time.Duration) error {
	var elapsed time.Duration
	h.Pump(0)
	for h.needsWork() {
		if elapsed >= timeout {
			return ErrSettleTimeout
		}
		h.Pump(FrameInterval)
		elapsed += FrameInterval
	}
	return nil
}

func (h *Harness) needsWork() bool {
	return h.frames.Pending() || animation.HasActiveTickers()
}

// Dispatch queues fn for the next frame, mirroring engine.Scheduler.Dispatch.
func (h *Harness) Dispatch(fn func()) {
	h.scheduler.Dispatch(fn)
}

// Find evaluates a finder against the tree.
func (h *Harness) Find(finder Finder) FinderResult {
	return FinderResult{nodes: finder.Evaluate(h.root), finder: finder}
}
