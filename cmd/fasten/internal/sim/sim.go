// Package sim runs an owner tree on a simulated clock for the fasten CLI.
// Frames fire only when the runner is pumped, so output is reproducible
// regardless of wall time.
package sim

import (
	"sync"
	"time"

	"github.com/go-drift/fasten/pkg/animation"
	"github.com/go-drift/fasten/pkg/core"
	"github.com/go-drift/fasten/pkg/engine"
)

// Start is the simulated time every runner begins at.
var Start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Clock is an animation clock that only moves when advanced.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// Now returns the simulated time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Elapsed returns the simulated time since Start.
func (c *Clock) Elapsed() time.Duration {
	return c.Now().Sub(Start)
}

// Runner mounts a tree on a scheduler driven by a simulated clock and
// manual frames.
type Runner struct {
	clock     *Clock
	frames    *engine.ManualFrames
	scheduler *engine.Scheduler
	root      *core.Node
	prevClock animation.Clock
}

// New installs a simulated animation clock and mounts root. Close restores
// the previous clock.
func New(root *core.Node, opts ...engine.Option) *Runner {
	r := &Runner{
		clock:  &Clock{now: Start},
		frames: &engine.ManualFrames{},
		root:   root,
	}
	r.prevClock = animation.SetClock(r.clock)
	r.scheduler = engine.New(root, r.frames, opts...)
	return r
}

// Clock returns the simulated clock.
func (r *Runner) Clock() *Clock { return r.clock }

// Scheduler returns the scheduler driving the tree.
func (r *Runner) Scheduler() *engine.Scheduler { return r.scheduler }

// Pump advances the clock by d, steps tickers and runs the pending frame.
// It reports the frame's stats and whether a frame ran.
func (r *Runner) Pump(d time.Duration) (engine.FrameStats, bool) {
	now := r.clock.Advance(d)
	animation.StepTickers()
	if !r.frames.Fire(now) {
		return engine.FrameStats{}, false
	}
	return r.scheduler.LastStats(), true
}

// Idle reports whether no frame is pending and no ticker is running.
func (r *Runner) Idle() bool {
	return !r.frames.Pending() && !animation.HasActiveTickers()
}

// Dispatch queues fn for the next frame.
func (r *Runner) Dispatch(fn func()) {
	r.scheduler.Dispatch(fn)
}

// Close stops the scheduler, unmounts the tree and restores the clock.
func (r *Runner) Close() {
	r.scheduler.Close()
	r.root.Unmount()
	animation.SetClock(r.prevClock)
}
