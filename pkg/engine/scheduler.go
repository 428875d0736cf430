// Package engine drives frames over an owner tree.
//
// A [Scheduler] is the host of a mounted root [core.Node]. Owners ask it for
// a frame through [core.Host.ScheduleFrame]; it forwards the request to a
// [FrameRequester] supplied by the embedding platform and, when the frame
// fires, runs one pass:
//
//	dispatch → resize → compute (theme) → layout → animate → render
//
// Each phase is a depth-first walk that only enters subtrees whose own or
// descendant flags intersect the phase mask, so a frame costs time
// proportional to the dirty frontier rather than the tree size.
//
// All tree work happens on the goroutine that runs frames. [Scheduler.Dispatch]
// is the only entry point that may be called from other goroutines.
package engine

import (
	"sync"
	"time"

	"github.com/go-drift/fasten/pkg/animation"
	"github.com/go-drift/fasten/pkg/core"
	"github.com/go-drift/fasten/pkg/errors"
	"github.com/go-drift/fasten/pkg/update"
)

// FrameRequester is the platform's frame source. RequestFrame arranges for
// fn to run once on the next frame; a new request replaces a pending one.
// Implementations must accept RequestFrame from any goroutine when
// [Scheduler.Dispatch] is used off the frame goroutine.
type FrameRequester interface {
	RequestFrame(fn func(now time.Time))
	CancelFrame()
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithTrace records per-frame samples in buf.
func WithTrace(buf *FrameTraceBuffer) Option {
	return func(s *Scheduler) { s.trace = buf }
}

// FrameStats summarizes one pass.
type FrameStats struct {
	// Visits counts the owners entered per phase, including the root.
	Visits map[update.Phase]int
	// Owners is the number of distinct owners entered in any phase.
	Owners int
	// Dispatched is the number of dispatch callbacks run.
	Dispatched int
	// Errors counts hook failures recovered during the pass.
	Errors int
	// Duration is the wall time spent in the pass.
	Duration time.Duration
}

// TotalVisits sums Visits over all phases.
func (s FrameStats) TotalVisits() int {
	total := 0
	for _, v := range s.Visits {
		total += v
	}
	return total
}

// Scheduler runs frames for one owner tree.
type Scheduler struct {
	root   *core.Node
	frames FrameRequester
	trace  *FrameTraceBuffer

	mu      sync.Mutex
	queue   []func()
	pending bool
	closed  bool

	inFrame    bool
	frameCount uint64
	last       FrameStats
}

// New mounts root with the returned scheduler as its host.
func New(root *core.Node, frames FrameRequester, opts ...Option) *Scheduler {
	s := &Scheduler{root: root, frames: frames}
	for _, opt := range opts {
		opt(s)
	}
	root.Mount(s)
	return s
}

// Root returns the root owner.
func (s *Scheduler) Root() *core.Node { return s.root }

// Trace returns the frame trace buffer, or nil when tracing is off.
func (s *Scheduler) Trace() *FrameTraceBuffer { return s.trace }

// ScheduleFrame implements core.Host. Requests made while a frame is running
// are folded into the end-of-frame check.
func (s *Scheduler) ScheduleFrame() {
	if s.inFrame {
		return
	}
	s.request()
}

// Dispatch queues fn to run at the start of the next frame and requests one.
// It is safe to call from any goroutine.
func (s *Scheduler) Dispatch(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, fn)
	s.mu.Unlock()
	s.request()
}

func (s *Scheduler) request() {
	s.mu.Lock()
	if s.closed || s.pending {
		s.mu.Unlock()
		return
	}
	s.pending = true
	s.mu.Unlock()
	s.frames.RequestFrame(s.onFrame)
}

func (s *Scheduler) onFrame(now time.Time) { s.Frame(now) }

// Pending reports whether a frame request is outstanding.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// FrameCount returns the number of passes run.
func (s *Scheduler) FrameCount() uint64 { return s.frameCount }

// LastStats returns the stats of the most recent pass.
func (s *Scheduler) LastStats() FrameStats { return s.last }

// Frame runs one pass at now and returns its stats. Hosts normally reach it
// through the FrameRequester callback; tests may call it directly.
func (s *Scheduler) Frame(now time.Time) FrameStats {
	start := time.Now()
	s.mu.Lock()
	s.pending = false
	callbacks := s.queue
	s.queue = nil
	closed := s.closed
	s.mu.Unlock()

	stats := FrameStats{Visits: make(map[update.Phase]int, len(update.Phases()))}
	if closed {
		return stats
	}

	s.inFrame = true
	name := s.root.Name()
	for _, fn := range callbacks {
		stats.Dispatched++
		if errors.Guard("dispatch", name, func() error { fn(); return nil }) != nil {
			stats.Errors++
			callbackErrors.WithLabelValues("dispatch").Inc()
		}
	}

	seen := make(map[*core.Node]struct{})
	for _, phase := range update.Phases() {
		s.walk(s.root, phase, now, &stats, seen)
	}
	s.inFrame = false

	stats.Owners = len(seen)
	stats.Duration = time.Since(start)
	s.frameCount++
	s.last = stats
	s.record(now, stats)

	if s.needsAnotherFrame() {
		s.request()
	}
	return stats
}

// walk performs phase on n and then on each child whose subtree has work
// for it. Failures are confined to the owner that raised them.
func (s *Scheduler) walk(n *core.Node, phase update.Phase, now time.Time, stats *FrameStats, seen map[*core.Node]struct{}) {
	mask := phase.Mask()
	if (n.Flags()|n.DescendantFlags())&mask == update.None {
		return
	}
	stats.Visits[phase]++
	seen[n] = struct{}{}
	ownerVisits.WithLabelValues(phase.String()).Inc()

	if n.Flags()&mask != update.None {
		reported := errors.Guard(phase.String(), n.Name(), func() error {
			return core.RunPhase(n, phase, now)
		})
		if reported != nil {
			stats.Errors++
			callbackErrors.WithLabelValues(phase.String()).Inc()
		}
	}
	if n.DescendantFlags()&mask != update.None {
		n.VisitChildren(func(c *core.Node) bool {
			s.walk(c, phase, now, stats, seen)
			return true
		})
	}
	n.RefreshDescendantFlags()
}

func (s *Scheduler) needsAnotherFrame() bool {
	if s.root.Mounted() && (s.root.Flags()|s.root.DescendantFlags()) != update.None {
		return true
	}
	s.mu.Lock()
	queued := len(s.queue) > 0
	s.mu.Unlock()
	return queued || animation.HasActiveTickers()
}

func (s *Scheduler) record(now time.Time, stats FrameStats) {
	framesTotal.Inc()
	frameDuration.Observe(stats.Duration.Seconds())
	if s.trace == nil {
		return
	}
	s.trace.Add(newFrameSample(now, stats), stats.Duration)
}

// Close cancels any pending frame and stops accepting requests. The tree
// stays mounted.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.pending = false
	s.queue = nil
	s.mu.Unlock()
	s.frames.CancelFrame()
}
