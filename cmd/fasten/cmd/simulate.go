package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-drift/fasten/cmd/fasten/internal/sim"
	"github.com/go-drift/fasten/pkg/animation"
	"github.com/go-drift/fasten/pkg/core"
	"github.com/go-drift/fasten/pkg/engine"
	"github.com/go-drift/fasten/pkg/fastener"
	"github.com/go-drift/fasten/pkg/graphics"
	"github.com/go-drift/fasten/pkg/theme"
	"github.com/go-drift/fasten/pkg/update"
)

var simulateFlags struct {
	fade      time.Duration
	switchAt  time.Duration
	limit     time.Duration
	debugAddr string
	summary   bool
}

func init() {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a headless frame simulation",
		Long: `Mount a small owner tree on a scheduler driven by a simulated clock and
print one line per frame.

The tree holds a swatch whose opacity fades from 0 to 1 and whose accent
color follows the theme, plus a badge child in the "selected" mood that
follows the border color. Part way
through, the theme flips between light and dark; themed colors animate to
the new values using the default timing from fasten.yaml.

With --debug-addr the tree stays mounted after the simulation and the debug
server serves /tree, /frames and /metrics until interrupted.`,
		Args: cobra.NoArgs,
		RunE: runSimulate,
	}
	f := cmd.Flags()
	f.DurationVar(&simulateFlags.fade, "fade", 0, "opacity fade duration (default: scheduler.default_timing.duration)")
	f.DurationVar(&simulateFlags.switchAt, "switch-at", 100*time.Millisecond, "simulated time of the theme switch")
	f.DurationVar(&simulateFlags.limit, "limit", 5*time.Second, "maximum simulated time")
	f.StringVar(&simulateFlags.debugAddr, "debug-addr", "", "serve the debug endpoints on this address after the run")
	f.BoolVar(&simulateFlags.summary, "summary", false, "print frame statistics after the run")
	RegisterCommand(cmd)
}

// swatch fades in and tracks one color look of its theme.
type swatch struct {
	*core.Node
	opacity *fastener.Animator[float64]
	color   *fastener.ThemeAnimator[graphics.Color]
	renders int
}

func newSwatch(name string, look theme.Look, fade animation.Timing) *swatch {
	s := &swatch{}
	s.Node = core.NewNode(name, s)
	s.opacity = fastener.NewAnimator(s, "opacity", 0.0,
		fastener.WithTiming(fade), fastener.WithUpdateFlags(update.NeedsRender))
	s.color = fastener.NewThemeAnimator[graphics.Color](s, "color", look,
		fastener.WithUpdateFlags(update.NeedsRender))
	return s
}

// OnRender implements core.HasRender.
func (s *swatch) OnRender() error {
	s.renders++
	return nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	timing := resolved.Timing()
	fade := timing
	if simulateFlags.fade > 0 {
		fade = animation.TimingOf(simulateFlags.fade, timing.Easing)
	}
	start, err := resolved.Theme()
	if err != nil {
		return err
	}
	next := resolved.Blend(oppositeTheme(start))

	primary := newSwatch("swatch", theme.AccentColor, fade)
	badge := newSwatch("badge", theme.BorderColor, fade)
	badge.SetMood(theme.Mood(theme.Default, theme.Selected))
	primary.AppendChild(badge.Node)

	trace := engine.NewFrameTraceBuffer(resolved.TraceSamples, resolved.FrameInterval)
	h := sim.New(primary.Node, engine.WithTrace(trace))
	defer h.Close()

	primary.SetTheme(start)
	if len(resolved.Mood) > 0 {
		primary.SetMood(resolved.Mood)
	}
	primary.SetThemeTiming(&timing)
	primary.opacity.SetState(1, nil)

	fmt.Fprintf(out, "simulating %s: theme %s -> %s at %s, fade %s\n",
		resolved.AppName, start.Name, next.Name, simulateFlags.switchAt, fade.Duration)

	interval := resolved.FrameInterval
	var elapsed time.Duration
	if stats, ran := h.Pump(0); ran {
		printFrame(out, elapsed, stats, primary, badge)
	}
	switched := false
	for {
		if !switched && elapsed >= simulateFlags.switchAt {
			h.Dispatch(func() { primary.SetTheme(next) })
			switched = true
		}
		if elapsed >= simulateFlags.limit {
			fmt.Fprintf(out, "stopped at %s with work pending\n", simulateFlags.limit)
			break
		}
		stats, ran := h.Pump(interval)
		elapsed += interval
		if ran {
			printFrame(out, elapsed, stats, primary, badge)
		}
		if switched && h.Idle() {
			break
		}
	}

	if simulateFlags.summary {
		printSummary(out, h.Scheduler(), trace, primary, badge)
	}
	if simulateFlags.debugAddr != "" {
		return serveDebug(cmd, h, simulateFlags.debugAddr)
	}
	return nil
}

func printFrame(w io.Writer, elapsed time.Duration, stats engine.FrameStats, swatches ...*swatch) {
	fmt.Fprintf(w, "t=%5s visits=%-3d", fmt.Sprintf("%dms", elapsed.Milliseconds()), stats.TotalVisits())
	for _, s := range swatches {
		fmt.Fprintf(w, "  %s opacity=%.3f color=%s", s.Name(), s.opacity.Value(), s.color.Value())
	}
	fmt.Fprintln(w)
}

func printSummary(w io.Writer, s *engine.Scheduler, trace *engine.FrameTraceBuffer, swatches ...*swatch) {
	timeline := trace.Snapshot()
	visits := make(map[string]int)
	for _, sample := range timeline.Samples {
		for phase, n := range sample.Visits {
			visits[phase] += n
		}
	}
	fmt.Fprintf(w, "frames: %d\n", s.FrameCount())
	for _, phase := range update.Phases() {
		fmt.Fprintf(w, "  %-8s visits=%d\n", phase, visits[phase.String()])
	}
	for _, sw := range swatches {
		fmt.Fprintf(w, "%s: renders=%d opacity=%s color=%s\n",
			sw.Name(), sw.renders, sw.opacity.Status(), sw.color.Status())
	}
}

// serveDebug keeps the tree alive behind the debug server until interrupted,
// running frames at the configured interval.
func serveDebug(cmd *cobra.Command, h *sim.Runner, addr string) error {
	server := engine.NewDebugServer(h.Scheduler())
	bound, err := server.Start(addr)
	if err != nil {
		return err
	}
	defer server.Stop()
	fmt.Fprintf(cmd.OutOrStdout(), "debug server listening on http://%s (Ctrl+C to stop)\n", bound)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	ticker := time.NewTicker(resolved.FrameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			h.Pump(resolved.FrameInterval)
		}
	}
}

func oppositeTheme(th *theme.Theme) *theme.Theme {
	name := "dark"
	if th.Brightness == theme.BrightnessDark {
		name = "light"
	}
	if next, ok := theme.DefaultRegistry().Get(name); ok {
		return next
	}
	if th.Brightness == theme.BrightnessDark {
		return theme.DefaultLight()
	}
	return theme.DefaultDark()
}
