package testing

import (
	"errors"
	"testing"
	"time"

	"github.com/go-drift/fasten/pkg/animation"
	"github.com/go-drift/fasten/pkg/core"
	"github.com/go-drift/fasten/pkg/graphics"
	"github.com/go-drift/fasten/pkg/testing/internal/testbed"
	"github.com/go-drift/fasten/pkg/theme"
	"github.com/go-drift/fasten/pkg/update"
)

func TestFakeClock_Advance(t *testing.T) {
	clk := NewFakeClock()
	start := clk.Now()

	got := clk.Advance(100 * time.Millisecond)
	if elapsed := got.Sub(start); elapsed != 100*time.Millisecond {
		t.Errorf("expected 100ms elapsed, got %v", elapsed)
	}
	if clk.Elapsed() != 100*time.Millisecond {
		t.Errorf("Elapsed = %v, want 100ms", clk.Elapsed())
	}
}

func TestFakeClock_Set(t *testing.T) {
	clk := NewFakeClock()
	target := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	clk.Set(target)
	if !clk.Now().Equal(target) {
		t.Errorf("expected %v, got %v", target, clk.Now())
	}
}

func TestFakeClock_Install(t *testing.T) {
	clk := NewFakeClock()
	restore := clk.Install()
	if !animation.Now().Equal(Epoch) {
		t.Errorf("animation.Now() = %v, want %v", animation.Now(), Epoch)
	}
	clk.Advance(time.Second)
	if !animation.Now().Equal(Epoch.Add(time.Second)) {
		t.Error("installed clock did not drive animation.Now")
	}
	restore()
	if animation.Now().Equal(Epoch.Add(time.Second)) {
		t.Error("restore did not reinstate the previous clock")
	}
}

func TestHarness_OpacityFade(t *testing.T) {
	fader := testbed.NewFader("fader", 100*time.Millisecond)
	h := NewHarnessWithT(t, fader.Node)
	if err := h.PumpUntilIdle(time.Second); err != nil {
		t.Fatal(err)
	}
	fader.Rendered = nil

	fader.Opacity.SetState(1.0, nil)
	h.Pump(0)
	h.Pump(50 * time.Millisecond)
	if got := fader.Opacity.Value(); got != 0.5 {
		t.Errorf("opacity at 50ms = %v, want 0.5", got)
	}
	if err := h.PumpUntilIdle(time.Second); err != nil {
		t.Fatal(err)
	}
	if got := fader.Opacity.Value(); got != 1 {
		t.Errorf("opacity after settling = %v, want 1", got)
	}
	if last := fader.Rendered[len(fader.Rendered)-1]; last != 1 {
		t.Errorf("last rendered opacity = %v, want 1", last)
	}
	if fader.Opacity.Status() != 0 {
		t.Errorf("status = %s, want quiescent", fader.Opacity.Status())
	}
}

func TestHarness_ThemeSwitch(t *testing.T) {
	fader := testbed.NewFader("fader", 0)
	h := NewHarnessWithT(t, fader.Node)
	if err := h.PumpUntilIdle(time.Second); err != nil {
		t.Fatal(err)
	}
	light, _ := theme.DefaultRegistry().Get("light")
	dark, _ := theme.DefaultRegistry().Get("dark")
	want, _ := light.Get(theme.AccentColor, theme.DefaultMood)
	if got := fader.Color.Value(); got != want.(graphics.Color) {
		t.Errorf("light accent = %s, want %s", got, want)
	}

	timing := animation.TimingOf(200*time.Millisecond, animation.Linear)
	fader.SetThemeTiming(&timing)
	fader.SetTheme(dark)
	h.Pump(0)
	if !fader.Color.Animating() {
		t.Error("theme switch did not start a transition")
	}
	if err := h.PumpUntilIdle(time.Second); err != nil {
		t.Fatal(err)
	}
	want, _ = dark.Get(theme.AccentColor, theme.DefaultMood)
	if got := fader.Color.Value(); got != want.(graphics.Color) {
		t.Errorf("dark accent = %s, want %s", got, want)
	}
}

func TestHarness_DerivedValues(t *testing.T) {
	counter := testbed.NewCounter("counter", 1)
	h := NewHarnessWithT(t, counter.Node)
	if err := h.PumpUntilIdle(time.Second); err != nil {
		t.Fatal(err)
	}

	counter.Count.SetState(5)
	if err := h.PumpUntilIdle(time.Second); err != nil {
		t.Fatal(err)
	}
	if counter.Computes != 1 {
		t.Errorf("Computes = %d, want 1", counter.Computes)
	}
	if got := Value[int](h.Find(ByName("counter")), "total"); got != 5 {
		t.Errorf("total = %d, want 5", got)
	}
}

// restless re-requests animation from every animate hook.
type restless struct{ *core.Node }

func (r *restless) OnAnimate(time.Time) error {
	r.RequireUpdate(update.NeedsAnimate)
	return nil
}

func TestHarness_SettleTimeout(t *testing.T) {
	r := &restless{}
	r.Node = core.NewNode("restless", r)
	h := NewHarnessWithT(t, r.Node)

	r.RequireUpdate(update.NeedsAnimate)
	err := h.PumpUntilIdle(100 * time.Millisecond)
	if !errors.Is(err, ErrSettleTimeout) {
		t.Errorf("err = %v, want ErrSettleTimeout", err)
	}
}

func TestHarness_Dispatch(t *testing.T) {
	h := NewHarnessWithT(t, core.NewNode("root", nil))
	ran := false
	h.Dispatch(func() { ran = true })
	if _, fired := h.Pump(0); !fired {
		t.Fatal("Dispatch did not request a frame")
	}
	if !ran {
		t.Error("dispatched callback did not run")
	}
}

func TestHarness_CleanupRestoresClock(t *testing.T) {
	h := NewHarness(core.NewNode("root", nil))
	h.Clock().Advance(time.Hour)
	h.Cleanup()
	if animation.Now().Equal(Epoch.Add(time.Hour)) {
		t.Error("Cleanup left the fake clock installed")
	}
	if h.Root().Mounted() {
		t.Error("Cleanup left the root mounted")
	}
}
