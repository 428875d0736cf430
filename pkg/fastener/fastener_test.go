package fastener

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/fasten/pkg/animation"
	"github.com/go-drift/fasten/pkg/errors"
	"github.com/go-drift/fasten/pkg/graphics"
	"github.com/go-drift/fasten/pkg/theme"
	"github.com/go-drift/fasten/pkg/update"
)

// testOwner is a minimal Owner for exercising fasteners without a tree.
type testOwner struct {
	name      string
	parent    *testOwner
	fasteners map[string]Fastener
	flags     update.Flags
	events    []string
}

func newTestOwner(name string, parent *testOwner) *testOwner {
	return &testOwner{name: name, parent: parent, fasteners: make(map[string]Fastener)}
}

func (o *testOwner) OwnerName() string { return o.name }

func (o *testOwner) ParentOwner() Owner {
	if o.parent == nil {
		return nil
	}
	return o.parent
}

func (o *testOwner) Fastener(name string) Fastener {
	if f, ok := o.fasteners[name]; ok {
		return f
	}
	return nil
}

func (o *testOwner) Declare(f Fastener)               { o.fasteners[f.Name()] = f }
func (o *testOwner) RequireUpdate(flags update.Flags) { o.flags |= flags }

func (o *testOwner) WillSetValue(f Fastener, newValue, oldValue any) {
	o.events = append(o.events, "will:"+f.Name())
}

func (o *testOwner) DidSetValue(f Fastener, newValue, oldValue any) {
	o.events = append(o.events, "did:"+f.Name())
}

func (o *testOwner) mountAll() {
	for _, f := range o.fasteners {
		f.Mount()
	}
}

type stubClock struct{ now time.Time }

func (c *stubClock) Now() time.Time { return c.now }

func useClock(t *testing.T) *stubClock {
	t.Helper()
	c := &stubClock{now: time.Unix(1000, 0)}
	prev := animation.SetClock(c)
	t.Cleanup(func() { animation.SetClock(prev) })
	return c
}

// captureReports routes engine error reports into a slice for the test.
func captureReports(t *testing.T) *[]*errors.FastenError {
	t.Helper()
	var reports []*errors.FastenError
	prev := errors.SetHandler(&recordingHandler{onError: func(err *errors.FastenError) {
		reports = append(reports, err)
	}})
	t.Cleanup(func() { errors.SetHandler(prev) })
	return &reports
}

type recordingHandler struct {
	onError    func(*errors.FastenError)
	onCallback func(*errors.CallbackError)
}

func (h *recordingHandler) HandleError(err *errors.FastenError) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *recordingHandler) HandlePanic(*errors.PanicError) {}

func (h *recordingHandler) HandleCallbackError(err *errors.CallbackError) {
	if h.onCallback != nil {
		h.onCallback(err)
	}
}

func TestAffinityMonotonic(t *testing.T) {
	type write struct {
		value    int
		affinity Affinity
	}
	tests := []struct {
		name   string
		writes []write
		want   int
	}{
		{"default wins over transient", []write{{1, Transient}, {2, Extrinsic}}, 2},
		{"lower dropped", []write{{1, Reflexive}, {2, Extrinsic}, {3, Intrinsic}}, 1},
		{"equal supersedes", []write{{1, Intrinsic}, {2, Intrinsic}}, 2},
		{"higher supersedes", []write{{1, Intrinsic}, {2, Reflexive}, {3, Extrinsic}, {4, Reflexive}}, 4},
		{"inherited below intrinsic", []write{{1, Intrinsic}, {2, Inherited}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner := newTestOwner("view", nil)
			p := NewProperty(owner, "count", 0)
			for _, w := range tt.writes {
				p.SetState(w.value, w.affinity)
			}
			if got := p.State(); got != tt.want {
				t.Errorf("State() = %d, want %d", got, tt.want)
			}
			p.Recohere(time.Now())
			if got := p.Value(); got != tt.want {
				t.Errorf("Value() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPropertyLazyRecohere(t *testing.T) {
	owner := newTestOwner("view", nil)
	p := NewProperty(owner, "label", "a", WithUpdateFlags(update.NeedsLayout))
	var changes []string
	p.OnDidSetValue(func(newValue, oldValue string) { changes = append(changes, oldValue+">"+newValue) })

	p.SetState("b")
	if p.Value() != "a" {
		t.Errorf("value changed before recohere: %q", p.Value())
	}
	if p.Status()&Dirty == 0 {
		t.Error("SetState should mark the property dirty")
	}
	if !owner.flags.Has(update.NeedsAnimate) {
		t.Errorf("owner flags = %s, want animate", owner.flags)
	}
	owner.flags = update.None

	if !p.Recohere(time.Now()) {
		t.Error("Recohere should report a change")
	}
	if p.Recohere(time.Now()) {
		t.Error("second Recohere should be a no-op")
	}
	if p.Value() != "b" || !owner.flags.Has(update.NeedsLayout) {
		t.Errorf("Value() = %q, flags = %s", p.Value(), owner.flags)
	}
	if diff := cmp.Diff([]string{"a>b"}, changes); diff != "" {
		t.Errorf("callbacks (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"will:label", "did:label"}, owner.events); diff != "" {
		t.Errorf("owner events (-want +got):\n%s", diff)
	}

	// Writing the current value does not dirty the property.
	p.SetState("b")
	if p.Status()&Dirty != 0 {
		t.Error("unchanged write should not mark dirty")
	}
}

func TestCallbackPanicIsolated(t *testing.T) {
	var failures []*errors.CallbackError
	prev := errors.SetHandler(&recordingHandler{onCallback: func(err *errors.CallbackError) {
		failures = append(failures, err)
	}})
	defer errors.SetHandler(prev)

	owner := newTestOwner("view", nil)
	p := NewProperty(owner, "n", 0)
	called := false
	p.OnDidSetValue(func(int, int) { panic("boom") })
	p.OnDidSetValue(func(int, int) { called = true })

	p.SetState(1)
	p.Recohere(time.Now())
	if !called || p.Value() != 1 {
		t.Errorf("later callback called = %v, value = %d", called, p.Value())
	}
	if len(failures) != 1 || failures[0].Phase != "didSetValue" || failures[0].Owner != "view.n" {
		t.Errorf("failures = %+v", failures)
	}
}

func TestAnimatorOpacityScenario(t *testing.T) {
	clock := useClock(t)
	t0 := clock.now
	owner := newTestOwner("view", nil)
	opacity := NewAnimator(owner, "opacity", 0.0)

	timing := animation.TimingOf(1000*time.Millisecond, animation.Linear)
	opacity.SetState(1.0, &timing)
	if !opacity.Animating() {
		t.Fatal("expected Animating after SetState with timing")
	}

	opacity.Recohere(t0.Add(500 * time.Millisecond))
	if got := opacity.Value(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("value at 500ms = %v, want 0.5", got)
	}
	if !owner.flags.Has(update.NeedsAnimate) {
		t.Error("animating animator should keep requesting animate")
	}

	opacity.Recohere(t0.Add(1000 * time.Millisecond))
	if got := opacity.Value(); got != 1 {
		t.Errorf("value at 1000ms = %v, want exactly 1", got)
	}
	if opacity.Status() != 0 {
		t.Errorf("status = %s, want quiescent", opacity.Status())
	}
}

func TestAnimatorConvergence(t *testing.T) {
	easings := []animation.Easing{animation.Linear, animation.Ease, animation.EaseIn, animation.EaseOut, animation.EaseInOut, animation.Step}
	durations := []time.Duration{time.Millisecond, 300 * time.Millisecond, 2 * time.Second}
	for _, easing := range easings {
		for _, d := range durations {
			clock := useClock(t)
			a := NewAnimator(newTestOwner("v", nil), "x", -3.5)
			timing := animation.TimingOf(d, easing)
			a.SetState(7.25, &timing)
			a.Recohere(clock.now.Add(d / 3))
			a.Recohere(clock.now.Add(d + time.Nanosecond))
			if a.Value() != 7.25 || a.Animating() {
				t.Errorf("duration %s: value = %v animating = %v", d, a.Value(), a.Animating())
			}
		}
	}
}

func TestAnimatorInterruptRestartsFromCurrent(t *testing.T) {
	clock := useClock(t)
	t0 := clock.now
	a := NewAnimator(newTestOwner("v", nil), "x", 0.0)
	timing := animation.TimingOf(time.Second, animation.Linear)

	a.SetState(100, &timing)
	a.Recohere(t0.Add(250 * time.Millisecond))
	if a.Value() != 25 {
		t.Fatalf("value = %v, want 25", a.Value())
	}

	clock.now = t0.Add(250 * time.Millisecond)
	a.SetState(0, &timing)
	a.Recohere(clock.now)
	if a.Value() != 25 {
		t.Errorf("restart snapped to %v, want 25", a.Value())
	}
	a.Recohere(clock.now.Add(500 * time.Millisecond))
	if math.Abs(a.Value()-12.5) > 1e-9 {
		t.Errorf("value = %v, want 12.5", a.Value())
	}
}

func TestAnimatorSameTargetIgnored(t *testing.T) {
	clock := useClock(t)
	t0 := clock.now
	a := NewAnimator(newTestOwner("v", nil), "x", 0.0)
	timing := animation.TimingOf(time.Second, animation.Linear)
	a.SetState(1, &timing)

	clock.now = t0.Add(500 * time.Millisecond)
	a.SetState(1, &timing)
	a.Recohere(t0.Add(750 * time.Millisecond))
	if math.Abs(a.Value()-0.75) > 1e-9 {
		t.Errorf("value = %v, want 0.75 (transition should not restart)", a.Value())
	}
}

func TestAnimatorRecohereIdempotentPerTick(t *testing.T) {
	clock := useClock(t)
	a := NewAnimator(newTestOwner("v", nil), "x", 0.0)
	timing := animation.TimingOf(time.Second, animation.Linear)
	a.SetState(1, &timing)

	now := clock.now.Add(100 * time.Millisecond)
	if !a.Recohere(now) {
		t.Error("first recohere should change the value")
	}
	if a.Recohere(now) {
		t.Error("recohere at the same timestamp should be a no-op")
	}
}

func TestAnimatorImmediateAndDefaultTiming(t *testing.T) {
	clock := useClock(t)
	a := NewAnimator(newTestOwner("v", nil), "x", 0.0,
		WithTiming(animation.TimingOf(time.Second, animation.Linear)))

	a.SetState(10, nil)
	if !a.Animating() {
		t.Error("nil timing should fall back to the default timing")
	}
	a.SetValue(4)
	a.Recohere(clock.now)
	if a.Animating() || a.Value() != 4 {
		t.Errorf("SetValue: animating = %v, value = %v", a.Animating(), a.Value())
	}
}

func TestAnimatorDidTransition(t *testing.T) {
	clock := useClock(t)
	a := NewAnimator(newTestOwner("v", nil), "color", graphics.ColorBlack)
	var done []graphics.Color
	a.OnDidTransition(func(v graphics.Color) { done = append(done, v) })

	timing := animation.TimingOf(200*time.Millisecond, animation.EaseOut)
	a.SetState(graphics.ColorWhite, &timing)
	a.Recohere(clock.now.Add(100 * time.Millisecond))
	if len(done) != 0 {
		t.Error("transition reported complete early")
	}
	mid := a.Value()
	if mid == graphics.ColorBlack || mid == graphics.ColorWhite {
		t.Errorf("midpoint color %s should be between endpoints", mid)
	}
	a.Recohere(clock.now.Add(200 * time.Millisecond))
	if diff := cmp.Diff([]graphics.Color{graphics.ColorWhite}, done); diff != "" {
		t.Errorf("transitions (-want +got):\n%s", diff)
	}
}

func TestAnimatorWithLerp(t *testing.T) {
	clock := useClock(t)
	halfway := func(a, b string, u float64) string {
		if u < 0.5 {
			return a
		}
		return a + "-" + b
	}
	a := NewAnimator(newTestOwner("v", nil), "label", "x", WithLerp[string](halfway))
	timing := animation.TimingOf(time.Second, animation.Linear)
	a.SetState("y", &timing)
	a.Recohere(clock.now.Add(600 * time.Millisecond))
	if a.Value() != "x-y" {
		t.Errorf("Value() = %q, want x-y", a.Value())
	}
}

func TestInheritancePropagation(t *testing.T) {
	parent := newTestOwner("parent", nil)
	child := newTestOwner("child", parent)
	p := NewProperty(parent, "color", "red")
	c := NewProperty(child, "color", "", WithInherits(true))
	parent.mountAll()
	child.mountAll()

	if c.Inlet() != p {
		t.Fatal("mount should bind the inheriting property to the ancestor")
	}
	if outlets := p.Outlets(); len(outlets) != 1 || outlets[0] != c {
		t.Errorf("outlets = %v, want [child]", outlets)
	}
	c.Recohere(time.Now())
	if c.Value() != "red" || c.Affinity() != Inherited {
		t.Errorf("child = %q (%s), want red (inherited)", c.Value(), c.Affinity())
	}

	p.SetState("blue")
	if c.Status()&Dirty == 0 {
		t.Error("decohering the parent should eagerly dirty the child")
	}
	if c.Value() != "red" {
		t.Errorf("child = %q before recohere, want red", c.Value())
	}
	p.Recohere(time.Now())
	c.Recohere(time.Now())
	if c.Value() != "blue" {
		t.Errorf("child = %q, want blue", c.Value())
	}

	c.SetState("green")
	c.Recohere(time.Now())
	p.SetState("black")
	p.Recohere(time.Now())
	c.Recohere(time.Now())
	if c.Value() != "green" || c.Inherits() {
		t.Errorf("child = %q inherits = %v; explicit write should stop tracking", c.Value(), c.Inherits())
	}

	c.SetInherits(true)
	c.Recohere(time.Now())
	if c.Value() != "black" {
		t.Errorf("child = %q, want black after re-enabling inheritance", c.Value())
	}
}

func TestInheritUnderAnotherName(t *testing.T) {
	root := newTestOwner("root", nil)
	parent := newTestOwner("parent", root)
	child := newTestOwner("child", parent)
	NewProperty(root, "tint", "gray")
	color := NewProperty(parent, "color", "teal")
	tint := NewProperty(child, "tint", "", WithInherits(true), WithInheritName("color"))
	root.mountAll()
	parent.mountAll()
	child.mountAll()

	if tint.Inlet() != color {
		t.Fatalf("inlet = %v, want the parent's color property", tint.Inlet())
	}
	tint.Recohere(time.Now())
	if tint.Value() != "teal" {
		t.Errorf("tint = %q, want teal", tint.Value())
	}
	if child.Fastener("tint") != tint {
		t.Error("the property should still be registered under its own name")
	}
}

func TestInletPullsDirtyUpstream(t *testing.T) {
	a := NewProperty(newTestOwner("a", nil), "n", 1)
	b := NewProperty(newTestOwner("b", nil), "n", 0)
	if err := b.BindInlet(a); err != nil {
		t.Fatal(err)
	}
	a.SetState(5)
	b.Recohere(time.Now())
	if b.Value() != 5 || a.Value() != 5 {
		t.Errorf("a = %d, b = %d; recohering b should pull a", a.Value(), b.Value())
	}
}

func TestCycleRejection(t *testing.T) {
	reports := captureReports(t)
	x := NewProperty(newTestOwner("x", nil), "v", 0)
	y := NewProperty(newTestOwner("y", nil), "v", 0)
	z := NewProperty(newTestOwner("z", nil), "v", 0)

	if err := y.BindInlet(x); err != nil {
		t.Fatal(err)
	}
	if err := z.BindInlet(y); err != nil {
		t.Fatal(err)
	}
	err := x.BindInlet(z)
	if !errors.Is(err, errors.ErrCyclicInlet) {
		t.Fatalf("BindInlet = %v, want ErrCyclicInlet", err)
	}
	if x.Inherits() || x.Inlet() != nil {
		t.Errorf("x inherits = %v inlet = %v; want non-inheriting and unbound", x.Inherits(), x.Inlet())
	}
	if err := x.BindInlet(x); !errors.Is(err, errors.ErrCyclicInlet) {
		t.Errorf("self bind = %v, want ErrCyclicInlet", err)
	}
	if len(*reports) != 2 || (*reports)[0].Kind != errors.KindCyclicInlet {
		t.Errorf("reports = %v", *reports)
	}

	// The rejected graph still settles.
	x.SetState(3)
	x.Recohere(time.Now())
	z.Recohere(time.Now())
	if z.Value() != 3 {
		t.Errorf("z = %d, want 3", z.Value())
	}
}

func TestCycleRejectionKeepsPreviousInlet(t *testing.T) {
	captureReports(t)
	a := NewProperty(newTestOwner("a", nil), "v", 0)
	b := NewProperty(newTestOwner("b", nil), "v", 0)
	c := NewProperty(newTestOwner("c", nil), "v", 0)
	if err := a.BindInlet(c); err != nil {
		t.Fatal(err)
	}
	if err := b.BindInlet(a); err != nil {
		t.Fatal(err)
	}
	if err := a.BindInlet(b); err == nil {
		t.Fatal("expected cycle error")
	}
	if a.Inlet() != c || a.Inherits() {
		t.Errorf("inlet = %v inherits = %v; want previous inlet kept, not inheriting", a.Inlet(), a.Inherits())
	}
}

func TestInletTypeMismatchIsAbsent(t *testing.T) {
	reports := captureReports(t)
	parent := newTestOwner("parent", nil)
	child := newTestOwner("child", parent)
	NewProperty(parent, "size", "large")
	c := NewProperty(child, "size", 12.0, WithInherits(true))
	parent.mountAll()
	child.mountAll()

	c.Recohere(time.Now())
	if c.Defined() || c.Value() != 0 || c.Status()&Absent == 0 {
		t.Errorf("value = %v defined = %v status = %s; want absent zero", c.Value(), c.Defined(), c.Status())
	}
	c.Decohere()
	c.Recohere(time.Now())
	if len(*reports) != 1 || (*reports)[0].Kind != errors.KindInletType {
		t.Errorf("reports = %v, want one inlet-type report", *reports)
	}

	c.SetState(4)
	c.Recohere(time.Now())
	if !c.Defined() || c.Value() != 4 || c.Status()&Absent != 0 {
		t.Errorf("explicit write should restore a defined value, got %v (%s)", c.Value(), c.Status())
	}
}

func TestUnmountSeversBindings(t *testing.T) {
	parent := newTestOwner("parent", nil)
	child := newTestOwner("child", parent)
	p := NewProperty(parent, "n", 1)
	c := NewProperty(child, "n", 0, WithInherits(true))
	parent.mountAll()
	child.mountAll()
	c.Recohere(time.Now())

	p.Unmount()
	if c.Inlet() != nil || len(p.Outlets()) != 0 {
		t.Error("unmount should sever outlets")
	}
	if c.Status()&Deriving != 0 || c.Value() != 1 {
		t.Errorf("outlet status = %s value = %d; want last value kept", c.Status(), c.Value())
	}

	p.Mount()
	c.Unmount()
	c.Mount()
	if c.Inlet() != p {
		t.Error("remount should rebind the inheriting property")
	}
}

func TestThemeAnimatorLightToDark(t *testing.T) {
	clock := useClock(t)
	owner := newTestOwner("card", nil)
	bg := NewThemeAnimator[graphics.Color](owner, "background", theme.BackgroundColor)
	bg.Mount()
	if !owner.flags.Has(update.NeedsTheme) {
		t.Error("mount should request a theme pass")
	}

	timing := animation.TimingOf(time.Second, animation.Linear)
	light, dark := theme.DefaultLight(), theme.DefaultDark()
	if !bg.ApplyTheme(light, theme.DefaultMood, &timing) {
		t.Fatal("first ApplyTheme should set a target")
	}
	bg.Recohere(clock.now)
	want, _ := light.Get(theme.BackgroundColor, theme.DefaultMood)
	if bg.Value() != want || bg.Animating() {
		t.Errorf("first resolution = %s animating = %v, want snap to %s", bg.Value(), bg.Animating(), want)
	}

	if bg.ApplyTheme(light, theme.DefaultMood, &timing) {
		t.Error("unchanged resolution should not set a target")
	}

	bg.ApplyTheme(dark, theme.DefaultMood, &timing)
	if !bg.Animating() {
		t.Fatal("theme change should animate")
	}
	bg.Recohere(clock.now.Add(time.Second))
	want, _ = dark.Get(theme.BackgroundColor, theme.DefaultMood)
	if bg.Value() != want {
		t.Errorf("value = %s, want %s", bg.Value(), want)
	}
}

func TestThemeAnimatorLiteralClearsLook(t *testing.T) {
	useClock(t)
	reports := captureReports(t)
	owner := newTestOwner("card", nil)
	op := NewThemeAnimator[float64](owner, "opacity", theme.Opacity)
	op.SetValue(0.2)
	if _, ok := op.Look(); ok {
		t.Error("SetState should unbind the look")
	}
	if op.ApplyTheme(theme.DefaultLight(), theme.DefaultMood, nil) {
		t.Error("animator without a look should ignore themes")
	}

	op.SetLook(theme.TextColor, nil)
	if op.ApplyTheme(theme.DefaultLight(), theme.DefaultMood, nil) {
		t.Error("mistyped look should not set a target")
	}
	if len(*reports) != 1 || (*reports)[0].Kind != errors.KindInletType {
		t.Errorf("reports = %v", *reports)
	}
}

func TestStatusString(t *testing.T) {
	if got := (Dirty | Animating).String(); got != "dirty|animating" {
		t.Errorf("String() = %q", got)
	}
	if got := Status(0).String(); got != "quiescent" {
		t.Errorf("String() = %q", got)
	}
	if !(Transient < Inherited && Inherited < Intrinsic && Intrinsic < Extrinsic && Extrinsic < Reflexive) {
		t.Error("affinity order broken")
	}
}
