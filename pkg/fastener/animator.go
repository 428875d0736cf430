package fastener

import (
	"time"

	"github.com/go-drift/fasten/pkg/animation"
	"github.com/go-drift/fasten/pkg/errors"
	"github.com/go-drift/fasten/pkg/update"
)

// Animator is a property that transitions to new states over time.
//
// An animator is Quiescent until SetState is called with a non-zero timing.
// It then captures its current value as the origin, stamps the start time
// from the animation clock and stays Animating until a Recohere at or past
// start+duration sets the value to the target exactly. Setting a new target
// mid-transition restarts from the current value.
type Animator[T any] struct {
	Property[T]

	registry      *animation.Registry
	lerp          animation.Lerp[T]
	defaultTiming *animation.Timing

	timing   animation.Timing
	start    time.Time
	interp   animation.Interpolator[T]
	lastTick time.Time

	didTransition []func(value T)
}

// NewAnimator creates an animator with the given initial value and declares
// it on owner. Animators require NeedsRender on value change unless
// WithUpdateFlags says otherwise.
func NewAnimator[T any](owner Owner, name string, initial T, opts ...Option) *Animator[T] {
	a := &Animator[T]{}
	a.initAnimator(a, owner, name, KindAnimator, initial, true, buildOptions(opts))
	if owner != nil {
		owner.Declare(a)
	}
	return a
}

func (a *Animator[T]) initAnimator(self Fastener, owner Owner, name string, kind Kind, initial T, defined bool, o options) {
	if !o.hasUpdateFlags {
		o.updateFlags = update.NeedsRender
	}
	a.initProperty(self, owner, name, kind, initial, defined, o)
	a.registry = o.registry
	if lerp, ok := o.lerp.(animation.Lerp[T]); ok {
		a.lerp = lerp
	}
	a.defaultTiming = o.timing
}

// SetState transitions to v using timing at the given affinity (Extrinsic by
// default). A nil timing uses the animator's default timing, or applies v
// immediately if there is none.
func (a *Animator[T]) SetState(v T, timing *animation.Timing, affinity ...Affinity) {
	aff := resolveAffinity(affinity)
	if a.affinity > aff {
		return
	}
	a.affinity = aff
	a.stopInheriting(aff)
	if timing == nil {
		timing = a.defaultTiming
	}
	a.transition(v, timing)
}

// SetValue applies v immediately at the default affinity.
func (a *Animator[T]) SetValue(v T) { a.SetState(v, &animation.Immediate) }

// Timing returns the timing of the current or last transition.
func (a *Animator[T]) Timing() animation.Timing { return a.timing }

// Animating reports whether a transition is in flight.
func (a *Animator[T]) Animating() bool { return a.status&Animating != 0 }

// OnDidTransition registers a callback invoked when a transition completes.
func (a *Animator[T]) OnDidTransition(cb func(value T)) {
	a.didTransition = append(a.didTransition, cb)
}

// transition starts a transition to v without an affinity check.
func (a *Animator[T]) transition(v T, timing *animation.Timing) {
	animating := a.status&Animating != 0
	if animating && a.equal(a.state, v) {
		return
	}
	if timing == nil || timing.Duration <= 0 {
		a.status &^= Animating
		a.setState(v)
		return
	}
	if !animating && a.defined && a.equal(a.value, v) {
		a.state = v
		return
	}
	a.state = v
	a.timing = *timing
	a.start = animation.Now()
	a.interp = a.between(a.value, v)
	a.lastTick = time.Time{}
	a.status |= Animating
	a.Decohere()
}

func (a *Animator[T]) between(from, to T) animation.Interpolator[T] {
	if a.lerp != nil {
		return animation.Interpolator[T]{Begin: from, End: to, Lerp: a.lerp}
	}
	r := a.registry
	if r == nil {
		r = animation.DefaultRegistry()
	}
	return animation.Between(r, from, to)
}

// Recohere advances an in-flight transition to now, or resolves the value
// from the inlet or state when dirty. Repeated calls with the same timestamp
// are no-ops.
func (a *Animator[T]) Recohere(now time.Time) bool {
	if a.status&(Dirty|Animating) == 0 {
		return false
	}
	if a.status&Dirty == 0 && now.Equal(a.lastTick) {
		return false
	}
	a.lastTick = now
	a.status &^= Dirty

	if a.deriving() {
		a.status &^= Animating
		v, ok := a.inletValue(now)
		if !ok {
			return a.setAbsent()
		}
		a.state = v
		return a.applyValue(v)
	}
	if a.status&Animating == 0 {
		return a.applyValue(a.state)
	}

	elapsed := now.Sub(a.start)
	if a.timing.Fraction(elapsed) >= 1 {
		a.status &^= Animating
		changed := a.applyValue(a.state)
		a.notifyTransition()
		return changed
	}
	// Keep ticking until the transition completes.
	a.requireUpdate(a.decoherenceFlags)
	return a.applyValue(a.interp.Evaluate(a.timing.Progress(elapsed)))
}

func (a *Animator[T]) notifyTransition() {
	v := a.value
	for _, cb := range a.didTransition {
		errors.Guard("didTransition", a.label(), func() error {
			cb(v)
			return nil
		})
	}
}
