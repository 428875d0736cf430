package fastener

import (
	"fmt"
	"reflect"

	"github.com/go-drift/fasten/pkg/animation"
	"github.com/go-drift/fasten/pkg/errors"
	"github.com/go-drift/fasten/pkg/theme"
	"github.com/go-drift/fasten/pkg/update"
)

// ThemeAnimator is an animator whose target may be a look resolved against
// the owner's theme and mood.
//
// Owners call ApplyTheme during their compute phase. When the resolved value
// differs from the previous resolution the animator transitions to it with
// the timing supplied by the owner, so switching from a light to a dark theme
// animates every themed value. The first resolution snaps.
type ThemeAnimator[T any] struct {
	Animator[T]

	look        theme.Look
	hasLook     bool
	lookTiming  *animation.Timing
	lookChanged bool

	resolved    T
	hasResolved bool
}

// NewThemeAnimator creates a theme animator bound to look and declares it on
// owner. Its value is undefined until the first ApplyTheme.
func NewThemeAnimator[T any](owner Owner, name string, look theme.Look, opts ...Option) *ThemeAnimator[T] {
	a := &ThemeAnimator[T]{look: look, hasLook: true, lookChanged: true}
	var zero T
	a.initAnimator(a, owner, name, KindThemeAnimator, zero, false, buildOptions(opts))
	if owner != nil {
		owner.Declare(a)
	}
	return a
}

// Look returns the bound look, if any.
func (a *ThemeAnimator[T]) Look() (theme.Look, bool) { return a.look, a.hasLook }

// SetLook binds look at the given affinity. The value transitions to the
// look's resolution with timing on the owner's next theme pass.
func (a *ThemeAnimator[T]) SetLook(look theme.Look, timing *animation.Timing, affinity ...Affinity) {
	aff := resolveAffinity(affinity)
	if a.affinity > aff {
		return
	}
	a.affinity = aff
	a.stopInheriting(aff)
	if a.hasLook && a.look == look {
		return
	}
	a.look = look
	a.hasLook = true
	a.lookTiming = timing
	a.lookChanged = true
	a.requireUpdate(update.NeedsTheme)
}

// SetState sets a literal target and unbinds the look.
func (a *ThemeAnimator[T]) SetState(v T, timing *animation.Timing, affinity ...Affinity) {
	if a.affinity > resolveAffinity(affinity) {
		return
	}
	a.clearLook()
	a.Animator.SetState(v, timing, affinity...)
}

// SetValue applies v immediately and unbinds the look.
func (a *ThemeAnimator[T]) SetValue(v T) { a.SetState(v, &animation.Immediate) }

func (a *ThemeAnimator[T]) clearLook() {
	var zero theme.Look
	a.look = zero
	a.hasLook = false
	a.lookTiming = nil
	a.lookChanged = false
	a.hasResolved = false
}

// ApplyTheme resolves the look against th and mood. If the result differs
// from the previous resolution the animator transitions to it using timing,
// or the SetLook timing after a look change. It reports whether a new target
// was set. Inheriting animators and animators without a look ignore themes.
func (a *ThemeAnimator[T]) ApplyTheme(th *theme.Theme, mood theme.MoodVector, timing *animation.Timing) bool {
	if !a.hasLook || a.Inherits() {
		return false
	}
	raw, ok := th.Get(a.look, mood)
	if !ok {
		return false
	}
	v, ok := raw.(T)
	if !ok {
		errors.Report(&errors.FastenError{
			Op:       "fastener.ApplyTheme",
			Kind:     errors.KindInletType,
			Owner:    a.ownerName(),
			Fastener: a.name,
			Err:      fmt.Errorf("%w: look %s has %T, want %s", errors.ErrInletType, a.look, raw, reflect.TypeFor[T]()),
		})
		return false
	}
	if a.hasResolved && !a.lookChanged && a.equal(a.resolved, v) {
		return false
	}
	if a.lookChanged {
		timing = a.lookTiming
		a.lookChanged = false
		a.lookTiming = nil
	}
	if !a.defined {
		timing = nil
	}
	a.resolved = v
	a.hasResolved = true
	a.transition(v, timing)
	return true
}

// Mount schedules a theme pass in addition to the base mount behavior.
func (a *ThemeAnimator[T]) Mount() {
	mounted := a.mounted
	a.Animator.Mount()
	if !mounted && a.hasLook {
		a.requireUpdate(update.NeedsTheme)
	}
}
