package animation

import (
	"fmt"
	"time"
)

// Timing describes a transition: how long it lasts and how progress is eased.
// Timing is an immutable value; the With methods return modified copies.
type Timing struct {
	Duration time.Duration
	Easing   Easing
}

// TimingOf returns a Timing with the given duration and easing.
// A nil easing means linear.
func TimingOf(duration time.Duration, easing Easing) Timing {
	return Timing{Duration: duration, Easing: easing}
}

// Immediate is a zero-length timing; transitions complete on the next tick.
var Immediate = Timing{Easing: Linear}

// WithDuration returns a copy of t with a different duration.
func (t Timing) WithDuration(d time.Duration) Timing {
	t.Duration = d
	return t
}

// WithEasing returns a copy of t with a different easing.
func (t Timing) WithEasing(e Easing) Timing {
	t.Easing = e
	return t
}

// Fraction returns linear progress for elapsed, clamped to [0, 1].
// A non-positive duration is always complete.
func (t Timing) Fraction(elapsed time.Duration) float64 {
	if t.Duration <= 0 {
		return 1
	}
	return clampUnit(float64(elapsed) / float64(t.Duration))
}

// Progress returns eased progress for elapsed. The end point is exact: once
// linear progress reaches 1 the result is 1 regardless of the easing.
func (t Timing) Progress(elapsed time.Duration) float64 {
	u := t.Fraction(elapsed)
	if u >= 1 {
		return 1
	}
	if t.Easing == nil {
		return u
	}
	return t.Easing(u)
}

func (t Timing) String() string {
	return fmt.Sprintf("Timing(%s)", t.Duration)
}
