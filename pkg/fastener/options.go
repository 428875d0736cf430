package fastener

import (
	"github.com/go-drift/fasten/pkg/animation"
	"github.com/go-drift/fasten/pkg/update"
)

// Option configures a fastener at construction.
type Option func(*options)

type options struct {
	updateFlags      update.Flags
	hasUpdateFlags   bool
	decoherenceFlags update.Flags
	inherits         bool
	affinity         Affinity
	hasAffinity      bool
	inheritName      string
	equal            any
	lerp             any
	timing           *animation.Timing
	registry         *animation.Registry
}

func buildOptions(opts []Option) options {
	o := options{decoherenceFlags: update.NeedsAnimate}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithUpdateFlags sets the flags required of the owner whenever the
// fastener's value changes.
func WithUpdateFlags(flags update.Flags) Option {
	return func(o *options) {
		o.updateFlags = flags
		o.hasUpdateFlags = true
	}
}

// WithDecoherenceFlags sets the flags required of the owner when the
// fastener becomes dirty. The owner's update pass must recohere the
// fastener in the phase these flags select. The default is NeedsAnimate.
func WithDecoherenceFlags(flags update.Flags) Option {
	return func(o *options) { o.decoherenceFlags = flags }
}

// WithInherits makes the fastener inherit from the nearest ancestor fastener
// with the same name once mounted.
func WithInherits(inherits bool) Option {
	return func(o *options) { o.inherits = inherits }
}

// WithAffinity sets the affinity of the initial value. The default is
// Transient, so any explicit write overrides it.
func WithAffinity(a Affinity) Option {
	return func(o *options) {
		o.affinity = a
		o.hasAffinity = true
	}
}

// WithInheritName sets the ancestor fastener name looked up when mounting.
// The default is the fastener's own name.
func WithInheritName(name string) Option {
	return func(o *options) { o.inheritName = name }
}

// WithEqual sets the equality used to detect value changes.
// The default is reflect.DeepEqual.
func WithEqual[T any](equal func(a, b T) bool) Option {
	return func(o *options) { o.equal = equal }
}

// WithLerp sets the interpolation of an animator, bypassing the registry.
func WithLerp[T any](lerp animation.Lerp[T]) Option {
	return func(o *options) { o.lerp = lerp }
}

// WithTiming sets the timing an animator uses when SetState is called
// without one. Pass &animation.Immediate to SetState to snap regardless.
func WithTiming(t animation.Timing) Option {
	return func(o *options) { o.timing = &t }
}

// WithRegistry sets the interpolator registry an animator consults.
// The default is animation.DefaultRegistry().
func WithRegistry(r *animation.Registry) Option {
	return func(o *options) { o.registry = r }
}
