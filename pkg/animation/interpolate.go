package animation

import (
	"reflect"
	"sort"
	"sync"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/go-drift/fasten/pkg/graphics"
)

// Lerp interpolates between a and b at progress u. u is usually in [0, 1]
// but easings may overshoot, so implementations should extrapolate.
type Lerp[T any] func(a, b T, u float64) T

// Interpolator maps progress to a value between two fixed endpoints.
// Endpoints are never mutated; Evaluate is a pure function of u.
type Interpolator[T any] struct {
	// Begin is the value at u = 0.
	Begin T
	// End is the value at u = 1.
	End T
	// Lerp combines the endpoints. A nil Lerp steps from Begin to End at u = 1.
	Lerp Lerp[T]
}

// Evaluate returns the interpolated value at u. The endpoints are returned
// exactly at u = 0 and u = 1.
func (in Interpolator[T]) Evaluate(u float64) T {
	switch {
	case u == 0:
		return in.Begin
	case u == 1:
		return in.End
	case in.Lerp == nil:
		return StepLerp(in.Begin, in.End, u)
	default:
		return in.Lerp(in.Begin, in.End, u)
	}
}

// Registry maps value types to their lerp functions.
type Registry struct {
	mu    sync.RWMutex
	lerps map[reflect.Type]any
}

// NewRegistry returns a registry preloaded with the built-in interpolators:
// float64, float32, int, graphics.Color, graphics.ColorStop, graphics.Length,
// graphics.Offset and graphics.EdgeInsets.
func NewRegistry() *Registry {
	r := &Registry{lerps: make(map[reflect.Type]any)}
	Register[float64](r, LerpFloat64)
	Register[float32](r, LerpFloat32)
	Register[int](r, LerpInt)
	Register[graphics.Color](r, LerpColor)
	Register[graphics.ColorStop](r, LerpColorStop)
	Register[graphics.Length](r, LerpLength)
	Register[graphics.Offset](r, LerpOffset)
	Register[graphics.EdgeInsets](r, LerpEdgeInsets)
	return r
}

// Register installs lerp as the interpolator for T, replacing any previous one.
func Register[T any](r *Registry, lerp Lerp[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lerps[reflect.TypeFor[T]()] = lerp
}

// Lookup returns the lerp registered for T.
func Lookup[T any](r *Registry) (Lerp[T], bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	lerp, ok := r.lerps[reflect.TypeFor[T]()].(Lerp[T])
	return lerp, ok
}

// Between returns an interpolator from a to b using the lerp registered for
// T. Types without a registered lerp step from a to b.
func Between[T any](r *Registry, a, b T) Interpolator[T] {
	lerp, _ := Lookup[T](r)
	return Interpolator[T]{Begin: a, End: b, Lerp: lerp}
}

// LerpAny interpolates two values of unknown static type. It returns false
// when the dynamic types differ or no lerp is registered for them.
func (r *Registry) LerpAny(a, b any, u float64) (any, bool) {
	if a == nil || b == nil {
		return nil, false
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return nil, false
	}
	r.mu.RLock()
	lerp, ok := r.lerps[ta]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	out := reflect.ValueOf(lerp).Call([]reflect.Value{
		reflect.ValueOf(a), reflect.ValueOf(b), reflect.ValueOf(u),
	})
	return out[0].Interface(), true
}

var (
	registryMu      sync.Mutex
	defaultRegistry *Registry
)

// InitRegistry installs a fresh process-wide registry and returns it.
func InitRegistry() *Registry {
	registryMu.Lock()
	defer registryMu.Unlock()
	defaultRegistry = NewRegistry()
	return defaultRegistry
}

// ResetRegistry discards the process-wide registry. The next DefaultRegistry
// call initializes a new one.
func ResetRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()
	defaultRegistry = nil
}

// DefaultRegistry returns the process-wide registry, initializing it on first use.
func DefaultRegistry() *Registry {
	registryMu.Lock()
	r := defaultRegistry
	registryMu.Unlock()
	if r != nil {
		return r
	}
	return InitRegistry()
}

// StepLerp holds a until u reaches 1.
func StepLerp[T any](a, b T, u float64) T {
	if u >= 1 {
		return b
	}
	return a
}

// LerpFloat64 linearly interpolates between two float64 values.
func LerpFloat64(a, b float64, t float64) float64 {
	return a + (b-a)*t
}

// LerpFloat32 linearly interpolates between two float32 values.
func LerpFloat32(a, b float32, t float64) float32 {
	return a + (b-a)*float32(t)
}

// LerpInt interpolates and rounds to the nearest integer.
func LerpInt(a, b int, t float64) int {
	v := LerpFloat64(float64(a), float64(b), t)
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}

// LerpColor interpolates each channel of two colors independently in sRGB,
// so the midpoint of a color is the midpoint of its channels.
func LerpColor(a, b graphics.Color, t float64) graphics.Color {
	return blendColor(a, b, t, colorful.Color.BlendRgb)
}

// LerpColorLinear interpolates two colors in linear RGB, which avoids the
// dark band sRGB blending produces between saturated hues.
func LerpColorLinear(a, b graphics.Color, t float64) graphics.Color {
	return blendColor(a, b, t, colorful.Color.BlendLinearRgb)
}

// LerpColorLab interpolates two colors in CIE L*a*b* space.
func LerpColorLab(a, b graphics.Color, t float64) graphics.Color {
	return blendColor(a, b, t, colorful.Color.BlendLab)
}

var colorBlends = map[string]Lerp[graphics.Color]{
	"srgb":   LerpColor,
	"linear": LerpColorLinear,
	"lab":    LerpColorLab,
}

// ColorBlendByName returns the color lerp for a blend space name: "srgb",
// "linear" or "lab".
func ColorBlendByName(name string) (Lerp[graphics.Color], bool) {
	lerp, ok := colorBlends[name]
	return lerp, ok
}

// ColorBlendNames returns the sorted color blend space names.
func ColorBlendNames() []string {
	names := make([]string, 0, len(colorBlends))
	for name := range colorBlends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// blendColor mixes the color channels with blend and alpha linearly.
func blendColor(a, b graphics.Color, t float64, blend func(c1, c2 colorful.Color, t float64) colorful.Color) graphics.Color {
	ar, ag, ab, aa := a.RGBAF()
	br, bg, bb, ba := b.RGBAF()
	mixed := blend(colorful.Color{R: ar, G: ag, B: ab}, colorful.Color{R: br, G: bg, B: bb}, t).Clamped()
	return graphics.ColorF(mixed.R, mixed.G, mixed.B, LerpFloat64(aa, ba, t))
}

// LerpLength interpolates lengths with the same unit; lengths with
// different units step.
func LerpLength(a, b graphics.Length, t float64) graphics.Length {
	if a.Unit != b.Unit {
		return StepLerp(a, b, t)
	}
	return graphics.Length{Value: LerpFloat64(a.Value, b.Value, t), Unit: a.Unit}
}

// LerpColorStop interpolates each component of a gradient stop independently.
func LerpColorStop(a, b graphics.ColorStop, t float64) graphics.ColorStop {
	return graphics.ColorStop{
		Color:    LerpColor(a.Color, b.Color, t),
		Position: LerpLength(a.Position, b.Position, t),
		Hint:     LerpLength(a.Hint, b.Hint, t),
	}
}

// LerpOffset linearly interpolates between two Offset values.
func LerpOffset(a, b graphics.Offset, t float64) graphics.Offset {
	return graphics.Offset{
		X: LerpFloat64(a.X, b.X, t),
		Y: LerpFloat64(a.Y, b.Y, t),
	}
}

// LerpEdgeInsets linearly interpolates between two EdgeInsets values.
func LerpEdgeInsets(a, b graphics.EdgeInsets, t float64) graphics.EdgeInsets {
	return graphics.EdgeInsets{
		Left:   LerpFloat64(a.Left, b.Left, t),
		Top:    LerpFloat64(a.Top, b.Top, t),
		Right:  LerpFloat64(a.Right, b.Right, t),
		Bottom: LerpFloat64(a.Bottom, b.Bottom, t),
	}
}
