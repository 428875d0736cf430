// Package theme resolves symbolic looks to literal styling values.
//
// A [Theme] is a lookup matrix: for every [Feel] it holds a table from
// [Look] to value. Resolution against a [MoodVector] picks the value of the
// first feel that defines the look and blends in the values of later feels
// by weight, using the animation interpolator registry. Theme animators
// re-resolve their looks whenever an owner's theme or mood changes, which is
// what drives light/dark transitions.
package theme

import (
	"maps"
	"sort"

	"github.com/go-drift/fasten/pkg/animation"
	"github.com/go-drift/fasten/pkg/graphics"
)

// Brightness indicates if a theme is light or dark.
type Brightness int

const (
	BrightnessLight Brightness = iota
	BrightnessDark
)

func (b Brightness) String() string {
	if b == BrightnessDark {
		return "dark"
	}
	return "light"
}

// Theme maps (feel, look) pairs to literal values.
type Theme struct {
	Name       string
	Brightness Brightness

	feels    map[Feel]map[Look]any
	registry *animation.Registry
}

// NewTheme returns an empty theme.
func NewTheme(name string, brightness Brightness) *Theme {
	return &Theme{
		Name:       name,
		Brightness: brightness,
		feels:      make(map[Feel]map[Look]any),
	}
}

// Set defines look under feel and returns t for chaining.
func (t *Theme) Set(feel Feel, look Look, value any) *Theme {
	table := t.feels[feel]
	if table == nil {
		table = make(map[Look]any)
		t.feels[feel] = table
	}
	table[look] = value
	return t
}

// WithRegistry sets the interpolator registry used to blend feels.
// Nil means the process-wide default registry.
func (t *Theme) WithRegistry(r *animation.Registry) *Theme {
	t.registry = r
	return t
}

// Lookup returns the raw value of look under feel.
func (t *Theme) Lookup(feel Feel, look Look) (any, bool) {
	v, ok := t.feels[feel][look]
	return v, ok
}

// Get resolves look for mood. Feels are consulted in mood order; the
// first defining feel provides the base value and each later defining feel
// is blended in by its weight (clamped to [0, 1]). Values that cannot be
// interpolated are replaced when the weight is at least 0.5. If no feel in
// the mood defines the look, the Default feel is consulted.
func (t *Theme) Get(look Look, mood MoodVector) (any, bool) {
	if t == nil {
		return nil, false
	}
	registry := t.registry
	if registry == nil {
		registry = animation.DefaultRegistry()
	}
	var result any
	found := false
	for _, c := range mood {
		v, ok := t.feels[c.Feel][look]
		if !ok {
			continue
		}
		if !found {
			result, found = v, true
			continue
		}
		w := min(max(c.Weight, 0), 1)
		if w == 0 {
			continue
		}
		if blended, ok := registry.LerpAny(result, v, w); ok {
			result = blended
		} else if w >= 0.5 {
			result = v
		}
	}
	if !found {
		return t.Lookup(Default, look)
	}
	return result, true
}

// Feels returns the feels defined by the theme, sorted by name.
func (t *Theme) Feels() []Feel {
	feels := make([]Feel, 0, len(t.feels))
	for f := range t.feels {
		feels = append(feels, f)
	}
	sort.Slice(feels, func(i, j int) bool { return feels[i] < feels[j] })
	return feels
}

// Looks returns the looks defined under feel, sorted by name.
func (t *Theme) Looks(feel Feel) []Look {
	looks := make([]Look, 0, len(t.feels[feel]))
	for l := range t.feels[feel] {
		looks = append(looks, l)
	}
	sort.Slice(looks, func(i, j int) bool { return looks[i] < looks[j] })
	return looks
}

// Clone returns a deep copy of the theme tables so the copy can be mutated
// without affecting t.
func (t *Theme) Clone() *Theme {
	c := &Theme{
		Name:       t.Name,
		Brightness: t.Brightness,
		feels:      make(map[Feel]map[Look]any, len(t.feels)),
		registry:   t.registry,
	}
	for feel, table := range t.feels {
		c.feels[feel] = maps.Clone(table)
	}
	return c
}

// DefaultLight returns the built-in light theme.
func DefaultLight() *Theme {
	t := NewTheme("light", BrightnessLight)
	t.Set(Default, BackgroundColor, graphics.RGB(0xFF, 0xFB, 0xFE)).
		Set(Default, SurfaceColor, graphics.RGB(0xFF, 0xFB, 0xFE)).
		Set(Default, AccentColor, graphics.RGB(0x67, 0x50, 0xA4)).
		Set(Default, OnAccentColor, graphics.ColorWhite).
		Set(Default, TextColor, graphics.RGB(0x1C, 0x1B, 0x1F)).
		Set(Default, BorderColor, graphics.RGB(0x79, 0x74, 0x7E)).
		Set(Default, Opacity, 1.0).
		Set(Default, CornerRadius, 8.0).
		Set(Default, Spacing, graphics.Px(8))
	t.Set(Ambient, BackgroundColor, graphics.RGB(0xF7, 0xF2, 0xFA))
	t.Set(Primary, BackgroundColor, graphics.RGB(0x67, 0x50, 0xA4)).
		Set(Primary, TextColor, graphics.ColorWhite)
	t.Set(Selected, BackgroundColor, graphics.RGB(0xE8, 0xDE, 0xF8)).
		Set(Selected, BorderColor, graphics.RGB(0x67, 0x50, 0xA4))
	t.Set(Hovering, BackgroundColor, graphics.RGB(0xEC, 0xE6, 0xF0))
	t.Set(Disabled, Opacity, 0.38).
		Set(Disabled, TextColor, graphics.RGB(0x1C, 0x1B, 0x1F).WithAlpha(0.38))
	return t
}

// DefaultDark returns the built-in dark theme.
func DefaultDark() *Theme {
	t := NewTheme("dark", BrightnessDark)
	t.Set(Default, BackgroundColor, graphics.RGB(0x1C, 0x1B, 0x1F)).
		Set(Default, SurfaceColor, graphics.RGB(0x1C, 0x1B, 0x1F)).
		Set(Default, AccentColor, graphics.RGB(0xD0, 0xBC, 0xFF)).
		Set(Default, OnAccentColor, graphics.RGB(0x38, 0x1E, 0x72)).
		Set(Default, TextColor, graphics.RGB(0xE6, 0xE1, 0xE5)).
		Set(Default, BorderColor, graphics.RGB(0x93, 0x8F, 0x99)).
		Set(Default, Opacity, 1.0).
		Set(Default, CornerRadius, 8.0).
		Set(Default, Spacing, graphics.Px(8))
	t.Set(Ambient, BackgroundColor, graphics.RGB(0x21, 0x1F, 0x26))
	t.Set(Primary, BackgroundColor, graphics.RGB(0xD0, 0xBC, 0xFF)).
		Set(Primary, TextColor, graphics.RGB(0x38, 0x1E, 0x72))
	t.Set(Selected, BackgroundColor, graphics.RGB(0x4A, 0x44, 0x58)).
		Set(Selected, BorderColor, graphics.RGB(0xD0, 0xBC, 0xFF))
	t.Set(Hovering, BackgroundColor, graphics.RGB(0x2B, 0x29, 0x30))
	t.Set(Disabled, Opacity, 0.38).
		Set(Disabled, TextColor, graphics.RGB(0xE6, 0xE1, 0xE5).WithAlpha(0.38))
	return t
}
