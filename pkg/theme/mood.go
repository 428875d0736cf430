package theme

// Look is a symbolic styling key such as "accent color". Themes map looks
// to literal values.
type Look string

// Standard looks.
const (
	BackgroundColor Look = "backgroundColor"
	SurfaceColor    Look = "surfaceColor"
	AccentColor     Look = "accentColor"
	OnAccentColor   Look = "onAccentColor"
	TextColor       Look = "textColor"
	BorderColor     Look = "borderColor"
	Opacity         Look = "opacity"
	CornerRadius    Look = "cornerRadius"
	Spacing         Look = "spacing"
)

// Feel is one component of a mood, such as "selected" or "disabled".
type Feel string

// Standard feels.
const (
	Default   Feel = "default"
	Ambient   Feel = "ambient"
	Primary   Feel = "primary"
	Secondary Feel = "secondary"
	Selected  Feel = "selected"
	Disabled  Feel = "disabled"
	Hovering  Feel = "hovering"
)

// MoodComponent is a weighted feel.
type MoodComponent struct {
	Feel   Feel
	Weight float64
}

// MoodVector is an ordered set of weighted feels. The first feel that
// defines a look supplies its base value; later feels blend in by weight.
type MoodVector []MoodComponent

// Mood returns a mood with each feel at full weight, in the given order.
func Mood(feels ...Feel) MoodVector {
	m := make(MoodVector, 0, len(feels))
	for _, f := range feels {
		m = m.With(f, 1)
	}
	return m
}

// With returns a copy of m with feel set to weight. Existing feels keep
// their position; new feels are appended. A zero weight removes the feel.
func (m MoodVector) With(feel Feel, weight float64) MoodVector {
	out := make(MoodVector, 0, len(m)+1)
	found := false
	for _, c := range m {
		if c.Feel == feel {
			found = true
			if weight != 0 {
				out = append(out, MoodComponent{Feel: feel, Weight: weight})
			}
			continue
		}
		out = append(out, c)
	}
	if !found && weight != 0 {
		out = append(out, MoodComponent{Feel: feel, Weight: weight})
	}
	return out
}

// Weight returns the weight of feel, or 0 if absent.
func (m MoodVector) Weight(feel Feel) float64 {
	for _, c := range m {
		if c.Feel == feel {
			return c.Weight
		}
	}
	return 0
}

// Equal reports whether two moods have the same components in the same order.
func (m MoodVector) Equal(other MoodVector) bool {
	if len(m) != len(other) {
		return false
	}
	for i := range m {
		if m[i] != other[i] {
			return false
		}
	}
	return true
}

// DefaultMood is the mood of an owner that sets none.
var DefaultMood = Mood(Default)
