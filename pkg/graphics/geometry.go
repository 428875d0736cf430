package graphics

// Offset represents a 2D point or vector in pixel coordinates.
type Offset struct {
	X float64
	Y float64
}

// Size represents width and height dimensions in pixels.
type Size struct {
	Width  float64
	Height float64
}

// EdgeInsets holds per-edge spacing such as padding or margins.
type EdgeInsets struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// EdgeInsetsAll returns insets with the same value on every edge.
func EdgeInsetsAll(v float64) EdgeInsets {
	return EdgeInsets{Left: v, Top: v, Right: v, Bottom: v}
}

// ColorStop is a gradient stop: a color at a position, with an optional
// transition hint between this stop and the next one. Position and Hint are
// usually percentages.
type ColorStop struct {
	Color    Color
	Position Length
	Hint     Length
}
