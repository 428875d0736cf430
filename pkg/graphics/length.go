package graphics

import (
	"fmt"
	"strconv"
	"strings"
)

// Unit is the unit of a Length.
type Unit int

const (
	// UnitPx is an absolute length in logical pixels.
	UnitPx Unit = iota
	// UnitPercent is a fraction of a reference length, expressed in percent.
	UnitPercent
	// UnitEm is relative to the current font size.
	UnitEm
)

func (u Unit) String() string {
	switch u {
	case UnitPx:
		return "px"
	case UnitPercent:
		return "%"
	case UnitEm:
		return "em"
	default:
		return "?"
	}
}

// Length is a number with a unit.
type Length struct {
	Value float64
	Unit  Unit
}

// Px returns an absolute length.
func Px(v float64) Length { return Length{Value: v, Unit: UnitPx} }

// Pct returns a percentage length.
func Pct(v float64) Length { return Length{Value: v, Unit: UnitPercent} }

// Em returns a font-relative length.
func Em(v float64) Length { return Length{Value: v, Unit: UnitEm} }

// Resolve converts the length to pixels. Percentages are taken of basis,
// em lengths of fontSize.
func (l Length) Resolve(basis, fontSize float64) float64 {
	switch l.Unit {
	case UnitPercent:
		return basis * l.Value / 100
	case UnitEm:
		return fontSize * l.Value
	default:
		return l.Value
	}
}

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + l.Unit.String()
}

// ParseLength parses "12", "12px", "50%" or "1.5em".
func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(s)
	unit := UnitPx
	switch {
	case strings.HasSuffix(s, "%"):
		unit, s = UnitPercent, strings.TrimSuffix(s, "%")
	case strings.HasSuffix(s, "px"):
		s = strings.TrimSuffix(s, "px")
	case strings.HasSuffix(s, "em"):
		unit, s = UnitEm, strings.TrimSuffix(s, "em")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Length{}, fmt.Errorf("invalid length %q: %w", s, err)
	}
	return Length{Value: v, Unit: unit}, nil
}
