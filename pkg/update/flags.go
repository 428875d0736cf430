// Package update defines the update-requirement bitset shared by fasteners,
// owners and the frame scheduler.
//
// Each bit names a phase of the per-frame pass. The scheduler runs the phases
// in a fixed global order:
//
//	resize → compute (theme) → layout → animate → render
//
// An owner's flags are always a superset of the unresolved work demanded by its
// fasteners. Bits in [BubbleMask] additionally propagate to ancestors as their
// own flags, because a child that changes size invalidates its parent.
package update

import "strings"

// Flags is a set of pending update phases.
type Flags uint32

const (
	// NeedsResize means the owner's viewport or size-dependent state changed.
	NeedsResize Flags = 1 << iota
	// NeedsCompute means derived, non-visual state must be recomputed.
	NeedsCompute
	// NeedsTheme means theme animators must re-resolve their looks.
	NeedsTheme
	// NeedsLayout means geometry must be recomputed.
	NeedsLayout
	// NeedsAnimate means at least one owned fastener is dirty.
	NeedsAnimate
	// NeedsRender means the owner must redraw.
	NeedsRender

	// None is the empty set.
	None Flags = 0

	// All contains every phase bit.
	All = NeedsResize | NeedsCompute | NeedsTheme | NeedsLayout | NeedsAnimate | NeedsRender

	// BubbleMask holds the flags that become own flags of every ancestor.
	BubbleMask = NeedsResize
)

// Phase identifies one step of the frame pass.
type Phase int

const (
	PhaseResize Phase = iota
	PhaseCompute
	PhaseLayout
	PhaseAnimate
	PhaseRender
)

// Phases returns the fixed phase order of a frame.
func Phases() []Phase {
	return []Phase{PhaseResize, PhaseCompute, PhaseLayout, PhaseAnimate, PhaseRender}
}

// Mask returns the flags a phase consumes. The compute phase also applies
// pending theme changes.
func (p Phase) Mask() Flags {
	switch p {
	case PhaseResize:
		return NeedsResize
	case PhaseCompute:
		return NeedsCompute | NeedsTheme
	case PhaseLayout:
		return NeedsLayout
	case PhaseAnimate:
		return NeedsAnimate
	case PhaseRender:
		return NeedsRender
	default:
		return None
	}
}

func (p Phase) String() string {
	switch p {
	case PhaseResize:
		return "resize"
	case PhaseCompute:
		return "compute"
	case PhaseLayout:
		return "layout"
	case PhaseAnimate:
		return "animate"
	case PhaseRender:
		return "render"
	default:
		return "unknown"
	}
}

// Has reports whether every bit of mask is set.
func (f Flags) Has(mask Flags) bool {
	return f&mask == mask
}

// Any reports whether at least one bit of mask is set.
func (f Flags) Any(mask Flags) bool {
	return f&mask != 0
}

var flagNames = []struct {
	flag Flags
	name string
}{
	{NeedsResize, "resize"},
	{NeedsCompute, "compute"},
	{NeedsTheme, "theme"},
	{NeedsLayout, "layout"},
	{NeedsAnimate, "animate"},
	{NeedsRender, "render"},
}

func (f Flags) String() string {
	if f == None {
		return "none"
	}
	var parts []string
	for _, entry := range flagNames {
		if f&entry.flag != 0 {
			parts = append(parts, entry.name)
		}
	}
	return strings.Join(parts, "|")
}
