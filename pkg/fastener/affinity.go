package fastener

import "strings"

// Kind identifies the variety of a fastener.
type Kind int

const (
	KindProperty Kind = iota
	KindAnimator
	KindThemeAnimator
	// KindProvider, KindRef and KindSet are reserved for consumer layers
	// that build service providers, element references and fastener sets on
	// top of the base contract.
	KindProvider
	KindRef
	KindSet
)

func (k Kind) String() string {
	switch k {
	case KindProperty:
		return "property"
	case KindAnimator:
		return "animator"
	case KindThemeAnimator:
		return "theme-animator"
	case KindProvider:
		return "provider"
	case KindRef:
		return "ref"
	case KindSet:
		return "set"
	default:
		return "unknown"
	}
}

// Affinity is the priority tier of a write. A write is dropped when the
// fastener already holds a value set at a strictly higher affinity.
type Affinity int

const (
	// Transient values are placeholders, such as constructor defaults.
	Transient Affinity = iota
	// Inherited values come from an inlet.
	Inherited
	// Intrinsic values are set by the owner itself.
	Intrinsic
	// Extrinsic values are set by outside code. This is the default for
	// explicit writes.
	Extrinsic
	// Reflexive values are set in response to user interaction and override
	// everything else.
	Reflexive
)

func (a Affinity) String() string {
	switch a {
	case Transient:
		return "transient"
	case Inherited:
		return "inherited"
	case Intrinsic:
		return "intrinsic"
	case Extrinsic:
		return "extrinsic"
	case Reflexive:
		return "reflexive"
	default:
		return "unknown"
	}
}

// resolveAffinity returns the first override, or Extrinsic.
func resolveAffinity(override []Affinity) Affinity {
	if len(override) > 0 {
		return override[0]
	}
	return Extrinsic
}

// Status is the bitset of fastener state flags.
type Status uint32

const (
	// Dirty means the value must be recomputed on the next recohere.
	Dirty Status = 1 << iota
	// Deriving means the value currently tracks the inlet.
	Deriving
	// Animating means a transition is in flight.
	Animating
	// Inheriting means the fastener wants to derive its value from an inlet.
	Inheriting
	// Absent means the inlet value could not be used and the value is the
	// zero value.
	Absent
)

var statusNames = []struct {
	status Status
	name   string
}{
	{Dirty, "dirty"},
	{Deriving, "deriving"},
	{Animating, "animating"},
	{Inheriting, "inheriting"},
	{Absent, "absent"},
}

func (s Status) String() string {
	if s == 0 {
		return "quiescent"
	}
	var parts []string
	for _, entry := range statusNames {
		if s&entry.status != 0 {
			parts = append(parts, entry.name)
		}
	}
	return strings.Join(parts, "|")
}
