// Package fastener implements reactive value slots owned by tree nodes.
//
// A fastener is a named, typed value declared by an owner. Writes go through
// SetState, which is gated by [Affinity] and marks the fastener dirty. The
// owner's update pass later calls Recohere, which resolves the value from one
// of three sources:
//
//   - the inlet, when the fastener inherits;
//   - the in-flight transition, when an [Animator] is animating;
//   - the explicit state otherwise.
//
// Invalidation is eager and recomputation is lazy: Decohere walks the outlets
// immediately, but no value is recomputed until the owner's update pass runs.
//
// # Inlets
//
// Each fastener has at most one inlet and any number of outlets. Inlets are
// bound explicitly with BindInlet or implicitly on Mount, where an inheriting
// fastener binds to the nearest ancestor fastener with the same name. Binding
// an inlet that would close a cycle fails with [errors.ErrCyclicInlet] and
// leaves the fastener non-inheriting.
//
// All methods must be called from the UI goroutine.
package fastener

import (
	"fmt"
	"slices"
	"time"

	"github.com/go-drift/fasten/pkg/animation"
	"github.com/go-drift/fasten/pkg/errors"
	"github.com/go-drift/fasten/pkg/theme"
	"github.com/go-drift/fasten/pkg/update"
)

// Owner is the tree node that declares fasteners.
type Owner interface {
	// OwnerName identifies the owner in error reports.
	OwnerName() string
	// ParentOwner returns the parent owner, or nil at the root.
	ParentOwner() Owner
	// Fastener returns the fastener declared under name, or nil.
	Fastener(name string) Fastener
	// Declare registers a fastener. Constructors call it.
	Declare(f Fastener)
	// RequireUpdate schedules the given phases for the owner.
	RequireUpdate(flags update.Flags)
}

// ValueObserver is implemented by owners that want to hear about every value
// change of their fasteners.
type ValueObserver interface {
	WillSetValue(f Fastener, newValue, oldValue any)
	DidSetValue(f Fastener, newValue, oldValue any)
}

// Fastener is the contract shared by every fastener kind.
type Fastener interface {
	Name() string
	Kind() Kind
	Owner() Owner

	Affinity() Affinity
	SetAffinity(a Affinity)
	Status() Status

	// UpdateFlags returns the flags required of the owner on value change.
	UpdateFlags() update.Flags

	Inlet() Fastener
	Outlets() []Fastener
	Inherits() bool
	SetInherits(inherits bool)
	BindInlet(inlet Fastener) error
	UnbindInlet()

	// Recohere resolves the value if dirty and reports whether it changed.
	Recohere(now time.Time) bool
	// Decohere marks the fastener and its deriving outlets dirty.
	Decohere()

	Mount()
	Unmount()
	Mounted() bool

	// AnyValue returns the resolved value and whether it is defined.
	AnyValue() (any, bool)

	fastenerBase() *base
}

// Themed is implemented by fasteners whose target is resolved from a theme.
// Owners call ApplyTheme during their compute phase.
type Themed interface {
	Fastener
	ApplyTheme(th *theme.Theme, mood theme.MoodVector, timing *animation.Timing) bool
}

// base holds the state shared by all fastener kinds. Typed fasteners embed
// it and set self to the outermost value so interface calls dispatch to the
// most specific implementation.
type base struct {
	self  Fastener
	owner Owner
	name  string
	kind  Kind

	inheritName      string
	affinity         Affinity
	status           Status
	updateFlags      update.Flags
	decoherenceFlags update.Flags

	inlet         Fastener
	explicitInlet bool
	outlets       []Fastener
	mounted       bool

	// mismatchReported suppresses repeated inlet type reports for one binding.
	mismatchReported bool
}

func (b *base) init(self Fastener, owner Owner, name string, kind Kind, o options) {
	b.self = self
	b.owner = owner
	b.name = name
	b.kind = kind
	b.inheritName = name
	if o.inheritName != "" {
		b.inheritName = o.inheritName
	}
	b.updateFlags = o.updateFlags
	b.decoherenceFlags = o.decoherenceFlags
	b.affinity = Transient
	if o.hasAffinity {
		b.affinity = o.affinity
	}
	if o.inherits {
		b.status |= Inheriting
		b.affinity = Inherited
	}
}

func (b *base) fastenerBase() *base { return b }

func (b *base) Name() string   { return b.name }
func (b *base) Kind() Kind     { return b.kind }
func (b *base) Owner() Owner   { return b.owner }
func (b *base) Status() Status { return b.status }
func (b *base) Mounted() bool  { return b.mounted }

func (b *base) Affinity() Affinity { return b.affinity }

// SetAffinity sets the affinity without writing a value.
func (b *base) SetAffinity(a Affinity) { b.affinity = a }

func (b *base) UpdateFlags() update.Flags { return b.updateFlags }

func (b *base) Inlet() Fastener { return b.inlet }

// Outlets returns the fasteners bound to this one as their inlet.
func (b *base) Outlets() []Fastener { return slices.Clone(b.outlets) }

func (b *base) Inherits() bool { return b.status&Inheriting != 0 }

func (b *base) deriving() bool { return b.status&Deriving != 0 }

// ownerName returns the owner's name, tolerating a nil owner.
func (b *base) ownerName() string {
	if b.owner == nil {
		return ""
	}
	return b.owner.OwnerName()
}

// label names the fastener in callback error reports.
func (b *base) label() string {
	if b.owner == nil {
		return b.name
	}
	return b.owner.OwnerName() + "." + b.name
}

func (b *base) requireUpdate(flags update.Flags) {
	if b.owner != nil && flags != update.None {
		b.owner.RequireUpdate(flags)
	}
}

func (b *base) updateDeriving() {
	if b.status&Inheriting != 0 && b.inlet != nil {
		b.status |= Deriving
	} else {
		b.status &^= Deriving | Absent
	}
}

// SetInherits starts or stops deriving the value from the inlet. Starting
// lowers the affinity to Inherited and, if the fastener is mounted without an
// inlet, binds it to the nearest ancestor fastener with the same name.
func (b *base) SetInherits(inherits bool) {
	if inherits == b.Inherits() {
		return
	}
	if inherits {
		b.status |= Inheriting
		b.affinity = Inherited
		if b.inlet == nil && b.mounted {
			b.bindImplicit()
		}
		b.updateDeriving()
		b.self.Decohere()
		return
	}
	b.status &^= Inheriting
	if b.inlet != nil && !b.explicitInlet {
		b.unlink()
	}
	b.updateDeriving()
}

// stopInheriting is called when an explicit write wins over the inlet.
func (b *base) stopInheriting(a Affinity) {
	if a > Inherited && b.Inherits() {
		b.SetInherits(false)
	}
}

// BindInlet binds inlet as the fastener's upstream and starts inheriting
// from it. A nil inlet unbinds. Binding fails with errors.ErrCyclicInlet if
// inlet derives, directly or transitively, from this fastener; the previous
// inlet is kept and the fastener stops inheriting.
func (b *base) BindInlet(inlet Fastener) error {
	if inlet == nil {
		b.UnbindInlet()
		return nil
	}
	if err := b.checkCycle(inlet); err != nil {
		b.status &^= Inheriting
		b.updateDeriving()
		return err
	}
	if b.inlet != inlet {
		b.unlink()
		b.link(inlet)
	}
	b.explicitInlet = true
	b.status |= Inheriting
	b.affinity = Inherited
	b.updateDeriving()
	b.self.Decohere()
	return nil
}

// UnbindInlet detaches the inlet. The current value is kept.
func (b *base) UnbindInlet() {
	b.unlink()
	b.updateDeriving()
}

func (b *base) checkCycle(inlet Fastener) error {
	for f := inlet; f != nil; f = f.Inlet() {
		if f == b.self {
			err := &errors.FastenError{
				Op:       "fastener.BindInlet",
				Kind:     errors.KindCyclicInlet,
				Owner:    b.ownerName(),
				Fastener: b.name,
				Err:      fmt.Errorf("%w: %s", errors.ErrCyclicInlet, describe(inlet)),
			}
			errors.Report(err)
			return err
		}
	}
	return nil
}

func describe(f Fastener) string {
	if f.Owner() == nil {
		return f.Name()
	}
	return f.Owner().OwnerName() + "." + f.Name()
}

func (b *base) link(inlet Fastener) {
	b.inlet = inlet
	b.mismatchReported = false
	ib := inlet.fastenerBase()
	ib.outlets = append(ib.outlets, b.self)
}

func (b *base) unlink() {
	if b.inlet == nil {
		return
	}
	ib := b.inlet.fastenerBase()
	ib.outlets = slices.DeleteFunc(ib.outlets, func(o Fastener) bool { return o == b.self })
	b.inlet = nil
	b.explicitInlet = false
}

// bindImplicit binds the nearest ancestor fastener named inheritName.
func (b *base) bindImplicit() {
	if b.owner == nil {
		return
	}
	for p := b.owner.ParentOwner(); p != nil; p = p.ParentOwner() {
		f := p.Fastener(b.inheritName)
		if f == nil {
			continue
		}
		if err := b.checkCycle(f); err != nil {
			b.status &^= Inheriting
			return
		}
		b.link(f)
		b.explicitInlet = false
		return
	}
}

// Decohere marks the fastener dirty, schedules the owner and propagates to
// deriving outlets. It is a no-op if the fastener is already dirty.
func (b *base) Decohere() {
	if b.status&Dirty != 0 {
		return
	}
	b.status |= Dirty
	b.requireUpdate(b.decoherenceFlags)
	b.decohereOutlets()
}

func (b *base) decohereOutlets() {
	for _, o := range b.outlets {
		if o.Status()&Deriving != 0 {
			o.Decohere()
		}
	}
}

// pullInlet recoheres the inlet when it has pending work so that this
// fastener observes its current value even if the inlet's owner has not been
// visited yet in this pass.
func (b *base) pullInlet(now time.Time) (any, bool) {
	if b.inlet.Status()&(Dirty|Animating) != 0 {
		b.inlet.Recohere(now)
	}
	return b.inlet.AnyValue()
}

func (b *base) reportMismatch(got any, want string) {
	if b.mismatchReported {
		return
	}
	b.mismatchReported = true
	errors.Report(&errors.FastenError{
		Op:       "fastener.Recohere",
		Kind:     errors.KindInletType,
		Owner:    b.ownerName(),
		Fastener: b.name,
		Err:      fmt.Errorf("%w: inlet %s has %T, want %s", errors.ErrInletType, describe(b.inlet), got, want),
	})
}

// Mount binds an inheriting fastener without an inlet to its ancestor and
// re-schedules pending work.
func (b *base) Mount() {
	if b.mounted {
		return
	}
	b.mounted = true
	if b.Inherits() && b.inlet == nil {
		b.bindImplicit()
		b.updateDeriving()
	}
	switch {
	case b.status&(Dirty|Animating) != 0:
		b.requireUpdate(b.decoherenceFlags)
	case b.deriving():
		b.self.Decohere()
	}
}

// Unmount severs the inlet and every outlet. Outlets keep their last value.
func (b *base) Unmount() {
	if !b.mounted {
		return
	}
	b.mounted = false
	b.unlink()
	for _, o := range b.outlets {
		ob := o.fastenerBase()
		ob.inlet = nil
		ob.explicitInlet = false
		ob.updateDeriving()
	}
	b.outlets = nil
	b.updateDeriving()
}
