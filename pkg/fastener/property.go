package fastener

import (
	"reflect"
	"time"

	"github.com/go-drift/fasten/pkg/errors"
)

// Property is a typed fastener whose value follows its state, or its inlet
// while inheriting.
//
// State changes are applied lazily: SetState records the new state and
// schedules the owner, and Value reflects it after the next Recohere.
type Property[T any] struct {
	base

	value   T
	state   T
	defined bool
	equal   func(a, b T) bool

	willSet []func(newValue, oldValue T)
	didSet  []func(newValue, oldValue T)
}

// NewProperty creates a property with the given initial value and declares
// it on owner. The initial value has Transient affinity unless WithAffinity
// says otherwise.
func NewProperty[T any](owner Owner, name string, initial T, opts ...Option) *Property[T] {
	p := &Property[T]{}
	p.initProperty(p, owner, name, KindProperty, initial, true, buildOptions(opts))
	if owner != nil {
		owner.Declare(p)
	}
	return p
}

func (p *Property[T]) initProperty(self Fastener, owner Owner, name string, kind Kind, initial T, defined bool, o options) {
	p.base.init(self, owner, name, kind, o)
	p.value = initial
	p.state = initial
	p.defined = defined
	if eq, ok := o.equal.(func(a, b T) bool); ok {
		p.equal = eq
	} else {
		p.equal = func(a, b T) bool { return reflect.DeepEqual(a, b) }
	}
}

// Value returns the resolved value.
func (p *Property[T]) Value() T { return p.value }

// State returns the most recently accepted state.
func (p *Property[T]) State() T { return p.state }

// Defined reports whether the value is defined. It is false when an inlet of
// the wrong type left the value absent, or before a theme animator first
// resolves its look.
func (p *Property[T]) Defined() bool { return p.defined }

// AnyValue returns the value as an untyped interface.
func (p *Property[T]) AnyValue() (any, bool) { return p.value, p.defined }

// SetState writes v at the given affinity (Extrinsic by default). The write
// is dropped if the property holds a value of strictly higher affinity. A
// write above Inherited stops inheritance.
func (p *Property[T]) SetState(v T, affinity ...Affinity) {
	a := resolveAffinity(affinity)
	if p.affinity > a {
		return
	}
	p.affinity = a
	p.stopInheriting(a)
	p.setState(v)
}

// SetValue is an alias for SetState at the default affinity.
func (p *Property[T]) SetValue(v T) { p.SetState(v) }

func (p *Property[T]) setState(v T) {
	if p.equal(p.state, v) && p.defined && p.equal(p.value, v) {
		p.state = v
		return
	}
	p.state = v
	p.Decohere()
}

// OnWillSetValue registers a callback invoked before the value changes.
func (p *Property[T]) OnWillSetValue(cb func(newValue, oldValue T)) {
	p.willSet = append(p.willSet, cb)
}

// OnDidSetValue registers a callback invoked after the value changes.
func (p *Property[T]) OnDidSetValue(cb func(newValue, oldValue T)) {
	p.didSet = append(p.didSet, cb)
}

// Recohere resolves the value from the inlet or the state.
func (p *Property[T]) Recohere(now time.Time) bool {
	if p.status&Dirty == 0 {
		return false
	}
	p.status &^= Dirty
	if p.deriving() {
		v, ok := p.inletValue(now)
		if !ok {
			return p.setAbsent()
		}
		p.state = v
		return p.applyValue(v)
	}
	return p.applyValue(p.state)
}

// inletValue reads the inlet and converts it to T. A defined inlet value of
// another type is reported once per binding.
func (p *Property[T]) inletValue(now time.Time) (T, bool) {
	var zero T
	raw, defined := p.pullInlet(now)
	if !defined {
		return zero, false
	}
	if raw == nil {
		return zero, true
	}
	v, ok := raw.(T)
	if !ok {
		p.reportMismatch(raw, reflect.TypeFor[T]().String())
		return zero, false
	}
	return v, true
}

func (p *Property[T]) setAbsent() bool {
	var zero T
	wasDefined := p.defined
	p.status |= Absent
	if !wasDefined && p.equal(p.value, zero) {
		return false
	}
	old := p.value
	p.notifyWill(zero, old)
	p.value = zero
	p.defined = false
	p.notifyDid(zero, old)
	p.changed()
	return true
}

// applyValue sets the resolved value, running callbacks when it changes.
func (p *Property[T]) applyValue(v T) bool {
	p.status &^= Absent
	if p.defined && p.equal(p.value, v) {
		return false
	}
	old := p.value
	p.notifyWill(v, old)
	p.value = v
	p.defined = true
	p.notifyDid(v, old)
	p.changed()
	return true
}

func (p *Property[T]) changed() {
	p.requireUpdate(p.updateFlags)
	p.decohereOutlets()
}

func (p *Property[T]) notifyWill(newValue, oldValue T) {
	if vo, ok := p.owner.(ValueObserver); ok {
		vo.WillSetValue(p.self, newValue, oldValue)
	}
	for _, cb := range p.willSet {
		errors.Guard("willSetValue", p.label(), func() error {
			cb(newValue, oldValue)
			return nil
		})
	}
}

func (p *Property[T]) notifyDid(newValue, oldValue T) {
	for _, cb := range p.didSet {
		errors.Guard("didSetValue", p.label(), func() error {
			cb(newValue, oldValue)
			return nil
		})
	}
	if vo, ok := p.owner.(ValueObserver); ok {
		vo.DidSetValue(p.self, newValue, oldValue)
	}
}
