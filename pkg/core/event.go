package core

import (
	"slices"

	"github.com/go-drift/fasten/pkg/errors"
	"github.com/go-drift/fasten/pkg/fastener"
	"github.com/go-drift/fasten/pkg/theme"
)

// EventKind identifies the variant of an [Event].
type EventKind int

const (
	EventWillMount EventKind = iota
	EventDidMount
	EventWillUnmount
	EventDidUnmount
	EventWillInsertChild
	EventDidInsertChild
	EventWillRemoveChild
	EventDidRemoveChild
	EventWillLayout
	EventDidLayout
	EventWillRender
	EventDidRender
	EventWillSetValue
	EventDidSetValue
	EventWillApplyTheme
	EventDidApplyTheme
	// EventCustom carries domain events raised with [Node.Emit].
	EventCustom
)

var eventKindNames = [...]string{
	EventWillMount:       "willMount",
	EventDidMount:        "didMount",
	EventWillUnmount:     "willUnmount",
	EventDidUnmount:      "didUnmount",
	EventWillInsertChild: "willInsertChild",
	EventDidInsertChild:  "didInsertChild",
	EventWillRemoveChild: "willRemoveChild",
	EventDidRemoveChild:  "didRemoveChild",
	EventWillLayout:      "willLayout",
	EventDidLayout:       "didLayout",
	EventWillRender:      "willRender",
	EventDidRender:       "didRender",
	EventWillSetValue:    "willSetValue",
	EventDidSetValue:     "didSetValue",
	EventWillApplyTheme:  "willApplyTheme",
	EventDidApplyTheme:   "didApplyTheme",
	EventCustom:          "custom",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return "unknown"
}

// Event is a lifecycle or domain notification. Only the fields relevant to
// Kind are set.
type Event struct {
	Kind EventKind
	// Target is the node the event concerns.
	Target *Node
	// Child is the inserted or removed child.
	Child *Node
	// Fastener, NewValue and OldValue describe value events.
	Fastener fastener.Fastener
	NewValue any
	OldValue any
	// Theme and Mood describe theme events.
	Theme *theme.Theme
	Mood  theme.MoodVector
	// Name and Payload describe custom events.
	Name    string
	Payload any

	defaultPrevented bool
}

// PreventDefault vetoes the default behavior of a will-event. Only
// EventWillRemoveChild and EventWillApplyTheme have default behavior.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether an observer called PreventDefault.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// Observer receives events from the nodes it is registered on.
type Observer interface {
	Observe(e *Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(e *Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e *Event) { f(e) }

type observerEntry struct {
	observer Observer
}

// Observe registers o and returns a function that unregisters it.
func (n *Node) Observe(o Observer) (unsubscribe func()) {
	entry := &observerEntry{observer: o}
	n.observers = append(n.observers, entry)
	return func() {
		n.observers = slices.DeleteFunc(n.observers, func(e *observerEntry) bool { return e == entry })
	}
}

// Emit dispatches a custom event and returns it so the caller can inspect
// DefaultPrevented.
func (n *Node) Emit(name string, payload any) *Event {
	e := &Event{Kind: EventCustom, Name: name, Payload: payload}
	n.dispatch(e)
	return e
}

// dispatch delivers e to every observer in registration order. A panicking
// observer is reported and does not stop delivery to the rest.
func (n *Node) dispatch(e *Event) {
	if len(n.observers) == 0 {
		return
	}
	if e.Target == nil {
		e.Target = n
	}
	for _, entry := range slices.Clone(n.observers) {
		errors.Guard("observe:"+e.Kind.String(), n.name, func() error {
			entry.observer.Observe(e)
			return nil
		})
	}
}
