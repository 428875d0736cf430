package core

import (
	"fmt"
	"slices"

	"github.com/go-drift/fasten/pkg/animation"
	"github.com/go-drift/fasten/pkg/fastener"
	"github.com/go-drift/fasten/pkg/theme"
	"github.com/go-drift/fasten/pkg/update"
)

// Names of the inherited theme properties every node declares.
const (
	ThemeProperty       = "theme"
	MoodProperty        = "mood"
	ThemeTimingProperty = "themeTiming"
)

// Node is an owner in the update tree.
type Node struct {
	self any
	name string

	parent   *Node
	children []*Node
	depth    int

	fasteners []fastener.Fastener
	byName    map[string]fastener.Fastener

	flags           update.Flags
	descendantFlags update.Flags

	host    Host
	mounted bool

	observers []*observerEntry

	theme       *fastener.Property[*theme.Theme]
	mood        *fastener.Property[theme.MoodVector]
	themeTiming *fastener.Property[*animation.Timing]
}

// NewNode creates a detached node. self is the value that implements the
// capability interfaces, usually the struct embedding the node; nil means
// the node itself.
func NewNode(name string, self any) *Node {
	n := &Node{name: name, self: self, byName: make(map[string]fastener.Fastener)}
	if self == nil {
		n.self = n
	}
	themeOpts := []fastener.Option{
		fastener.WithInherits(true),
		fastener.WithUpdateFlags(update.NeedsTheme),
		fastener.WithDecoherenceFlags(update.NeedsTheme),
	}
	n.theme = fastener.NewProperty[*theme.Theme](n, ThemeProperty, nil,
		append(themeOpts, fastener.WithEqual(func(a, b *theme.Theme) bool { return a == b }))...)
	n.mood = fastener.NewProperty[theme.MoodVector](n, MoodProperty, nil,
		append(themeOpts, fastener.WithEqual(theme.MoodVector.Equal))...)
	n.themeTiming = fastener.NewProperty[*animation.Timing](n, ThemeTimingProperty, nil,
		append(themeOpts, fastener.WithEqual(func(a, b *animation.Timing) bool { return a == b }))...)
	return n
}

// Self returns the value passed to NewNode.
func (n *Node) Self() any { return n.self }

// Name returns the node's name.
func (n *Node) Name() string { return n.name }

// OwnerName implements fastener.Owner.
func (n *Node) OwnerName() string { return n.name }

// ParentOwner implements fastener.Owner.
func (n *Node) ParentOwner() fastener.Owner {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// Parent returns the parent node, or nil.
func (n *Node) Parent() *Node { return n.parent }

// Depth returns the distance from the root.
func (n *Node) Depth() int { return n.depth }

// Root returns the topmost ancestor.
func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Mounted reports whether the node is part of a mounted tree.
func (n *Node) Mounted() bool { return n.mounted }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// VisitChildren calls visit for each child in order until it returns false.
// Children added or removed during the visit are not seen.
func (n *Node) VisitChildren(visit func(*Node) bool) {
	for _, c := range slices.Clone(n.children) {
		if !visit(c) {
			return
		}
	}
}

// Declare registers f. It panics if a fastener with the same name exists.
// Declaring on a mounted node mounts f immediately.
func (n *Node) Declare(f fastener.Fastener) {
	if _, dup := n.byName[f.Name()]; dup {
		panic(fmt.Sprintf("core: duplicate fastener %q on %s", f.Name(), n.name))
	}
	n.byName[f.Name()] = f
	n.fasteners = append(n.fasteners, f)
	if n.mounted {
		f.Mount()
	}
}

// Fastener returns the fastener declared under name, or nil.
func (n *Node) Fastener(name string) fastener.Fastener {
	return n.byName[name]
}

// Fasteners returns the declared fasteners in declaration order.
func (n *Node) Fasteners() []fastener.Fastener { return slices.Clone(n.fasteners) }

// AppendChild adds child as the last child.
func (n *Node) AppendChild(child *Node) {
	n.InsertChild(len(n.children), child)
}

// InsertChild inserts child at index i, detaching it from its previous
// parent first. The child is mounted if n is mounted.
func (n *Node) InsertChild(i int, child *Node) {
	if child == n || child.isAncestorOf(n) {
		panic(fmt.Sprintf("core: cannot insert %s into its own subtree", child.name))
	}
	if child.parent != nil {
		if !child.parent.RemoveChild(child) {
			return
		}
	}
	i = min(max(i, 0), len(n.children))
	n.dispatch(&Event{Kind: EventWillInsertChild, Child: child})
	n.children = slices.Insert(n.children, i, child)
	child.parent = n
	child.setDepth(n.depth + 1)
	if n.mounted {
		child.mount(n.host)
	}
	if pending := child.flags | child.descendantFlags; pending != update.None {
		child.propagate(pending)
		n.scheduleFrame()
	}
	n.dispatch(&Event{Kind: EventDidInsertChild, Child: child})
}

// RemoveChild detaches child, unmounting it if needed. It returns false if
// child is not a child of n or an observer vetoed the removal.
func (n *Node) RemoveChild(child *Node) bool {
	idx := slices.Index(n.children, child)
	if idx < 0 {
		return false
	}
	e := &Event{Kind: EventWillRemoveChild, Child: child}
	n.dispatch(e)
	if e.DefaultPrevented() {
		return false
	}
	if child.mounted {
		child.unmount()
	}
	n.children = slices.Delete(n.children, idx, idx+1)
	child.parent = nil
	child.setDepth(0)
	n.dispatch(&Event{Kind: EventDidRemoveChild, Child: child})
	return true
}

// Remove detaches n from its parent.
func (n *Node) Remove() bool {
	if n.parent == nil {
		return false
	}
	return n.parent.RemoveChild(n)
}

func (n *Node) isAncestorOf(other *Node) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

func (n *Node) setDepth(depth int) {
	n.depth = depth
	for _, c := range n.children {
		c.setDepth(depth + 1)
	}
}

// Mount attaches n as the root of a tree driven by host.
func (n *Node) Mount(host Host) {
	if n.mounted {
		return
	}
	n.mount(host)
	if (n.flags | n.descendantFlags) != update.None {
		n.scheduleFrame()
	}
}

func (n *Node) mount(host Host) {
	n.dispatch(&Event{Kind: EventWillMount})
	n.host = host
	n.mounted = true
	for _, f := range n.fasteners {
		f.Mount()
	}
	if m, ok := n.self.(HasMount); ok {
		m.OnMount()
	}
	for _, c := range n.children {
		c.mount(host)
	}
	n.dispatch(&Event{Kind: EventDidMount})
}

// Unmount detaches n from its host. Inlet bindings in the subtree are
// severed and pending flags are cleared.
func (n *Node) Unmount() {
	if n.mounted {
		n.unmount()
	}
}

func (n *Node) unmount() {
	n.dispatch(&Event{Kind: EventWillUnmount})
	for _, c := range n.children {
		c.unmount()
	}
	if m, ok := n.self.(HasMount); ok {
		m.OnUnmount()
	}
	for _, f := range n.fasteners {
		f.Unmount()
	}
	n.flags = update.None
	n.descendantFlags = update.None
	n.mounted = false
	n.host = nil
	n.dispatch(&Event{Kind: EventDidUnmount})
}

// Flags returns the node's own pending flags.
func (n *Node) Flags() update.Flags { return n.flags }

// DescendantFlags returns the union of the pending flags in the subtree
// below n. It may be a superset after removals until the next frame.
func (n *Node) DescendantFlags() update.Flags { return n.descendantFlags }

// RequireUpdate records flags on n and its ancestors and asks the host for a
// frame.
func (n *Node) RequireUpdate(flags update.Flags) {
	if flags == update.None {
		return
	}
	n.flags |= flags
	n.propagate(flags)
	n.scheduleFrame()
}

// propagate records flags, which are pending at or below n, on n's
// ancestors. Walks stop as soon as an ancestor already has every bit.
func (n *Node) propagate(flags update.Flags) {
	bubble := flags & update.BubbleMask
	pending := flags
	for p := n.parent; p != nil && (bubble|pending) != update.None; p = p.parent {
		bubble &^= p.flags
		p.flags |= bubble
		pending &^= p.descendantFlags
		p.descendantFlags |= pending
	}
}

// RefreshDescendantFlags recomputes the descendant flags from the children.
// The scheduler calls it after visiting a subtree.
func (n *Node) RefreshDescendantFlags() {
	var f update.Flags
	for _, c := range n.children {
		f |= c.flags | c.descendantFlags
	}
	n.descendantFlags = f
}

// ClearFlags drops the given own flags and returns the ones that were set.
func (n *Node) ClearFlags(mask update.Flags) update.Flags {
	had := n.flags & mask
	n.flags &^= mask
	return had
}

func (n *Node) scheduleFrame() {
	if n.mounted && n.host != nil {
		n.host.ScheduleFrame()
	}
}

// WillSetValue implements fastener.ValueObserver.
func (n *Node) WillSetValue(f fastener.Fastener, newValue, oldValue any) {
	n.dispatch(&Event{Kind: EventWillSetValue, Fastener: f, NewValue: newValue, OldValue: oldValue})
}

// DidSetValue implements fastener.ValueObserver.
func (n *Node) DidSetValue(f fastener.Fastener, newValue, oldValue any) {
	n.dispatch(&Event{Kind: EventDidSetValue, Fastener: f, NewValue: newValue, OldValue: oldValue})
}

func (n *Node) String() string {
	return fmt.Sprintf("%s(flags=%s, descendants=%s)", n.name, n.flags, n.descendantFlags)
}
