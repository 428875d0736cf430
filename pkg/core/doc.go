// Package core provides owners: the tree nodes that declare fasteners and
// receive per-frame lifecycle callbacks.
//
// A [Node] is a named owner with a parent back-reference, ordered children
// and an ordered set of fastener declarations. Concrete views embed *Node and
// implement only the capability interfaces they need:
//
//	type card struct {
//	    *core.Node
//	    opacity *fastener.Animator[float64]
//	}
//
//	func newCard() *card {
//	    c := &card{}
//	    c.Node = core.NewNode("card", c)
//	    c.opacity = fastener.NewAnimator(c.Node, "opacity", 0.0)
//	    return c
//	}
//
//	func (c *card) OnRender() error {
//	    draw(c.opacity.Value())
//	    return nil
//	}
//
// # Update Flags
//
// Fasteners call [Node.RequireUpdate] when they need work. The flags are
// recorded on the node and as descendant flags on every ancestor, so the
// scheduler can skip clean subtrees entirely. Flags in [update.BubbleMask]
// additionally become own flags of ancestors.
//
// # Themes
//
// Every node declares three inherited properties: theme, mood and
// themeTiming. Setting them on a node overrides them for its subtree. Theme
// animators re-resolve their looks when any of the three change.
//
// # Observers
//
// Lifecycle and value events are delivered synchronously to [Observer]s in
// registration order. Will-events with default behavior (child removal and
// theme application) can be vetoed with [Event.PreventDefault].
package core
