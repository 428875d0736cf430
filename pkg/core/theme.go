package core

import (
	"time"

	"github.com/go-drift/fasten/pkg/animation"
	"github.com/go-drift/fasten/pkg/fastener"
	"github.com/go-drift/fasten/pkg/theme"
)

// Theme returns the effective theme: the node's own or inherited theme, or
// the registry's light theme if none is set anywhere above.
func (n *Node) Theme() *theme.Theme {
	if th := n.theme.Value(); th != nil {
		return th
	}
	th, _ := theme.DefaultRegistry().Get("light")
	return th
}

// SetTheme overrides the theme for n and its subtree. A nil theme restores
// inheritance; with no ancestor theme to inherit, n falls back to the
// registry's light theme.
func (n *Node) SetTheme(th *theme.Theme) {
	if th == nil {
		n.theme.SetInherits(true)
		if n.theme.Inlet() == nil {
			n.theme.SetState(nil, fastener.Inherited)
		}
		return
	}
	n.theme.SetState(th)
}

// Mood returns the effective mood.
func (n *Node) Mood() theme.MoodVector {
	if m := n.mood.Value(); len(m) > 0 {
		return m
	}
	return theme.DefaultMood
}

// SetMood overrides the mood for n and its subtree. A nil mood restores
// inheritance; with no ancestor mood to inherit, n falls back to DefaultMood.
func (n *Node) SetMood(m theme.MoodVector) {
	if m == nil {
		n.mood.SetInherits(true)
		if n.mood.Inlet() == nil {
			n.mood.SetState(nil, fastener.Inherited)
		}
		return
	}
	n.mood.SetState(m)
}

// ThemeTiming returns the timing theme animators use when the theme or mood
// changes. Nil means changes apply immediately.
func (n *Node) ThemeTiming() *animation.Timing { return n.themeTiming.Value() }

// SetThemeTiming overrides the theme timing for n and its subtree.
func (n *Node) SetThemeTiming(t *animation.Timing) {
	n.themeTiming.SetState(t)
}

// recohereThemeContext resolves the inherited theme properties.
func (n *Node) recohereThemeContext(now time.Time) {
	n.theme.Recohere(now)
	n.mood.Recohere(now)
	n.themeTiming.Recohere(now)
}

// applyTheme re-resolves every themed fastener against the effective theme
// and mood. Observers can veto it from EventWillApplyTheme.
func (n *Node) applyTheme() {
	th, mood := n.Theme(), n.Mood()
	e := &Event{Kind: EventWillApplyTheme, Theme: th, Mood: mood}
	n.dispatch(e)
	if e.DefaultPrevented() {
		return
	}
	timing := n.ThemeTiming()
	for _, f := range n.fasteners {
		if themed, ok := f.(fastener.Themed); ok {
			themed.ApplyTheme(th, mood, timing)
		}
	}
	n.dispatch(&Event{Kind: EventDidApplyTheme, Theme: th, Mood: mood})
}
