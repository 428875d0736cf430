package core

import (
	"time"

	"github.com/go-drift/fasten/pkg/update"
)

// RunPhase performs n's own work for phase and clears the flags the phase
// consumes. Flags are cleared before hooks run so that work re-requested by
// a hook is kept for the next frame.
//
// The compute phase resolves the inherited theme properties and re-applies
// the theme to themed fasteners before calling OnCompute. The animate phase
// recoheres every fastener in declaration order before calling OnAnimate.
func RunPhase(n *Node, phase update.Phase, now time.Time) error {
	switch phase {
	case update.PhaseResize:
		n.ClearFlags(update.NeedsResize)
		if h, ok := n.self.(HasResize); ok {
			return h.OnResize()
		}

	case update.PhaseCompute:
		had := n.flags & phase.Mask()
		n.recohereThemeContext(now)
		had |= n.ClearFlags(phase.Mask())
		if had.Has(update.NeedsTheme) {
			n.applyTheme()
		}
		if h, ok := n.self.(HasCompute); ok && had.Has(update.NeedsCompute) {
			return h.OnCompute(now)
		}

	case update.PhaseLayout:
		n.ClearFlags(update.NeedsLayout)
		h, ok := n.self.(HasLayout)
		if !ok {
			return nil
		}
		n.dispatch(&Event{Kind: EventWillLayout})
		if err := h.OnLayout(); err != nil {
			return err
		}
		n.dispatch(&Event{Kind: EventDidLayout})

	case update.PhaseAnimate:
		n.ClearFlags(update.NeedsAnimate)
		for _, f := range n.fasteners {
			f.Recohere(now)
		}
		if h, ok := n.self.(HasAnimate); ok {
			return h.OnAnimate(now)
		}

	case update.PhaseRender:
		n.ClearFlags(update.NeedsRender)
		h, ok := n.self.(HasRender)
		if !ok {
			return nil
		}
		n.dispatch(&Event{Kind: EventWillRender})
		if err := h.OnRender(); err != nil {
			return err
		}
		n.dispatch(&Event{Kind: EventDidRender})
	}
	return nil
}
