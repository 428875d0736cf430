// Package testbed provides owners used by the testing package's own tests.
package testbed

import (
	"time"

	"github.com/go-drift/fasten/pkg/animation"
	"github.com/go-drift/fasten/pkg/core"
	"github.com/go-drift/fasten/pkg/fastener"
	"github.com/go-drift/fasten/pkg/graphics"
	"github.com/go-drift/fasten/pkg/theme"
	"github.com/go-drift/fasten/pkg/update"
)

// Fader owns an opacity animator and a themed accent color, and records the
// opacity each time it renders.
type Fader struct {
	*core.Node
	Opacity *fastener.Animator[float64]
	Color   *fastener.ThemeAnimator[graphics.Color]

	Rendered []float64
}

// NewFader creates a fader whose opacity fades over d.
func NewFader(name string, d time.Duration) *Fader {
	f := &Fader{}
	f.Node = core.NewNode(name, f)
	f.Opacity = fastener.NewAnimator(f, "opacity", 0.0,
		fastener.WithTiming(animation.TimingOf(d, animation.Linear)))
	f.Color = fastener.NewThemeAnimator[graphics.Color](f, "color", theme.AccentColor,
		fastener.WithUpdateFlags(update.NeedsRender))
	return f
}

// OnRender implements core.HasRender.
func (f *Fader) OnRender() error {
	f.Rendered = append(f.Rendered, f.Opacity.Value())
	return nil
}
