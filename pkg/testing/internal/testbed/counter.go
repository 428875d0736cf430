package testbed

import (
	"time"

	"github.com/go-drift/fasten/pkg/core"
	"github.com/go-drift/fasten/pkg/fastener"
	"github.com/go-drift/fasten/pkg/update"
)

// Counter derives Total from Count in its compute hook.
type Counter struct {
	*core.Node
	Count *fastener.Property[int]
	Total *fastener.Property[int]

	Computes int
}

// NewCounter creates a counter starting at initial.
func NewCounter(name string, initial int) *Counter {
	c := &Counter{}
	c.Node = core.NewNode(name, c)
	c.Count = fastener.NewProperty(c, "count", initial, fastener.WithUpdateFlags(update.NeedsCompute))
	c.Total = fastener.NewProperty(c, "total", 0)
	return c
}

// OnCompute implements core.HasCompute.
func (c *Counter) OnCompute(now time.Time) error {
	c.Computes++
	c.Total.SetState(c.Total.State() + c.Count.Value())
	return nil
}
