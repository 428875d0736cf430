package core

import "time"

// HasResize is implemented by owners that react to size changes.
type HasResize interface {
	OnResize() error
}

// HasCompute is implemented by owners with derived non-visual state.
type HasCompute interface {
	OnCompute(now time.Time) error
}

// HasLayout is implemented by owners that compute geometry.
type HasLayout interface {
	OnLayout() error
}

// HasAnimate is implemented by owners that run custom per-frame logic after
// their fasteners have been recohered.
type HasAnimate interface {
	OnAnimate(now time.Time) error
}

// HasRender is implemented by owners that draw.
type HasRender interface {
	OnRender() error
}

// HasMount is implemented by owners that acquire or release resources when
// they join or leave a mounted tree.
type HasMount interface {
	OnMount()
	OnUnmount()
}

// Host is the frame source a mounted tree reports to. The engine's
// scheduler implements it.
type Host interface {
	ScheduleFrame()
}
