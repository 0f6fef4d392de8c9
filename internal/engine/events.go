package engine

import "github.com/meridian-maps/worldview/internal/viewport"

// Event is one normalized input event. Events are applied in arrival
// order; view changes (pan/zoom/resize) are folded in before any click is
// resolved, so clicks always see the post-pan/zoom viewport.
type Event interface {
	isEvent()
}

// PanEvent is a drag delta in screen pixels.
type PanEvent struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// ZoomEvent zooms by a number of wheel steps anchored at a screen point.
type ZoomEvent struct {
	At    viewport.ScreenPoint `json:"at"`
	Steps float64              `json:"steps"`
}

// ClickEvent is a selection click at a screen point.
type ClickEvent struct {
	At viewport.ScreenPoint `json:"at"`
}

// ResizeEvent reports a new screen size.
type ResizeEvent struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (PanEvent) isEvent()    {}
func (ZoomEvent) isEvent()   {}
func (ClickEvent) isEvent()  {}
func (ResizeEvent) isEvent() {}
