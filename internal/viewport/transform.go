// Package viewport maintains the pan/zoom state of the map view and the
// affine world<->screen transform derived from it.
package viewport

import (
	"math"

	"github.com/paulmach/orb"
)

// ScreenPoint is a position in pixel coordinates, origin top-left,
// y growing downward.
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// State is the full pan/zoom state. Center is in world coordinates
// (lon/lat degrees), Zoom is a scalar clamped to the configured bounds.
type State struct {
	Center orb.Point `json:"center"`
	Zoom   float64   `json:"zoom"`
	Width  int       `json:"width"`
	Height int       `json:"height"`
}

// Options bound and tune the transform. Zero values are replaced by the
// defaults below.
type Options struct {
	ZoomMin      float64
	ZoomMax      float64
	StepFactor   float64 // multiplicative zoom factor per wheel step
	MarginPx     float64 // extra culling margin around the screen edge
	ClampToWorld bool    // keep the visible box within [-180,180]x[-90,90]
}

// Default transform tuning.
const (
	DefaultZoomMin    = 0.3
	DefaultZoomMax    = 50.0
	DefaultStepFactor = 1.1
)

// Transform owns a State exclusively and mutates it only through Pan,
// ZoomAt and Resize. All transforms are affine (scale + translate, no
// rotation); the scale factor is monotonic increasing in zoom.
type Transform struct {
	opts  Options
	state State
}

// New builds a Transform, clamping the initial state into bounds.
func New(opts Options, initial State) *Transform {
	if opts.ZoomMin <= 0 {
		opts.ZoomMin = DefaultZoomMin
	}
	if opts.ZoomMax <= 0 {
		opts.ZoomMax = DefaultZoomMax
	}
	if opts.StepFactor <= 1 {
		opts.StepFactor = DefaultStepFactor
	}
	t := &Transform{opts: opts, state: initial}
	t.state.Zoom = clamp(t.state.Zoom, opts.ZoomMin, opts.ZoomMax)
	t.clampCenter()
	return t
}

// State returns a copy of the current viewport state.
func (t *Transform) State() State {
	return t.state
}

// Scale returns the current scale factor in pixels per world degree.
// At zoom 1 the full longitude range spans the screen width.
func (t *Transform) Scale() float64 {
	return t.state.Zoom * float64(t.state.Width) / 360.0
}

// WorldToScreen projects a world point into pixel coordinates.
func (t *Transform) WorldToScreen(w orb.Point) ScreenPoint {
	s := t.Scale()
	return ScreenPoint{
		X: (w.Lon()-t.state.Center.Lon())*s + float64(t.state.Width)/2,
		Y: (t.state.Center.Lat()-w.Lat())*s + float64(t.state.Height)/2,
	}
}

// ScreenToWorld is the exact inverse of WorldToScreen for the current
// state.
func (t *Transform) ScreenToWorld(p ScreenPoint) orb.Point {
	s := t.Scale()
	return orb.Point{
		t.state.Center.Lon() + (p.X-float64(t.state.Width)/2)/s,
		t.state.Center.Lat() - (p.Y-float64(t.state.Height)/2)/s,
	}
}

// Pan shifts the view by a screen-space pixel delta: dragging the map
// content right (positive dx) moves the center west.
func (t *Transform) Pan(dx, dy float64) {
	s := t.Scale()
	t.state.Center[0] -= dx / s
	t.state.Center[1] += dy / s
	t.clampCenter()
}

// ZoomAt changes zoom by StepFactor^steps, clamped to bounds, and
// re-anchors the center so the world point under the given screen point
// stays under it. Requests past the bounds clamp silently.
func (t *Transform) ZoomAt(at ScreenPoint, steps float64) {
	anchor := t.ScreenToWorld(at)
	next := clamp(t.state.Zoom*math.Pow(t.opts.StepFactor, steps), t.opts.ZoomMin, t.opts.ZoomMax)
	if next == t.state.Zoom {
		return
	}
	t.state.Zoom = next
	s := t.Scale()
	t.state.Center[0] = anchor.Lon() - (at.X-float64(t.state.Width)/2)/s
	t.state.Center[1] = anchor.Lat() + (at.Y-float64(t.state.Height)/2)/s
	t.clampCenter()
}

// Resize updates the screen size, keeping center and zoom.
func (t *Transform) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	t.state.Width = width
	t.state.Height = height
	t.clampCenter()
}

// VisibleBBox returns the world-space rectangle covering the full screen
// extent plus the configured margin; it is the culling query region.
func (t *Transform) VisibleBBox() orb.Bound {
	s := t.Scale()
	halfW := (float64(t.state.Width)/2 + t.opts.MarginPx) / s
	halfH := (float64(t.state.Height)/2 + t.opts.MarginPx) / s
	return orb.Bound{
		Min: orb.Point{t.state.Center.Lon() - halfW, t.state.Center.Lat() - halfH},
		Max: orb.Point{t.state.Center.Lon() + halfW, t.state.Center.Lat() + halfH},
	}
}

func (t *Transform) clampCenter() {
	if !t.opts.ClampToWorld {
		return
	}
	s := t.Scale()
	if s <= 0 {
		return
	}
	halfW := float64(t.state.Width) / 2 / s
	halfH := float64(t.state.Height) / 2 / s
	t.state.Center[0] = clampAxis(t.state.Center.Lon(), 180, halfW)
	t.state.Center[1] = clampAxis(t.state.Center.Lat(), 90, halfH)
}

// clampAxis keeps the visible half-extent inside [-limit, limit]; when the
// view is wider than the world the center snaps to 0.
func clampAxis(v, limit, half float64) float64 {
	lo, hi := -limit+half, limit-half
	if lo > hi {
		return 0
	}
	return clamp(v, lo, hi)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
