package engine

import (
	"github.com/meridian-maps/worldview/internal/geodata"
	"github.com/meridian-maps/worldview/internal/selection"
	"github.com/meridian-maps/worldview/internal/viewport"
)

// Style tells the renderer how to draw an item.
type Style string

// Style hints, in draw order within a frame.
const (
	StyleFill      Style = "fill"      // country interior
	StyleOutline   Style = "outline"   // province border
	StylePoint     Style = "point"     // city marker
	StyleHighlight Style = "highlight" // selected country, drawn last
)

// DrawItem is one renderable feature with geometry already projected to
// pixel coordinates. Area features carry Rings, cities carry Point.
type DrawItem struct {
	Kind      geodata.Kind           `json:"kind"`
	FeatureID string                 `json:"feature_id"`
	Style     Style                  `json:"style"`
	Rings     [][]viewport.ScreenPoint `json:"rings,omitempty"`
	Point     *viewport.ScreenPoint  `json:"point,omitempty"`
	Attr      geodata.Attributes     `json:"attributes"`
}

// Frame is the per-step output handed to the rendering collaborator:
// an ordered draw-list, the post-event viewport, and the selection, plus
// the HUD fields the original UI displays (zoom level, selected name).
type Frame struct {
	Viewport     viewport.State  `json:"viewport"`
	Items        []DrawItem      `json:"items"`
	Selection    selection.State `json:"selection"`
	SelectedName string          `json:"selected_name,omitempty"`
}
