// Package selection resolves screen clicks into selected countries via
// the spatial index and exact point-in-polygon tests.
package selection

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/rotisserie/eris"

	"github.com/meridian-maps/worldview/internal/geodata"
	"github.com/meridian-maps/worldview/internal/spatial"
	"github.com/meridian-maps/worldview/internal/viewport"
)

// Result reports the outcome of a click resolution.
type Result struct {
	FeatureID string `json:"feature_id,omitempty"`
	Found     bool   `json:"found"`
}

// State is the single optional selected country id. It changes only
// through Apply.
type State struct {
	SelectedID string `json:"selected_id,omitempty"`
	Selected   bool   `json:"selected"`
}

// Apply folds a click result into the selection. An empty-space click
// clears the selection only when clearOnEmpty is set.
func (s *State) Apply(r Result, clearOnEmpty bool) {
	if r.Found {
		s.SelectedID = r.FeatureID
		s.Selected = true
		return
	}
	if clearOnEmpty {
		s.SelectedID = ""
		s.Selected = false
	}
}

// Clear resets the selection.
func (s *State) Clear() {
	s.SelectedID = ""
	s.Selected = false
}

// SelectAt converts a screen click to world space, queries the country
// index for bbox candidates (smallest first), and returns the first
// candidate whose polygon exactly contains the point. It is stateless and
// deterministic for identical inputs.
func SelectAt(at viewport.ScreenPoint, view *viewport.Transform, index *spatial.Index, store *geodata.Store) Result {
	world := view.ScreenToWorld(at)
	for _, id := range index.QueryPoint(world) {
		f, err := store.ByID(geodata.Country, id)
		if err != nil {
			if eris.Is(err, geodata.ErrNotFound) {
				continue // stale index entry, skip candidate
			}
			continue
		}
		if Contains(f.Geometry, world) {
			return Result{FeatureID: id, Found: true}
		}
	}
	return Result{}
}

// Contains runs the exact point-in-polygon test against area geometry.
// Non-polygon geometry never contains a point.
func Contains(g orb.Geometry, p orb.Point) bool {
	mp, ok := g.(orb.MultiPolygon)
	if !ok {
		return false
	}
	for _, poly := range mp {
		if polygonContains(poly, p) {
			return true
		}
	}
	return false
}

// polygonContains tests outer rings and holes by winding rather than ring
// order alone: rings wound like the first ring count as outers, rings
// wound the other way are holes. A point inside a hole is not a match.
func polygonContains(poly orb.Polygon, p orb.Point) bool {
	if len(poly) == 0 {
		return false
	}
	outer := poly[0].Orientation()
	inOuter := false
	for _, ring := range poly {
		if !planar.RingContains(ring, p) {
			continue
		}
		if ring.Orientation() == outer {
			inOuter = true
		} else {
			return false
		}
	}
	return inOuter
}
