// Package engine composes the store, spatial indexes, viewport transform,
// level-of-detail selector and selection engine into the per-frame map
// update.
package engine

import (
	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/meridian-maps/worldview/internal/geodata"
	"github.com/meridian-maps/worldview/internal/lod"
	"github.com/meridian-maps/worldview/internal/selection"
	"github.com/meridian-maps/worldview/internal/spatial"
	"github.com/meridian-maps/worldview/internal/viewport"
)

// World is the shared immutable half of the engine: feature store,
// per-layer spatial indexes, LOD selector and precomputed simplified
// geometry. Built once before the frame loop; safe to share read-only
// across any number of sessions.
type World struct {
	store      *geodata.Store
	indexes    map[geodata.Kind]*spatial.Index
	selector   *lod.Selector
	simplified *lod.Cache
}

// NewWorld builds the indexes and simplification cache for a loaded store.
func NewWorld(store *geodata.Store, lodCfg lod.Config) *World {
	w := &World{
		store:    store,
		indexes:  make(map[geodata.Kind]*spatial.Index),
		selector: lod.NewSelector(lodCfg),
	}
	var areas []*geodata.Feature
	for _, kind := range geodata.Kinds() {
		features := store.FeaturesOf(kind)
		w.indexes[kind] = spatial.Build(features)
		if kind != geodata.City {
			areas = append(areas, features...)
		}
	}
	w.simplified = lod.NewCache(areas, w.selector.Tolerances())
	zap.L().Info("world built",
		zap.Int("countries", store.Len(geodata.Country)),
		zap.Int("provinces", store.Len(geodata.Province)),
		zap.Int("cities", store.Len(geodata.City)),
	)
	return w
}

// Store exposes the world's feature store.
func (w *World) Store() *geodata.Store {
	return w.store
}

// Index exposes the spatial index of one layer.
func (w *World) Index(kind geodata.Kind) *spatial.Index {
	return w.indexes[kind]
}

// Options tunes per-session engine behavior.
type Options struct {
	Viewport          viewport.Options
	ClearOnEmptyClick bool
}

// Engine is the per-session mutable half: it owns the viewport transform
// and selection state and advances one discrete step per Frame call.
// It is single-threaded by contract; callers running concurrent sessions
// give each its own Engine over a shared World.
type Engine struct {
	world        *World
	view         *viewport.Transform
	sel          selection.State
	clearOnEmpty bool
}

// New builds an engine with the given initial viewport state.
func New(world *World, opts Options, initial viewport.State) *Engine {
	return &Engine{
		world:        world,
		view:         viewport.New(opts.Viewport, initial),
		clearOnEmpty: opts.ClearOnEmptyClick,
	}
}

// View returns the current viewport state.
func (e *Engine) View() viewport.State {
	return e.view.State()
}

// Selection returns the current selection state.
func (e *Engine) Selection() selection.State {
	return e.sel
}

// Frame applies the pending events in arrival order and produces the
// draw-list for the resulting view. View changes are applied first, then
// clicks against the post-pan/zoom state. Output is deterministic for a
// fixed initial state and event sequence.
func (e *Engine) Frame(events []Event) *Frame {
	for _, ev := range events {
		switch v := ev.(type) {
		case PanEvent:
			e.view.Pan(v.DX, v.DY)
		case ZoomEvent:
			e.view.ZoomAt(v.At, v.Steps)
		case ResizeEvent:
			e.view.Resize(v.Width, v.Height)
		}
	}
	for _, ev := range events {
		click, ok := ev.(ClickEvent)
		if !ok {
			continue
		}
		res := selection.SelectAt(click.At, e.view, e.world.indexes[geodata.Country], e.world.store)
		e.sel.Apply(res, e.clearOnEmpty)
	}

	state := e.view.State()
	visible := e.view.VisibleBBox()
	sel := e.world.selector.Select(state.Zoom)

	frame := &Frame{Viewport: state, Selection: e.sel}
	frame.Items = append(frame.Items, e.areaItems(geodata.Country, visible, sel.SimplifyTolerance, StyleFill)...)
	if sel.HasLayer(geodata.Province) {
		frame.Items = append(frame.Items, e.areaItems(geodata.Province, visible, sel.SimplifyTolerance, StyleOutline)...)
	}
	if sel.HasLayer(geodata.City) {
		frame.Items = append(frame.Items, e.cityItems(visible, sel.MinCityPopulation)...)
	}
	if e.sel.Selected {
		if f, err := e.world.store.ByID(geodata.Country, e.sel.SelectedID); err == nil {
			frame.SelectedName = f.Attr.Name
			if item, ok := e.highlightItem(f, visible, sel.SimplifyTolerance); ok {
				frame.Items = append(frame.Items, item)
			}
		}
	}
	return frame
}

// areaItems culls one polygon layer against the visible box and projects
// the simplified rings to screen space.
func (e *Engine) areaItems(kind geodata.Kind, visible orb.Bound, tolerance float64, style Style) []DrawItem {
	var items []DrawItem
	for _, id := range e.world.indexes[kind].QueryBBox(visible) {
		f, err := e.world.store.ByID(kind, id)
		if err != nil {
			continue
		}
		mp, ok := e.world.simplified.MultiPolygon(f, tolerance)
		if !ok {
			continue
		}
		items = append(items, DrawItem{
			Kind:      kind,
			FeatureID: f.ID,
			Style:     style,
			Rings:     e.projectRings(mp),
			Attr:      f.Attr,
		})
	}
	return items
}

// cityItems culls the city layer and filters by the population cutoff.
func (e *Engine) cityItems(visible orb.Bound, minPopulation int64) []DrawItem {
	var items []DrawItem
	for _, id := range e.world.indexes[geodata.City].QueryBBox(visible) {
		f, err := e.world.store.ByID(geodata.City, id)
		if err != nil {
			continue
		}
		if f.Attr.Population < minPopulation {
			continue
		}
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		sp := e.view.WorldToScreen(pt)
		items = append(items, DrawItem{
			Kind:      geodata.City,
			FeatureID: f.ID,
			Style:     StylePoint,
			Point:     &sp,
			Attr:      f.Attr,
		})
	}
	return items
}

// highlightItem re-emits the selected country on top of everything else
// when it is in view.
func (e *Engine) highlightItem(f *geodata.Feature, visible orb.Bound, tolerance float64) (DrawItem, bool) {
	if !f.Bound.Intersects(visible) {
		return DrawItem{}, false
	}
	mp, ok := e.world.simplified.MultiPolygon(f, tolerance)
	if !ok {
		return DrawItem{}, false
	}
	return DrawItem{
		Kind:      geodata.Country,
		FeatureID: f.ID,
		Style:     StyleHighlight,
		Rings:     e.projectRings(mp),
		Attr:      f.Attr,
	}, true
}

func (e *Engine) projectRings(mp orb.MultiPolygon) [][]viewport.ScreenPoint {
	var rings [][]viewport.ScreenPoint
	for _, poly := range mp {
		for _, ring := range poly {
			sr := make([]viewport.ScreenPoint, len(ring))
			for i, pt := range ring {
				sr[i] = e.view.WorldToScreen(pt)
			}
			rings = append(rings, sr)
		}
	}
	return rings
}
