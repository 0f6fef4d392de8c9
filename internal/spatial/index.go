// Package spatial provides the per-layer bounding-box index used for
// view culling and click resolution.
package spatial

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"

	"github.com/meridian-maps/worldview/internal/geodata"
)

// item is the index payload: the feature id plus its precomputed bbox
// area, kept so point queries can order candidates smallest-first.
type item struct {
	id   string
	area float64
}

// Index is an immutable bounding-box index over one feature layer. Build
// it once after the store is populated; it is read-only afterward and
// safe for concurrent queries.
type Index struct {
	tree rtree.RTreeG[item]
}

// Build bulk-loads the features' precomputed bounds into an R-tree. The
// index stores ids only; geometry stays in the store.
func Build(features []*geodata.Feature) *Index {
	idx := &Index{}
	for _, f := range features {
		b := f.Bound
		idx.tree.Insert(
			[2]float64{b.Min.X(), b.Min.Y()},
			[2]float64{b.Max.X(), b.Max.Y()},
			item{id: f.ID, area: boundArea(b)},
		)
	}
	return idx
}

// Len returns the number of indexed features.
func (idx *Index) Len() int {
	return idx.tree.Len()
}

// QueryBBox returns the ids of all features whose bounding box intersects
// b, sorted by id. The bbox test is a broad filter: over-returns are
// expected, false negatives are not.
func (idx *Index) QueryBBox(b orb.Bound) []string {
	var ids []string
	idx.tree.Search(
		[2]float64{b.Min.X(), b.Min.Y()},
		[2]float64{b.Max.X(), b.Max.Y()},
		func(_, _ [2]float64, it item) bool {
			ids = append(ids, it.id)
			return true
		},
	)
	sort.Strings(ids)
	return ids
}

// QueryPoint returns the ids of all features whose bounding box contains
// p, ordered by ascending bbox area (ties broken by id) so that nested,
// smaller regions are tested before the larger ones enclosing them.
func (idx *Index) QueryPoint(p orb.Point) []string {
	var hits []item
	idx.tree.Search(
		[2]float64{p.X(), p.Y()},
		[2]float64{p.X(), p.Y()},
		func(_, _ [2]float64, it item) bool {
			hits = append(hits, it)
			return true
		},
	)
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].area != hits[j].area {
			return hits[i].area < hits[j].area
		}
		return hits[i].id < hits[j].id
	})
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.id
	}
	return ids
}

func boundArea(b orb.Bound) float64 {
	return (b.Max.X() - b.Min.X()) * (b.Max.Y() - b.Min.Y())
}
