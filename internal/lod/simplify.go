package lod

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"

	"github.com/meridian-maps/worldview/internal/geodata"
)

// cacheKey identifies a feature across layers. IDs are only unique within
// a layer, so the kind is part of the key.
type cacheKey struct {
	kind geodata.Kind
	id   string
}

// Cache holds per-tolerance simplified copies of area geometry,
// precomputed once at engine build so per-frame lookups are pure reads.
type Cache struct {
	simplified map[cacheKey]map[float64]orb.MultiPolygon
}

// NewCache precomputes simplified geometry for every area feature at each
// of the given tolerances. Point features are ignored.
func NewCache(features []*geodata.Feature, tolerances []float64) *Cache {
	c := &Cache{simplified: make(map[cacheKey]map[float64]orb.MultiPolygon)}
	for _, f := range features {
		mp, ok := f.Geometry.(orb.MultiPolygon)
		if !ok {
			continue
		}
		byTol := make(map[float64]orb.MultiPolygon, len(tolerances))
		for _, tol := range tolerances {
			byTol[tol] = simplifyMultiPolygon(mp, tol)
		}
		c.simplified[cacheKey{kind: f.Kind, id: f.ID}] = byTol
	}
	return c
}

// MultiPolygon returns the feature's geometry at the given tolerance,
// falling back to full detail for tolerance 0, unknown tolerances, or
// point features.
func (c *Cache) MultiPolygon(f *geodata.Feature, tolerance float64) (orb.MultiPolygon, bool) {
	mp, ok := f.Geometry.(orb.MultiPolygon)
	if !ok {
		return nil, false
	}
	if tolerance <= 0 {
		return mp, true
	}
	if byTol, ok := c.simplified[cacheKey{kind: f.Kind, id: f.ID}]; ok {
		if s, ok := byTol[tolerance]; ok {
			return s, true
		}
	}
	return mp, true
}

// simplifyMultiPolygon runs Douglas-Peucker per ring. The orb simplifier
// mutates in place, so rings are cloned first; rings that would collapse
// below a valid closed triangle keep full detail.
func simplifyMultiPolygon(mp orb.MultiPolygon, tolerance float64) orb.MultiPolygon {
	dp := simplify.DouglasPeucker(tolerance)
	out := make(orb.MultiPolygon, 0, len(mp))
	for _, poly := range mp {
		sp := make(orb.Polygon, 0, len(poly))
		for _, ring := range poly {
			s := dp.Ring(ring.Clone())
			if len(s) < 4 {
				s = ring
			}
			sp = append(sp, s)
		}
		out = append(out, sp)
	}
	return out
}
