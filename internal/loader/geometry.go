package loader

import (
	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
)

// orbGeometry narrows what the loader produces: polygons and points.
type orbGeometry = orb.Geometry

func pointGeometry(x, y float64) orb.Geometry {
	return orb.Point{x, y}
}

// polygonGeometry converts shapefile ring parts into an orb.MultiPolygon.
// Rings wound like the first ring start a new polygon; rings wound the
// other way are holes of the polygon they follow, which is how well-formed
// shapefiles order their parts.
func polygonGeometry(parts []int32, points []shp.Point) orb.Geometry {
	rings := splitRings(parts, points)
	if len(rings) == 0 {
		return nil
	}

	outer := rings[0].Orientation()
	var mp orb.MultiPolygon
	for _, ring := range rings {
		if ring.Orientation() == outer || len(mp) == 0 {
			mp = append(mp, orb.Polygon{ring})
			continue
		}
		mp[len(mp)-1] = append(mp[len(mp)-1], ring)
	}
	return mp
}

// splitRings cuts the flat point array into closed rings, dropping
// degenerate parts with fewer than 3 distinct points.
func splitRings(parts []int32, points []shp.Point) []orb.Ring {
	var rings []orb.Ring
	for i := 0; i < len(parts); i++ {
		start := int(parts[i])
		end := len(points)
		if i+1 < len(parts) {
			end = int(parts[i+1])
		}
		if start < 0 || end > len(points) || end-start < 3 {
			continue
		}
		ring := make(orb.Ring, 0, end-start+1)
		for _, p := range points[start:end] {
			ring = append(ring, orb.Point{p.X, p.Y})
		}
		if ring[0] != ring[len(ring)-1] {
			ring = append(ring, ring[0])
		}
		if len(ring) < 4 {
			continue
		}
		rings = append(rings, ring)
	}
	return rings
}
