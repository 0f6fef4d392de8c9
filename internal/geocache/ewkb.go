package geocache

import (
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
)

const srid = 4326

// encodeGeometry converts feature geometry to EWKB bytes for storage.
func encodeGeometry(g orb.Geometry) ([]byte, error) {
	var t geom.T
	switch v := g.(type) {
	case orb.Point:
		t = geom.NewPointFlat(geom.XY, []float64{v.X(), v.Y()}).SetSRID(srid)
	case orb.MultiPolygon:
		t = multiPolygonToGeom(v)
	default:
		return nil, eris.Errorf("geocache: unsupported geometry %s", g.GeoJSONType())
	}

	data, err := ewkb.Marshal(t, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "geocache: encode EWKB")
	}
	return data, nil
}

// decodeGeometry restores feature geometry from EWKB bytes.
func decodeGeometry(data []byte) (orb.Geometry, error) {
	t, err := ewkb.Unmarshal(data)
	if err != nil {
		return nil, eris.Wrap(err, "geocache: decode EWKB")
	}

	switch v := t.(type) {
	case *geom.Point:
		return orb.Point{v.X(), v.Y()}, nil
	case *geom.MultiPolygon:
		return geomToMultiPolygon(v), nil
	default:
		return nil, eris.Errorf("geocache: unsupported stored geometry %T", t)
	}
}

func multiPolygonToGeom(mp orb.MultiPolygon) *geom.MultiPolygon {
	out := geom.NewMultiPolygon(geom.XY).SetSRID(srid)
	for _, poly := range mp {
		gp := geom.NewPolygon(geom.XY)
		for _, ring := range poly {
			flat := make([]float64, 0, len(ring)*2)
			for _, pt := range ring {
				flat = append(flat, pt.X(), pt.Y())
			}
			if err := gp.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
				continue
			}
		}
		if err := out.Push(gp); err != nil {
			continue
		}
	}
	return out
}

func geomToMultiPolygon(mp *geom.MultiPolygon) orb.MultiPolygon {
	out := make(orb.MultiPolygon, 0, mp.NumPolygons())
	for i := 0; i < mp.NumPolygons(); i++ {
		gp := mp.Polygon(i)
		poly := make(orb.Polygon, 0, gp.NumLinearRings())
		for j := 0; j < gp.NumLinearRings(); j++ {
			flat := gp.LinearRing(j).FlatCoords()
			ring := make(orb.Ring, 0, len(flat)/2)
			for k := 0; k+1 < len(flat); k += 2 {
				ring = append(ring, orb.Point{flat[k], flat[k+1]})
			}
			poly = append(poly, ring)
		}
		out = append(out, poly)
	}
	return out
}
