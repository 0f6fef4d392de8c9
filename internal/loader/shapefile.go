// Package loader reads Natural Earth shapefiles into raw features for the
// geometry store.
package loader

import (
	"fmt"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/meridian-maps/worldview/internal/geodata"
)

// Paths locates the three Natural Earth shapefiles.
type Paths struct {
	Countries string
	Provinces string
	Cities    string
}

// LoadAll reads the country, province and city layers concurrently and
// returns them concatenated in layer order.
func LoadAll(paths Paths) ([]geodata.RawFeature, error) {
	var countries, provinces, cities []geodata.RawFeature

	var g errgroup.Group
	g.Go(func() (err error) {
		countries, err = LoadLayer(paths.Countries, geodata.Country)
		return err
	})
	g.Go(func() (err error) {
		provinces, err = LoadLayer(paths.Provinces, geodata.Province)
		return err
	})
	g.Go(func() (err error) {
		cities, err = LoadLayer(paths.Cities, geodata.City)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]geodata.RawFeature, 0, len(countries)+len(provinces)+len(cities))
	out = append(out, countries...)
	out = append(out, provinces...)
	out = append(out, cities...)
	return out, nil
}

// LoadLayer reads one shapefile as the given layer kind.
func LoadLayer(path string, kind geodata.Kind) ([]geodata.RawFeature, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fieldIdx := fieldIndex(reader.Fields())

	var features []geodata.RawFeature
	var skipped int
	row := 0

	for reader.Next() {
		_, shape := reader.Shape()
		geometry := toGeometry(shape)
		if geometry == nil {
			skipped++
			row++
			continue
		}
		features = append(features, geodata.RawFeature{
			ID:       featureID(reader, fieldIdx, kind, row),
			Kind:     kind,
			Geometry: geometry,
			Attr:     attributes(reader, fieldIdx, kind),
		})
		row++
	}

	if skipped > 0 {
		zap.L().Debug("loader: skipped shapefile records",
			zap.String("path", path),
			zap.String("kind", string(kind)),
			zap.Int("skipped", skipped),
		)
	}
	return features, nil
}

// fieldIndex builds a lowercase field name -> column index map.
func fieldIndex(fields []shp.Field) map[string]int {
	idx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		idx[strings.ToLower(name)] = i
	}
	return idx
}

// attrString returns the first non-empty attribute among the named fields.
func attrString(r *shp.Reader, idx map[string]int, names ...string) string {
	for _, name := range names {
		i, ok := idx[strings.ToLower(name)]
		if !ok {
			continue
		}
		val := strings.TrimSpace(strings.TrimRight(r.Attribute(i), "\x00"))
		if val != "" {
			return val
		}
	}
	return ""
}

func attrInt64(r *shp.Reader, idx map[string]int, names ...string) int64 {
	val := attrString(r, idx, names...)
	if val == "" {
		return 0
	}
	var n float64
	if _, err := fmt.Sscanf(val, "%f", &n); err != nil {
		return 0
	}
	if n < 0 {
		return 0
	}
	return int64(n)
}

func featureID(r *shp.Reader, idx map[string]int, kind geodata.Kind, row int) string {
	var id string
	switch kind {
	case geodata.Country:
		id = attrString(r, idx, "ADM0_A3", "SOV_A3", "ISO_A3")
	case geodata.Province:
		id = attrString(r, idx, "adm1_code", "diss_me")
	case geodata.City:
		id = attrString(r, idx, "NE_ID", "GEONAMEID")
	}
	if id == "" {
		id = fmt.Sprintf("%s-%d", kind, row)
	}
	return id
}

func attributes(r *shp.Reader, idx map[string]int, kind geodata.Kind) geodata.Attributes {
	switch kind {
	case geodata.Country:
		return geodata.Attributes{
			Name:       attrString(r, idx, "NAME_EN", "ADMIN", "NAME"),
			Population: attrInt64(r, idx, "POP_EST"),
		}
	case geodata.Province:
		return geodata.Attributes{
			Name:    attrString(r, idx, "name_en", "name"),
			OwnerID: attrString(r, idx, "adm0_a3", "sov_a3"),
		}
	default:
		return geodata.Attributes{
			Name:       attrString(r, idx, "NAME", "NAMEASCII"),
			Population: attrInt64(r, idx, "POP_MAX"),
			OwnerID:    attrString(r, idx, "ADM0_A3", "SOV_A3"),
		}
	}
}

// toGeometry converts a shapefile shape to orb geometry. Unsupported or
// nil shapes return nil and are skipped by the caller.
func toGeometry(shape shp.Shape) orbGeometry {
	switch s := shape.(type) {
	case *shp.Point:
		return pointGeometry(s.X, s.Y)
	case *shp.PointZ:
		return pointGeometry(s.X, s.Y)
	case *shp.Polygon:
		return polygonGeometry(s.Parts, s.Points)
	case *shp.PolygonZ:
		return polygonGeometry(s.Parts, s.Points)
	default:
		return nil
	}
}
