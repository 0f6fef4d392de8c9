// Package geodata holds the immutable feature model and the in-memory
// geometry store the map engine queries each frame.
package geodata

import "github.com/paulmach/orb"

// Kind identifies a feature layer.
type Kind string

// Feature layers, coarsest first.
const (
	Country  Kind = "country"
	Province Kind = "province"
	City     Kind = "city"
)

// Kinds lists all layers in draw order (coarsest first).
func Kinds() []Kind {
	return []Kind{Country, Province, City}
}

// Valid reports whether k names a known layer.
func (k Kind) Valid() bool {
	switch k {
	case Country, Province, City:
		return true
	}
	return false
}

// Attributes carries the non-geometric payload of a feature. The set is
// small and known, so it is a struct rather than an open-ended map.
type Attributes struct {
	Name       string `json:"name"`
	Population int64  `json:"population,omitempty"`
	OwnerID    string `json:"owner_id,omitempty"`
}

// Feature is one geographic entity: a country or province with polygon
// geometry, or a populated place with point geometry. Features are
// immutable after Load.
type Feature struct {
	ID       string
	Kind     Kind
	Geometry orb.Geometry // orb.MultiPolygon for areas, orb.Point for cities
	Bound    orb.Bound    // computed once at load, never recomputed
	Attr     Attributes
}

// RawFeature is the pre-validation form produced by loaders.
type RawFeature struct {
	ID       string
	Kind     Kind
	Geometry orb.Geometry
	Attr     Attributes
}
