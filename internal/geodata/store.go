package geodata

import (
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
)

// Sentinel errors for load validation and lookups.
var (
	ErrInvalidData = eris.New("geodata: invalid feature data")
	ErrNotFound    = eris.New("geodata: feature not found")
)

// Store owns all features for a session, partitioned by Kind. It is built
// once from parsed data and read-only afterward, so it is safe to share
// across goroutines without locking.
type Store struct {
	layers map[Kind][]*Feature
	byID   map[Kind]map[string]*Feature
}

// Load validates raw features and builds a Store. It fails on the first
// degenerate geometry or duplicate id within a layer; a store is either
// complete or not constructed at all.
func Load(raw []RawFeature) (*Store, error) {
	s := &Store{
		layers: make(map[Kind][]*Feature),
		byID:   make(map[Kind]map[string]*Feature),
	}
	for _, r := range raw {
		if err := validate(r); err != nil {
			return nil, err
		}
		if s.byID[r.Kind] == nil {
			s.byID[r.Kind] = make(map[string]*Feature)
		}
		if _, dup := s.byID[r.Kind][r.ID]; dup {
			return nil, eris.Wrapf(ErrInvalidData, "duplicate id %q in layer %s", r.ID, r.Kind)
		}
		f := &Feature{
			ID:       r.ID,
			Kind:     r.Kind,
			Geometry: r.Geometry,
			Bound:    r.Geometry.Bound(),
			Attr:     r.Attr,
		}
		s.byID[r.Kind][r.ID] = f
		s.layers[r.Kind] = append(s.layers[r.Kind], f)
	}
	return s, nil
}

// FeaturesOf returns the layer's features in insertion order. The returned
// slice is owned by the store and must not be modified.
func (s *Store) FeaturesOf(kind Kind) []*Feature {
	return s.layers[kind]
}

// ByID resolves a feature by layer and id. Unknown ids return ErrNotFound;
// callers resolving spatial-index hits should skip such candidates.
func (s *Store) ByID(kind Kind, id string) (*Feature, error) {
	f, ok := s.byID[kind][id]
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "%s %q", kind, id)
	}
	return f, nil
}

// Len returns the number of features in a layer.
func (s *Store) Len(kind Kind) int {
	return len(s.layers[kind])
}

func validate(r RawFeature) error {
	if r.ID == "" {
		return eris.Wrapf(ErrInvalidData, "layer %s: empty id", r.Kind)
	}
	if !r.Kind.Valid() {
		return eris.Wrapf(ErrInvalidData, "feature %q: unknown kind %q", r.ID, r.Kind)
	}
	switch g := r.Geometry.(type) {
	case orb.Point:
		return nil
	case orb.MultiPolygon:
		if len(g) == 0 {
			return eris.Wrapf(ErrInvalidData, "feature %q: empty multipolygon", r.ID)
		}
		for pi, poly := range g {
			if len(poly) == 0 {
				return eris.Wrapf(ErrInvalidData, "feature %q: polygon %d has no rings", r.ID, pi)
			}
			for ri, ring := range poly {
				if distinctPoints(ring) < 3 {
					return eris.Wrapf(ErrInvalidData,
						"feature %q: polygon %d ring %d has fewer than 3 points", r.ID, pi, ri)
				}
			}
		}
		return nil
	case nil:
		return eris.Wrapf(ErrInvalidData, "feature %q: nil geometry", r.ID)
	default:
		return eris.Wrapf(ErrInvalidData, "feature %q: unsupported geometry %s", r.ID, g.GeoJSONType())
	}
}

// distinctPoints counts ring vertices, ignoring the closing duplicate if
// the ring is explicitly closed.
func distinctPoints(ring orb.Ring) int {
	n := len(ring)
	if n > 1 && ring[0] == ring[n-1] {
		n--
	}
	return n
}
