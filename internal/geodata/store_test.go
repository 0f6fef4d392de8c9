package geodata

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(minX, minY, maxX, maxY float64) orb.MultiPolygon {
	return orb.MultiPolygon{{{
		{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
	}}}
}

func TestLoadAndLookup(t *testing.T) {
	store, err := Load([]RawFeature{
		{ID: "FRA", Kind: Country, Geometry: square(-5, 42, 8, 51), Attr: Attributes{Name: "France", Population: 67_000_000}},
		{ID: "DEU", Kind: Country, Geometry: square(6, 47, 15, 55), Attr: Attributes{Name: "Germany"}},
		{ID: "paris", Kind: City, Geometry: orb.Point{2.35, 48.85}, Attr: Attributes{Name: "Paris", OwnerID: "FRA"}},
	})
	require.NoError(t, err)

	// Insertion order is preserved per layer.
	countries := store.FeaturesOf(Country)
	require.Len(t, countries, 2)
	assert.Equal(t, "FRA", countries[0].ID)
	assert.Equal(t, "DEU", countries[1].ID)
	assert.Equal(t, 2, store.Len(Country))
	assert.Equal(t, 1, store.Len(City))

	f, err := store.ByID(Country, "FRA")
	require.NoError(t, err)
	assert.Equal(t, "France", f.Attr.Name)

	// Bound is derived from geometry at load.
	assert.Equal(t, orb.Point{-5, 42}, f.Bound.Min)
	assert.Equal(t, orb.Point{8, 51}, f.Bound.Max)

	city, err := store.ByID(City, "paris")
	require.NoError(t, err)
	assert.Equal(t, "FRA", city.Attr.OwnerID)
}

func TestLoadRejectsDuplicateID(t *testing.T) {
	_, err := Load([]RawFeature{
		{ID: "FRA", Kind: Country, Geometry: square(0, 0, 1, 1)},
		{ID: "FRA", Kind: Country, Geometry: square(2, 2, 3, 3)},
	})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInvalidData))
}

func TestLoadAllowsSameIDAcrossLayers(t *testing.T) {
	_, err := Load([]RawFeature{
		{ID: "X", Kind: Country, Geometry: square(0, 0, 1, 1)},
		{ID: "X", Kind: Province, Geometry: square(0, 0, 1, 1)},
	})
	assert.NoError(t, err)
}

func TestLoadRejectsDegenerateGeometry(t *testing.T) {
	tests := []struct {
		name string
		raw  RawFeature
	}{
		{
			name: "empty multipolygon",
			raw:  RawFeature{ID: "a", Kind: Country, Geometry: orb.MultiPolygon{}},
		},
		{
			name: "polygon without rings",
			raw:  RawFeature{ID: "b", Kind: Country, Geometry: orb.MultiPolygon{{}}},
		},
		{
			name: "ring with two points",
			raw:  RawFeature{ID: "c", Kind: Country, Geometry: orb.MultiPolygon{{{{0, 0}, {1, 1}}}}},
		},
		{
			name: "closed ring with only two distinct points",
			raw:  RawFeature{ID: "d", Kind: Country, Geometry: orb.MultiPolygon{{{{0, 0}, {1, 1}, {0, 0}}}}},
		},
		{
			name: "nil geometry",
			raw:  RawFeature{ID: "e", Kind: Country},
		},
		{
			name: "empty id",
			raw:  RawFeature{Kind: Country, Geometry: square(0, 0, 1, 1)},
		},
		{
			name: "unknown kind",
			raw:  RawFeature{ID: "f", Kind: Kind("continent"), Geometry: square(0, 0, 1, 1)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]RawFeature{tt.raw})
			require.Error(t, err)
			assert.True(t, eris.Is(err, ErrInvalidData))
		})
	}
}

func TestByIDNotFound(t *testing.T) {
	store, err := Load(nil)
	require.NoError(t, err)

	_, err = store.ByID(Country, "nope")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
}
