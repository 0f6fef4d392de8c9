package lod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-maps/worldview/internal/geodata"
)

func TestSelectLayersByZoom(t *testing.T) {
	s := NewSelector(DefaultConfig())

	low := s.Select(0.5)
	assert.True(t, low.HasLayer(geodata.Country))
	assert.False(t, low.HasLayer(geodata.Province))
	assert.False(t, low.HasLayer(geodata.City))

	mid := s.Select(2.5)
	assert.True(t, mid.HasLayer(geodata.Country))
	assert.True(t, mid.HasLayer(geodata.Province))
	assert.False(t, mid.HasLayer(geodata.City))

	high := s.Select(10)
	assert.True(t, high.HasLayer(geodata.Country))
	assert.True(t, high.HasLayer(geodata.Province))
	assert.True(t, high.HasLayer(geodata.City))
}

func TestSelectMonotonic(t *testing.T) {
	s := NewSelector(DefaultConfig())

	zooms := []float64{0.3, 0.5, 0.9, 1.5, 2.0, 3.0, 4.5, 6.0, 8.0, 12.0, 25.0, 50.0}
	prev := s.Select(zooms[0])
	for _, z := range zooms[1:] {
		cur := s.Select(z)
		// Layers only accumulate.
		for _, layer := range prev.Layers {
			assert.True(t, cur.HasLayer(layer), "zoom %v dropped layer %s", z, layer)
		}
		// The population threshold never rises.
		assert.LessOrEqual(t, cur.MinCityPopulation, prev.MinCityPopulation, "zoom %v", z)
		prev = cur
	}
}

func TestSelectSimplifyTolerance(t *testing.T) {
	s := NewSelector(DefaultConfig())

	assert.Equal(t, 1.0, s.Select(0.3).SimplifyTolerance)
	assert.Equal(t, 0.5, s.Select(0.7).SimplifyTolerance)
	assert.Equal(t, 0.1, s.Select(1.5).SimplifyTolerance)
	assert.Equal(t, 0.02, s.Select(3.0).SimplifyTolerance)
	// Past the last band: full detail.
	assert.Equal(t, 0.0, s.Select(4.0).SimplifyTolerance)
	assert.Equal(t, 0.0, s.Select(50.0).SimplifyTolerance)
}

func TestSelectCityThresholds(t *testing.T) {
	s := NewSelector(DefaultConfig())

	assert.Equal(t, int64(2_000_000), s.Select(3.0).MinCityPopulation)
	assert.Equal(t, int64(500_000), s.Select(5.0).MinCityPopulation)
	assert.Equal(t, int64(100_000), s.Select(8.0).MinCityPopulation)
	assert.Equal(t, int64(0), s.Select(12.0).MinCityPopulation)
}

func TestNewSelectorNormalizesConfig(t *testing.T) {
	// Bands arrive unsorted with a non-monotonic threshold; the selector
	// must still satisfy the monotonicity guarantees.
	s := NewSelector(Config{
		ProvinceMinZoom: 1,
		CityMinZoom:     2,
		SimplifyBands: []SimplifyBand{
			{MaxZoom: 4.0, Tolerance: 0.5}, // coarser than the band below it
			{MaxZoom: 1.0, Tolerance: 0.1},
		},
		CityBands: []CityBand{
			{MinZoom: 6.0, MinPopulation: 900_000}, // higher than at zoom 2
			{MinZoom: 2.0, MinPopulation: 500_000},
		},
	})

	assert.GreaterOrEqual(t, s.Select(0.5).SimplifyTolerance, s.Select(2.0).SimplifyTolerance)
	assert.GreaterOrEqual(t, s.Select(2.0).MinCityPopulation, s.Select(6.0).MinCityPopulation)
	assert.Equal(t, int64(500_000), s.Select(6.0).MinCityPopulation)
}

func TestNewSelectorZeroConfigUsesDefaults(t *testing.T) {
	s := NewSelector(Config{})
	sel := s.Select(10)
	require.True(t, sel.HasLayer(geodata.Province))
	require.True(t, sel.HasLayer(geodata.City))
}

func TestTolerances(t *testing.T) {
	s := NewSelector(DefaultConfig())
	tols := s.Tolerances()
	assert.ElementsMatch(t, []float64{1.0, 0.5, 0.1, 0.02}, tols)
}
