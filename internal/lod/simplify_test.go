package lod

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-maps/worldview/internal/geodata"
)

// noisyCircle builds a dense ring around a center so Douglas-Peucker has
// something to remove.
func noisyCircle(cx, cy, r float64, n int) orb.Ring {
	ring := make(orb.Ring, 0, n+1)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		ring = append(ring, orb.Point{cx + r*math.Cos(a), cy + r*math.Sin(a)})
	}
	ring = append(ring, ring[0])
	return ring
}

func circleFeature(id string) *geodata.Feature {
	mp := orb.MultiPolygon{{noisyCircle(0, 0, 10, 360)}}
	return &geodata.Feature{ID: id, Kind: geodata.Country, Geometry: mp, Bound: mp.Bound()}
}

func TestCacheSimplifies(t *testing.T) {
	f := circleFeature("c")
	cache := NewCache([]*geodata.Feature{f}, []float64{0.5})

	mp, ok := cache.MultiPolygon(f, 0.5)
	require.True(t, ok)
	require.Len(t, mp, 1)
	require.Len(t, mp[0], 1)

	full := f.Geometry.(orb.MultiPolygon)
	assert.Less(t, len(mp[0][0]), len(full[0][0]), "simplified ring should drop points")
	assert.GreaterOrEqual(t, len(mp[0][0]), 4, "simplified ring stays a closed polygon")
}

func TestCacheDoesNotMutateOriginal(t *testing.T) {
	f := circleFeature("c")
	before := len(f.Geometry.(orb.MultiPolygon)[0][0])

	NewCache([]*geodata.Feature{f}, []float64{0.5})
	assert.Equal(t, before, len(f.Geometry.(orb.MultiPolygon)[0][0]))
}

func TestCacheZeroToleranceIsFullDetail(t *testing.T) {
	f := circleFeature("c")
	cache := NewCache([]*geodata.Feature{f}, []float64{0.5})

	mp, ok := cache.MultiPolygon(f, 0)
	require.True(t, ok)
	assert.Equal(t, f.Geometry.(orb.MultiPolygon), mp)
}

func TestCacheUnknownToleranceFallsBack(t *testing.T) {
	f := circleFeature("c")
	cache := NewCache([]*geodata.Feature{f}, []float64{0.5})

	mp, ok := cache.MultiPolygon(f, 0.123)
	require.True(t, ok)
	assert.Equal(t, f.Geometry.(orb.MultiPolygon), mp)
}

func TestCacheDegenerateRingKeepsDetail(t *testing.T) {
	// A tiny triangle: any simplification below 4 points must fall back.
	mp := orb.MultiPolygon{{{{0, 0}, {0.001, 0}, {0, 0.001}, {0, 0}}}}
	f := &geodata.Feature{ID: "tiny", Kind: geodata.Country, Geometry: mp, Bound: mp.Bound()}
	cache := NewCache([]*geodata.Feature{f}, []float64{1.0})

	got, ok := cache.MultiPolygon(f, 1.0)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(got[0][0]), 4)
}

func TestCacheKeepsLayersWithSharedIDApart(t *testing.T) {
	// IDs are only unique within a layer: a country and a province may
	// legitimately share one. Each must keep its own simplified geometry.
	country := &geodata.Feature{ID: "X", Kind: geodata.Country}
	countryMP := orb.MultiPolygon{{noisyCircle(0, 0, 50, 360)}}
	country.Geometry, country.Bound = countryMP, countryMP.Bound()

	province := &geodata.Feature{ID: "X", Kind: geodata.Province}
	provinceMP := orb.MultiPolygon{{noisyCircle(0, 0, 0.5, 360)}}
	province.Geometry, province.Bound = provinceMP, provinceMP.Bound()

	cache := NewCache([]*geodata.Feature{country, province}, []float64{1.0})

	got, ok := cache.MultiPolygon(country, 1.0)
	require.True(t, ok)
	assert.InDelta(t, -50, got.Bound().Min.X(), 1.0, "country kept its own extent")

	got, ok = cache.MultiPolygon(province, 1.0)
	require.True(t, ok)
	assert.GreaterOrEqual(t, got.Bound().Min.X(), -1.0, "province not replaced by country geometry")
	assert.LessOrEqual(t, got.Bound().Max.X(), 1.0)
}

func TestCacheIgnoresPoints(t *testing.T) {
	f := &geodata.Feature{ID: "p", Kind: geodata.City, Geometry: orb.Point{1, 2}}
	cache := NewCache([]*geodata.Feature{f}, []float64{0.5})

	_, ok := cache.MultiPolygon(f, 0.5)
	assert.False(t, ok)
}
