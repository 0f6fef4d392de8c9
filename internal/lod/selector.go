// Package lod maps the current zoom to the set of visible layers, the
// polygon simplification tolerance, and the city population cutoff.
package lod

import (
	"math"
	"sort"

	"github.com/meridian-maps/worldview/internal/geodata"
)

// SimplifyBand maps zoom levels below MaxZoom to a Douglas-Peucker
// tolerance in world degrees. Zooms at or beyond the last band render
// full-detail geometry.
type SimplifyBand struct {
	MaxZoom   float64 `yaml:"max_zoom" mapstructure:"max_zoom"`
	Tolerance float64 `yaml:"tolerance" mapstructure:"tolerance"`
}

// CityBand maps zoom levels at or above MinZoom to the minimum population
// a city needs to be drawn.
type CityBand struct {
	MinZoom       float64 `yaml:"min_zoom" mapstructure:"min_zoom"`
	MinPopulation int64   `yaml:"min_population" mapstructure:"min_population"`
}

// Config holds the level-of-detail policy. Band values are presentation
// tuning, not contract; the Selector normalizes them so the monotonicity
// guarantees hold regardless of what configuration supplies.
type Config struct {
	ProvinceMinZoom float64        `yaml:"province_min_zoom" mapstructure:"province_min_zoom"`
	CityMinZoom     float64        `yaml:"city_min_zoom" mapstructure:"city_min_zoom"`
	SimplifyBands   []SimplifyBand `yaml:"simplify_bands" mapstructure:"simplify_bands"`
	CityBands       []CityBand     `yaml:"city_bands" mapstructure:"city_bands"`
}

// DefaultConfig returns the band tuning used when configuration supplies
// none, matching a world map drawn at 1200px wide.
func DefaultConfig() Config {
	return Config{
		ProvinceMinZoom: 2.0,
		CityMinZoom:     3.0,
		SimplifyBands: []SimplifyBand{
			{MaxZoom: 0.5, Tolerance: 1.0},
			{MaxZoom: 1.0, Tolerance: 0.5},
			{MaxZoom: 2.0, Tolerance: 0.1},
			{MaxZoom: 4.0, Tolerance: 0.02},
		},
		CityBands: []CityBand{
			{MinZoom: 3.0, MinPopulation: 2_000_000},
			{MinZoom: 5.0, MinPopulation: 500_000},
			{MinZoom: 8.0, MinPopulation: 100_000},
			{MinZoom: 12.0, MinPopulation: 0},
		},
	}
}

// Selection is the level-of-detail decision for one zoom level.
type Selection struct {
	Layers            []geodata.Kind
	SimplifyTolerance float64
	MinCityPopulation int64
}

// HasLayer reports whether the given layer is eligible for rendering.
func (s Selection) HasLayer(k geodata.Kind) bool {
	for _, l := range s.Layers {
		if l == k {
			return true
		}
	}
	return false
}

// Selector is a pure zoom -> Selection function. Increasing zoom never
// removes a layer and never raises the city population threshold.
type Selector struct {
	cfg Config
}

// NewSelector normalizes cfg (bands sorted, thresholds forced monotonic)
// and returns a Selector.
func NewSelector(cfg Config) *Selector {
	if len(cfg.SimplifyBands) == 0 && len(cfg.CityBands) == 0 &&
		cfg.ProvinceMinZoom == 0 && cfg.CityMinZoom == 0 {
		cfg = DefaultConfig()
	}

	bands := append([]SimplifyBand(nil), cfg.SimplifyBands...)
	sort.Slice(bands, func(i, j int) bool { return bands[i].MaxZoom < bands[j].MaxZoom })
	// Finer detail as zoom increases: tolerance never grows with zoom.
	for i := len(bands) - 2; i >= 0; i-- {
		if bands[i].Tolerance < bands[i+1].Tolerance {
			bands[i].Tolerance = bands[i+1].Tolerance
		}
	}
	cfg.SimplifyBands = bands

	cities := append([]CityBand(nil), cfg.CityBands...)
	sort.Slice(cities, func(i, j int) bool { return cities[i].MinZoom < cities[j].MinZoom })
	for i := 1; i < len(cities); i++ {
		if cities[i].MinPopulation > cities[i-1].MinPopulation {
			cities[i].MinPopulation = cities[i-1].MinPopulation
		}
	}
	cfg.CityBands = cities

	return &Selector{cfg: cfg}
}

// Select returns the level-of-detail decision for the given zoom.
func (s *Selector) Select(zoom float64) Selection {
	sel := Selection{
		Layers:            []geodata.Kind{geodata.Country},
		SimplifyTolerance: 0,
		MinCityPopulation: math.MaxInt64,
	}
	if zoom >= s.cfg.ProvinceMinZoom {
		sel.Layers = append(sel.Layers, geodata.Province)
	}
	if zoom >= s.cfg.CityMinZoom {
		sel.Layers = append(sel.Layers, geodata.City)
	}
	for _, b := range s.cfg.SimplifyBands {
		if zoom < b.MaxZoom {
			sel.SimplifyTolerance = b.Tolerance
			break
		}
	}
	for _, b := range s.cfg.CityBands {
		if zoom >= b.MinZoom {
			sel.MinCityPopulation = b.MinPopulation
		}
	}
	return sel
}

// Tolerances returns the distinct nonzero tolerances of the normalized
// bands, for precomputing simplified geometry.
func (s *Selector) Tolerances() []float64 {
	seen := make(map[float64]bool)
	var out []float64
	for _, b := range s.cfg.SimplifyBands {
		if b.Tolerance > 0 && !seen[b.Tolerance] {
			seen[b.Tolerance] = true
			out = append(out, b.Tolerance)
		}
	}
	return out
}
