package main

import (
	"context"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"

	"github.com/meridian-maps/worldview/internal/engine"
	"github.com/meridian-maps/worldview/internal/geocache"
	"github.com/meridian-maps/worldview/internal/geodata"
	"github.com/meridian-maps/worldview/internal/viewport"
)

// buildWorld loads features from the cache and assembles the shared
// immutable world. Run `worldview load` first to populate the cache.
func buildWorld(ctx context.Context) (*engine.World, error) {
	cache, err := geocache.Open(cfg.Data.CachePath)
	if err != nil {
		return nil, err
	}
	defer cache.Close()

	if err := cache.Migrate(ctx); err != nil {
		return nil, err
	}
	raw, err := cache.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, eris.Errorf("feature cache %s is empty, run `worldview load` first", cfg.Data.CachePath)
	}
	store, err := geodata.Load(raw)
	if err != nil {
		return nil, err
	}
	return engine.NewWorld(store, cfg.LOD), nil
}

func engineOptions() engine.Options {
	return engine.Options{
		Viewport: viewport.Options{
			ZoomMin:      cfg.Viewport.ZoomMin,
			ZoomMax:      cfg.Viewport.ZoomMax,
			StepFactor:   cfg.Viewport.ZoomStepFactor,
			MarginPx:     cfg.Viewport.CullingMarginPx,
			ClampToWorld: cfg.Viewport.ClampToWorld,
		},
		ClearOnEmptyClick: cfg.Selection.ClearOnEmptyClick,
	}
}

func initialViewport() viewport.State {
	return viewport.State{
		Center: orb.Point{0, 0},
		Zoom:   1.0,
		Width:  cfg.Viewport.ScreenWidth,
		Height: cfg.Viewport.ScreenHeight,
	}
}
