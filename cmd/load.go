package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meridian-maps/worldview/internal/geocache"
	"github.com/meridian-maps/worldview/internal/geodata"
	"github.com/meridian-maps/worldview/internal/loader"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Parse Natural Earth shapefiles into the feature cache",
	Long:  "Reads the configured country, province and city shapefiles, validates the geometry, and rebuilds the SQLite feature cache.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("load"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		raw, err := loader.LoadAll(loader.Paths{
			Countries: cfg.Data.CountriesPath,
			Provinces: cfg.Data.ProvincesPath,
			Cities:    cfg.Data.CitiesPath,
		})
		if err != nil {
			return err
		}

		// Validate before touching the cache: a store either loads
		// completely or the old cache stays intact.
		store, err := geodata.Load(raw)
		if err != nil {
			return err
		}

		cache, err := geocache.Open(cfg.Data.CachePath)
		if err != nil {
			return err
		}
		defer cache.Close()

		if err := cache.Migrate(ctx); err != nil {
			return err
		}
		if err := cache.Replace(ctx, raw); err != nil {
			return err
		}

		zap.L().Info("feature cache rebuilt",
			zap.String("path", cfg.Data.CachePath),
			zap.Int("countries", store.Len(geodata.Country)),
			zap.Int("provinces", store.Len(geodata.Province)),
			zap.Int("cities", store.Len(geodata.City)),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
