package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/meridian-maps/worldview/internal/geodata"
	"github.com/meridian-maps/worldview/internal/selection"
)

var (
	queryLon float64
	queryLat float64
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Resolve a world point to its containing features",
	Long:  "Looks up which country and provinces contain the given lon/lat, the CLI analogue of a selection click.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("query"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if queryLon < -180 || queryLon > 180 || queryLat < -90 || queryLat > 90 {
			return eris.Errorf("point (%.4f, %.4f) outside world bounds", queryLon, queryLat)
		}

		world, err := buildWorld(ctx)
		if err != nil {
			return err
		}

		point := orb.Point{queryLon, queryLat}
		p := message.NewPrinter(language.English)
		fmt.Printf("Point (%.4f, %.4f)\n", queryLon, queryLat)

		found := false
		for _, kind := range []geodata.Kind{geodata.Country, geodata.Province} {
			for _, id := range world.Index(kind).QueryPoint(point) {
				f, err := world.Store().ByID(kind, id)
				if err != nil {
					continue
				}
				if !selection.Contains(f.Geometry, point) {
					continue
				}
				found = true
				if f.Attr.Population > 0 {
					p.Printf("  %-10s %s (%s), population %d\n", kind, f.Attr.Name, f.ID, f.Attr.Population)
				} else {
					fmt.Printf("  %-10s %s (%s)\n", kind, f.Attr.Name, f.ID)
				}
				break // smallest containing feature per layer
			}
		}
		if !found {
			fmt.Println("  no containing feature (ocean?)")
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().Float64Var(&queryLon, "lon", 0, "longitude in degrees")
	queryCmd.Flags().Float64Var(&queryLat, "lat", 0, "latitude in degrees")
	_ = queryCmd.MarkFlagRequired("lon")
	_ = queryCmd.MarkFlagRequired("lat")
	rootCmd.AddCommand(queryCmd)
}
