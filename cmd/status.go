package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/meridian-maps/worldview/internal/geocache"
	"github.com/meridian-maps/worldview/internal/geodata"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show feature cache statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("status"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cache, err := geocache.Open(cfg.Data.CachePath)
		if err != nil {
			return err
		}
		defer cache.Close()

		if err := cache.Migrate(ctx); err != nil {
			return err
		}
		counts, err := cache.Counts(ctx)
		if err != nil {
			return err
		}

		p := message.NewPrinter(language.English)
		fmt.Printf("Feature cache: %s\n", cfg.Data.CachePath)
		total := 0
		for _, kind := range geodata.Kinds() {
			p.Printf("  %-10s %d\n", kind, counts[kind])
			total += counts[kind]
		}
		p.Printf("  %-10s %d\n", "total", total)
		if total == 0 {
			fmt.Println("Cache is empty, run `worldview load` first.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
