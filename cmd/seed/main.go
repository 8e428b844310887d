package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"reachmesh-bknd/internal/cache"
	"reachmesh-bknd/internal/config"
	"reachmesh-bknd/internal/database"
	"reachmesh-bknd/internal/geo"
	"reachmesh-bknd/internal/logger"
	"reachmesh-bknd/internal/seed"
	"reachmesh-bknd/internal/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	count   int
	lat     float64 = 5.6037
	lon     float64 = -0.1870
	timeout         = 2 * time.Minute
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the reachmesh database with development data",
}

var listingsCmd = &cobra.Command{
	Use:   "listings",
	Short: "Insert fake businesses and professionals around a center point",
	Long: `Inserts listings scattered at distances that cover every feed mode
(local, regional, national, international, global) around --lat/--lon.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSeeder(func(ctx context.Context, s *seed.Seeder) error {
			sum, err := s.SeedListings(ctx, geo.Point{Lat: lat, Lon: lon}, count)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(sum)
		})
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove listings created by the seeder",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSeeder(func(ctx context.Context, s *seed.Seeder) error {
			n, err := s.Clean(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d listings\n", n)
			return nil
		})
	},
}

func withSeeder(fn func(context.Context, *seed.Seeder) error) error {
	cfg := config.Load()
	logr := logger.New(cfg)
	defer logr.Sync()

	db, err := database.New(cfg.DatabaseURL, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := database.EnsureSchema(ctx, db); err != nil {
		return err
	}

	// new types must not be hidden behind a stale catalog cache
	rdb := cache.NewRedisClient(cfg)
	defer rdb.Close()
	c := cache.New(rdb, "reachmesh", cfg.CacheTTL)
	if err := c.Ping(ctx); err != nil {
		logr.Warn("redis unavailable, catalog cache not invalidated", zap.Error(err))
		c = nil
	}

	s := seed.NewSeeder(db, services.NewCatalogService(db, c), logr.Logger)
	return fn(ctx, s)
}

func init() {
	listingsCmd.Flags().IntVar(&count, "count", 50, "Number of listings to insert")
	listingsCmd.Flags().Float64Var(&lat, "lat", lat, "Center latitude")
	listingsCmd.Flags().Float64Var(&lon, "lon", lon, "Center longitude")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", timeout, "Overall timeout")

	rootCmd.AddCommand(listingsCmd)
	rootCmd.AddCommand(cleanCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
