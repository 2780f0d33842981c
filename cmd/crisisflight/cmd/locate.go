package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lao-tseu-is-alive/go-crisis-flight/internal/lookup"
	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/geo"
	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/geometry"
)

var locateCmd = &cobra.Command{
	Use:   "locate <lon> <lat>",
	Short: "Show the country, neighbors and neighbor capitals of a point",
	Long: `Resolve a geographic point the same way crisis centers are resolved
during zone generation. With --domain the two arguments are simulation
coordinates and are projected first.`,
	Args: cobra.ExactArgs(2),
	RunE: locatePoint,
}

func init() {
	locateCmd.Flags().Bool("domain", false, "arguments are domain x y instead of lon lat")
}

func locatePoint(cmd *cobra.Command, args []string) error {
	a, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("first coordinate: %w", err)
	}
	b, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("second coordinate: %w", err)
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	cfg, err := loadSimulationConfig()
	if err != nil {
		return err
	}

	point := geo.Point{Lon: a, Lat: b}
	if domain, _ := cmd.Flags().GetBool("domain"); domain {
		point = cfg.Projection.ToGeo(geometry.NewVector(a, b))
	}

	services, err := openLookups(log)
	if err != nil {
		return err
	}
	defer func() { _ = services.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	country, neighbors, err := services.countries.Locate(ctx, point)
	if err != nil {
		return err
	}
	bold := color.New(color.Bold)
	if country == "" {
		_, _ = color.New(color.FgYellow).Printf("%v is not inside any known country\n", point)
		return nil
	}
	_, _ = bold.Printf("%v is in %s (domain %v)\n", point, country, cfg.Projection.ToDomain(point))
	for _, n := range neighbors {
		capital, err := services.capitals.CapitalOf(ctx, n)
		switch {
		case err == nil:
			fmt.Printf("  %-28s capital %v  domain %v\n", n, capital, cfg.Projection.ToDomain(capital))
		case errors.Is(err, lookup.ErrUnknownCountry):
			_, _ = color.New(color.FgYellow).Printf("  %-28s unknown to the capital source\n", n)
		case errors.Is(err, lookup.ErrNoCapital):
			_, _ = color.New(color.FgYellow).Printf("  %-28s no capital known\n", n)
		default:
			return err
		}
	}
	return nil
}
