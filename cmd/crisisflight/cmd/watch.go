package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lao-tseu-is-alive/go-crisis-flight/internal/viewer"
	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/scenario"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run a simulation in a window",
	Long: `Open a window showing the simulation live. The side panel adjusts
repulsion, attraction and noise while the run is going.`,
	RunE: watchSimulation,
}

func init() {
	watchCmd.Flags().Int("size", 800, "side of the simulation view in pixels")
	watchCmd.Flags().Int("tps", 30, "ticks per second")
	watchCmd.Flags().Bool("no-map", false, "do not draw the country map")
}

func watchSimulation(cmd *cobra.Command, _ []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cfg, err := loadSimulationConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := openLookups(log)
	if err != nil {
		return err
	}
	defer func() { _ = services.Close() }()

	world, err := scenario.Build(ctx, cfg, services.countries, services.capitals, log)
	if err != nil {
		return fmt.Errorf("building scenario: %w", err)
	}

	size, _ := cmd.Flags().GetInt("size")
	tps, _ := cmd.Flags().GetInt("tps")
	game := viewer.NewGame(ctx, world, cfg.MaxTicks, size, log)
	if noMap, _ := cmd.Flags().GetBool("no-map"); !noMap {
		game.SetBasemap(services.basemap(cfg))
	}
	return viewer.Run(game, tps)
}
