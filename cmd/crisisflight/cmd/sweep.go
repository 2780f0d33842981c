package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lao-tseu-is-alive/go-crisis-flight/internal/sweep"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the same scenario under consecutive seeds in parallel",
	Long: `Run one headless simulation per seed, starting at the config seed,
and print how each run ended. No frames or trajectories are written.`,
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().IntP("runs", "n", 8, "number of seeds to run")
	sweepCmd.Flags().IntP("workers", "w", runtime.NumCPU(), "concurrent runners")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cfg, err := loadSimulationConfig()
	if err != nil {
		return err
	}
	runs, _ := cmd.Flags().GetInt("runs")
	workers, _ := cmd.Flags().GetInt("workers")
	if runs < 1 {
		return fmt.Errorf("--runs must be > 0, got %d", runs)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := openLookups(log)
	if err != nil {
		return err
	}
	defer func() { _ = services.Close() }()

	seeds := make([]uint64, runs)
	for i := range seeds {
		seeds[i] = cfg.Seed + uint64(i)
	}
	results, err := sweep.New(cfg, services.countries, services.capitals, workers, log).Run(ctx, seeds)

	failed := color.New(color.FgRed)
	for _, r := range results {
		if r.Err != nil {
			_, _ = failed.Printf("seed %-6d failed: %v\n", r.Seed, r.Err)
			continue
		}
		fmt.Printf("seed %-6d %-10s ticks %-6d safe zones %-3d max move %.6f\n",
			r.Seed, r.Reason, r.Ticks, r.SafeZones, r.MaxDisplacement)
	}
	sum := sweep.Summarize(results)
	_, _ = color.New(color.FgCyan, color.Bold).Printf("%d runs: %d converged, %d failed, mean %.1f ticks\n",
		sum.Runs, sum.Converged, sum.Failed, sum.MeanTicks)
	return err
}
