package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/lao-tseu-is-alive/go-crisis-flight/internal/render"
	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/scenario"
	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/simulation"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation headless and export its outputs",
	Long: `Run a simulation until every agent moves less than the stop threshold
or the tick limit is reached. Frames go to an animated GIF (and optionally an
MJPEG AVI), every tick goes to a zstd compressed trajectory log and the
displacement history is plotted to a PNG chart.`,
	RunE: runSimulation,
}

func init() {
	f := runCmd.Flags()
	f.StringP("out", "o", "out", "output directory; one sub directory per run")
	f.Int("frame-size", 800, "side of the exported frames in pixels")
	f.Bool("avi", false, "also write an MJPEG AVI")
	f.Bool("no-gif", false, "skip the animated GIF")
	f.Bool("no-trajectory", false, "skip the trajectory log")
	f.Bool("no-map", false, "do not draw the country map under the frames")
	f.Int("max-ticks", 0, "override maxTicks from the config")
	f.Uint64("seed", 0, "override seed from the config")
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cfg, err := loadSimulationConfig()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("max-ticks") {
		cfg.MaxTicks, _ = flags.GetInt("max-ticks")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetUint64("seed")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	runID := uuid.New()
	outRoot, _ := flags.GetString("out")
	outDir := filepath.Join(outRoot, runID.String())
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	log = log.With("run", runID.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			log.Warn("received interrupt signal, stopping simulation")
			cancel()
		case <-ctx.Done():
		}
	}()

	services, err := openLookups(log)
	if err != nil {
		return err
	}
	defer func() { _ = services.Close() }()

	frameSize, _ := flags.GetInt("frame-size")
	var recorders []render.FrameRecorder
	if noGIF, _ := flags.GetBool("no-gif"); !noGIF {
		rec, err := render.NewGIFRecorder(filepath.Join(outDir, "simulation.gif"), cfg.FrameRate, cfg.GIFMaxFrames)
		if err != nil {
			return err
		}
		recorders = append(recorders, rec)
	}
	if avi, _ := flags.GetBool("avi"); avi {
		rec, err := render.NewMJPEGRecorder(filepath.Join(outDir, "simulation.avi"), frameSize, cfg.FrameRate)
		if err != nil {
			return err
		}
		recorders = append(recorders, rec)
	}
	raster := render.NewRasterizer(frameSize)
	if noMap, _ := flags.GetBool("no-map"); !noMap {
		raster.SetBasemap(services.basemap(cfg))
	}
	pipeline := render.NewPipeline(raster, cfg.FrameEvery, log, recorders...)
	chart := &render.ConvergenceChart{Threshold: cfg.StopThreshold}

	opts := []simulation.Option{simulation.WithObserver(pipeline), simulation.WithObserver(chart)}
	var trajectory *render.TrajectoryWriter
	if noTraj, _ := flags.GetBool("no-trajectory"); !noTraj {
		trajectory, err = render.NewTrajectoryWriter(filepath.Join(outDir, "trajectory.jsonl.zst"))
		if err != nil {
			_ = pipeline.Close()
			return err
		}
		opts = append(opts, simulation.WithObserver(trajectory))
	}

	started := time.Now()
	world, err := scenario.Build(ctx, cfg, services.countries, services.capitals, log, opts...)
	if err != nil {
		_ = closeOutputs(pipeline, trajectory)
		return fmt.Errorf("building scenario: %w", err)
	}

	res, runErr := world.Run(ctx, cfg.MaxTicks)
	closeErr := closeOutputs(pipeline, trajectory)
	if err := chart.WritePNG(filepath.Join(outDir, "convergence.png"), 900, 500); err != nil && !errors.Is(err, render.ErrNotEnoughData) {
		closeErr = multierr.Append(closeErr, err)
	}

	printSummary(runID, outDir, world, res, pipeline.Frames(), time.Since(started))
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return closeErr
}

func closeOutputs(pipeline *render.Pipeline, trajectory *render.TrajectoryWriter) error {
	err := pipeline.Close()
	if trajectory != nil {
		err = multierr.Append(err, trajectory.Close())
	}
	return err
}

func printSummary(runID uuid.UUID, outDir string, world *simulation.World, res simulation.RunResult, frames int, elapsed time.Duration) {
	header := color.New(color.FgCyan, color.Bold)
	outcome := color.New(color.FgGreen)
	if res.Reason != simulation.StopConverged {
		outcome = color.New(color.FgYellow)
	}
	_, _ = header.Printf("Run %s\n", runID)
	_, _ = outcome.Printf("  stopped: %s after %d ticks (%s)\n", res.Reason, res.Ticks, elapsed.Round(time.Millisecond))
	fmt.Printf("  last max move: %.6f  mean move: %.6f\n", res.Last.MaxDisplacement, res.Last.MeanDisplacement)
	fmt.Printf("  agents: %d  safe zones: %d  frames: %d\n", len(world.Agents()), len(world.SafeZones()), frames)
	fmt.Printf("  outputs: %s\n", outDir)
}
