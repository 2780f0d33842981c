// Package sweep runs one scenario under many seeds in parallel. Each worker is
// an actor; seeds are queued in its mailbox and processed one at a time.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/scenario"
	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/simulation"
)

// Result is the outcome of one seeded run.
type Result struct {
	Seed            uint64
	Ticks           int
	Reason          simulation.StopReason
	MaxDisplacement float64
	SafeZones       int
	Err             error
}

// Summary aggregates a sweep.
type Summary struct {
	Runs      int
	Converged int
	Failed    int
	MeanTicks float64 // over runs that did not fail
}

// Sweep holds what every run shares. The lookups must be safe for concurrent use.
type Sweep struct {
	cfg       *simulation.Config
	countries scenario.CountryResolver
	capitals  scenario.CapitalLookup
	workers   int
	log       *zap.SugaredLogger
}

func New(cfg *simulation.Config, countries scenario.CountryResolver, capitals scenario.CapitalLookup, workers int, log *zap.SugaredLogger) *Sweep {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Sweep{cfg: cfg, countries: countries, capitals: capitals, workers: workers, log: log}
}

// Run executes one simulation per seed and returns the results sorted by seed.
// Failed runs are reported in Result.Err; the returned error is only set when
// the actor system itself fails or ctx ends before every run reported back.
func (s *Sweep) Run(ctx context.Context, seeds []uint64) ([]Result, error) {
	if len(seeds) == 0 {
		return nil, nil
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	system, err := actor.NewActorSystem("CrisisSweep",
		actor.WithLogger(golog.DiscardLogger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		return nil, fmt.Errorf("create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return nil, fmt.Errorf("start actor system: %w", err)
	}
	defer func() {
		if err := system.Stop(context.Background()); err != nil {
			s.log.Warnf("stopping actor system: %v", err)
		}
	}()

	results := make(chan Result, len(seeds))
	workers := min(s.workers, len(seeds))
	pids := make([]*actor.PID, 0, workers)
	for i := 0; i < workers; i++ {
		pid, err := system.Spawn(ctx, fmt.Sprintf("run-%d", i), newRunner(ctx, s, results))
		if err != nil {
			return nil, fmt.Errorf("spawn runner %d: %w", i, err)
		}
		pids = append(pids, pid)
	}
	s.log.Infof("sweeping %d seeds over %d runners", len(seeds), workers)

	for i, seed := range seeds {
		if err := system.NoSender().Tell(ctx, pids[i%workers], seedMessage(seed)); err != nil {
			return nil, fmt.Errorf("dispatch seed %d: %w", seed, err)
		}
	}

	out := make([]Result, 0, len(seeds))
	for len(out) < len(seeds) {
		select {
		case r := <-results:
			out = append(out, r)
		case <-ctx.Done():
			sortBySeed(out)
			return out, ctx.Err()
		}
	}
	sortBySeed(out)
	return out, nil
}

func sortBySeed(rs []Result) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].Seed < rs[j].Seed })
}

// Summarize folds results into counts and the mean tick count.
func Summarize(rs []Result) Summary {
	var sum Summary
	ticks := 0
	for _, r := range rs {
		sum.Runs++
		switch {
		case r.Err != nil:
			sum.Failed++
			continue
		case r.Reason == simulation.StopConverged:
			sum.Converged++
		}
		ticks += r.Ticks
	}
	if ok := sum.Runs - sum.Failed; ok > 0 {
		sum.MeanTicks = float64(ticks) / float64(ok)
	}
	return sum
}

// runOne builds and runs a world for one seed. It is what every runner does
// with each seed it receives.
func (s *Sweep) runOne(ctx context.Context, seed uint64) Result {
	cfg := *s.cfg
	cfg.CrisisRanges = append([]simulation.Range(nil), s.cfg.CrisisRanges...)
	cfg.Seed = seed

	r := Result{Seed: seed}
	world, err := scenario.Build(ctx, &cfg, s.countries, s.capitals, s.log.With("seed", seed))
	if err != nil {
		r.Err = err
		return r
	}
	r.SafeZones = len(world.SafeZones())
	res, err := world.Run(ctx, cfg.MaxTicks)
	if err != nil && !errors.Is(err, context.Canceled) {
		r.Err = err
	}
	r.Ticks, r.Reason, r.MaxDisplacement = res.Ticks, res.Reason, res.Last.MaxDisplacement
	return r
}
