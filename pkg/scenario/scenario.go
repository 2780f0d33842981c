package scenario

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/simulation"
)

// Build generates zones and population from cfg and returns a world ready to run.
// A single random source drives zone placement, neighbor picks, spawning and
// integration noise, so equal seeds and equal lookup answers give equal runs.
func Build(ctx context.Context, cfg *simulation.Config, countries CountryResolver, capitals CapitalLookup, log *zap.SugaredLogger, opts ...simulation.Option) (*simulation.World, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := simulation.NewRand(cfg.Seed)

	gen := NewZoneGenerator(cfg, countries, capitals, rng, log)
	crisis, safe, err := gen.Generate(ctx)
	if err != nil {
		return nil, fmt.Errorf("generating zones: %w", err)
	}

	agents, err := Populate(cfg.PopulationSize, crisis, cfg.GridSize, rng)
	if err != nil {
		return nil, fmt.Errorf("spawning population: %w", err)
	}
	fast, medium, slow := ClassSplit(cfg.PopulationSize)
	log.Infof("spawned %d agents (%d fast, %d medium, %d slow)", len(agents), fast, medium, slow)

	world, err := simulation.NewWorld(cfg, rng, append([]simulation.Option{simulation.WithLogger(log)}, opts...)...)
	if err != nil {
		return nil, err
	}
	if err := world.SetZones(crisis, safe); err != nil {
		return nil, err
	}
	world.SetAgents(agents)
	return world, nil
}
