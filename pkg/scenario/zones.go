// Package scenario builds the initial state of a run: crisis zones, the safe
// zones derived from neighboring capitals, and the fleeing population.
package scenario

import (
	"context"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/geo"
	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/simulation"
)

// CountryResolver finds the country containing a geographic point and its
// land neighbors. An empty country name with a nil error means "no country".
type CountryResolver interface {
	Locate(ctx context.Context, p geo.Point) (country string, neighbors []string, err error)
}

// CapitalLookup returns the coordinates of a country's capital.
type CapitalLookup interface {
	CapitalOf(ctx context.Context, country string) (geo.Point, error)
}

// ZoneGenerator places crisis zones and derives safe zones from the capitals
// of the neighbors of the country each crisis falls into.
type ZoneGenerator struct {
	cfg       *simulation.Config
	countries CountryResolver
	capitals  CapitalLookup
	rng       *rand.Rand
	log       *zap.SugaredLogger
}

// NewZoneGenerator wires the generator to its lookups. log may be nil.
func NewZoneGenerator(cfg *simulation.Config, countries CountryResolver, capitals CapitalLookup, rng *rand.Rand, log *zap.SugaredLogger) *ZoneGenerator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ZoneGenerator{cfg: cfg, countries: countries, capitals: capitals, rng: rng, log: log}
}

// Generate returns the crisis zones and the safe zones of a new scenario.
// Lookup failures are logged and skipped; ending up with no safe zone at all
// is reported as simulation.ErrNoSafeZones.
func (g *ZoneGenerator) Generate(ctx context.Context) (crisis, safe []simulation.Zone, err error) {
	crisis, err = g.CrisisZones()
	if err != nil {
		return nil, nil, err
	}

	g.log.Info("Crisis Centers:")
	seen := make(map[string]bool)
	for _, z := range crisis {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		for _, s := range g.safeZonesFor(ctx, z) {
			if seen[s.Label] {
				g.log.Debugf("capital of %s already used as a safe zone", s.Label)
				continue
			}
			seen[s.Label] = true
			safe = append(safe, s)
		}
	}

	if len(safe) == 0 {
		return crisis, nil, simulation.ErrNoSafeZones
	}
	return crisis, safe, nil
}

// CrisisZones draws one crisis center uniformly inside each configured range.
func (g *ZoneGenerator) CrisisZones() ([]simulation.Zone, error) {
	zones := make([]simulation.Zone, 0, len(g.cfg.CrisisRanges))
	for _, r := range g.cfg.CrisisRanges {
		center := geometry.Vector2D{
			X: r.MinX + g.rng.Float64()*(r.MaxX-r.MinX),
			Y: r.MinY + g.rng.Float64()*(r.MaxY-r.MinY),
		}
		z, err := simulation.NewZone(center, g.cfg.CrisisRadius, simulation.ZoneCrisis)
		if err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, nil
}

func (g *ZoneGenerator) safeZonesFor(ctx context.Context, crisis simulation.Zone) []simulation.Zone {
	point := g.cfg.Projection.ToGeo(crisis.Center)
	country, neighbors, err := g.countries.Locate(ctx, point)
	if err != nil {
		g.log.Warnf("country lookup failed for crisis at %v %v: %v", crisis.Center, point, err)
		return nil
	}
	if country == "" {
		g.log.Infof("No country found for crisis center %v %v", crisis.Center, point)
		return nil
	}
	g.log.Infof("Country for Crisis Center: %s", country)
	g.log.Infof("Neighbors: %v", neighbors)

	var zones []simulation.Zone
	for _, neighbor := range g.pickNeighbors(neighbors) {
		capital, err := g.capitals.CapitalOf(ctx, neighbor)
		if err != nil {
			g.log.Infof("No capital found for %s: %v", neighbor, err)
			continue
		}
		z, err := simulation.NewZone(g.cfg.Projection.ToDomain(capital), g.cfg.SafeRadius, simulation.ZoneSafe)
		if err != nil {
			g.log.Warnf("capital of %s gives an unusable safe zone: %v", neighbor, err)
			continue
		}
		z.Label = neighbor
		g.log.Infof("Safe Center in Neighbor %s at Capital: %v (domain %v)", neighbor, capital, z.Center)
		zones = append(zones, z)
	}
	return zones
}

// pickNeighbors selects k in [MinNeighbors, MaxNeighbors] neighbors without
// replacement, or all of them when fewer are available.
func (g *ZoneGenerator) pickNeighbors(neighbors []string) []string {
	if len(neighbors) == 0 {
		return nil
	}
	k := g.cfg.MinNeighbors + g.rng.IntN(g.cfg.MaxNeighbors-g.cfg.MinNeighbors+1)
	k = min(k, len(neighbors))
	picked := make([]string, 0, k)
	for _, i := range g.rng.Perm(len(neighbors))[:k] {
		picked = append(picked, neighbors[i])
	}
	return picked
}
