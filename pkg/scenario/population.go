package scenario

import (
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/simulation"
)

// ClassSplit returns how many agents of each speed class a population of n gets:
// 50% fast and 35% medium (both truncated), the remainder slow.
func ClassSplit(n int) (fast, medium, slow int) {
	fast = n * 50 / 100
	medium = n * 35 / 100
	slow = n - fast - medium
	return fast, medium, slow
}

// Populate spawns n agents around the crisis zones. Each agent picks a zone
// uniformly, an angle in [0, 2π) and a radius in [0, zone radius), so spawns
// cluster toward the centers. Positions are clamped into [0, gridSize].
func Populate(n int, crisis []simulation.Zone, gridSize float64, rng *rand.Rand) ([]simulation.Agent, error) {
	if n <= 0 {
		return nil, &simulation.ConfigurationError{Field: "populationSize", Reason: "must be > 0"}
	}
	if len(crisis) == 0 {
		return nil, &simulation.ConfigurationError{Field: "crisisZones", Reason: "at least one crisis zone is required to spawn agents"}
	}

	fast, medium, _ := ClassSplit(n)
	agents := make([]simulation.Agent, n)
	for i := range agents {
		class := simulation.SpeedSlow
		switch {
		case i < fast:
			class = simulation.SpeedFast
		case i < fast+medium:
			class = simulation.SpeedMedium
		}

		zone := crisis[rng.IntN(len(crisis))]
		angle := rng.Float64() * 2 * math.Pi
		dist := rng.Float64() * zone.Radius
		pos := zone.Center.Add(geometry.NewVectorPolar(dist, angle)).Clamp(0, gridSize)

		agents[i] = simulation.Agent{ID: i, Position: pos, Class: class}
	}
	return agents, nil
}
