package simulation

import (
	"fmt"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/geometry"
)

// SpeedClass groups agents by how much of the computed force they apply per tick.
type SpeedClass int

const (
	SpeedFast SpeedClass = iota
	SpeedMedium
	SpeedSlow
)

// Factor returns the per-tick multiplier of the class.
func (c SpeedClass) Factor() float64 {
	switch c {
	case SpeedFast:
		return 1.0
	case SpeedMedium:
		return 0.6
	default:
		return 0.3
	}
}

func (c SpeedClass) String() string {
	switch c {
	case SpeedFast:
		return "fast"
	case SpeedMedium:
		return "medium"
	case SpeedSlow:
		return "slow"
	default:
		return fmt.Sprintf("SpeedClass(%d)", int(c))
	}
}

// Agent is one member of the fleeing population.
type Agent struct {
	ID       int
	Position geometry.Vector2D
	Class    SpeedClass
}

// SpeedFactor is derived from the agent's class.
func (a *Agent) SpeedFactor() float64 {
	return a.Class.Factor()
}

// ComputeForce returns the net force acting on the agent at its current position.
func (a *Agent) ComputeForce(crisis, safe []Zone, s behavior.Settings) (geometry.Vector2D, error) {
	return ComputeForce(a.Position, crisis, safe, s)
}

// ComputeForce sums the repulsion of every crisis zone whose radius strictly
// contains position, plus the attraction of the nearest safe zone.
// Ties between equidistant safe zones go to the first one in the slice.
// The result is not capped.
func ComputeForce(position geometry.Vector2D, crisis, safe []Zone, s behavior.Settings) (geometry.Vector2D, error) {
	if len(safe) == 0 {
		return geometry.Vector2D{}, ErrNoSafeZones
	}

	var force geometry.Vector2D
	for _, z := range crisis {
		if z.DistanceTo(position) < z.Radius {
			force = force.Add(behavior.Repulsion(position, z.Center, s.RepulsionStrength))
		}
	}

	nearest := 0
	best := safe[0].DistanceTo(position)
	for i := 1; i < len(safe); i++ {
		if d := safe[i].DistanceTo(position); d < best {
			best = d
			nearest = i
		}
	}
	force = force.Add(behavior.Attraction(position, safe[nearest].Center, s.AttractionStrength))

	return force, nil
}

// Integrate moves the agent by (force + noise) * speedFactor, clamps the new
// position into [0, domainSize] on each axis and returns the distance actually
// travelled. Noise is Gaussian with standard deviation noiseStrength per axis;
// no random numbers are drawn when noiseStrength is zero.
func (a *Agent) Integrate(force geometry.Vector2D, noiseStrength, domainSize float64, rng *rand.Rand) float64 {
	step := force
	if noiseStrength > 0 {
		step = step.Add(geometry.Vector2D{
			X: rng.NormFloat64() * noiseStrength,
			Y: rng.NormFloat64() * noiseStrength,
		})
	}

	old := a.Position
	a.Position = old.Add(step.Mul(a.SpeedFactor())).Clamp(0, domainSize)
	return old.DistanceTo(a.Position)
}
