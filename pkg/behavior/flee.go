package behavior

import (
	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/geometry"
)

// Softening is added to every distance before dividing, so a point sitting
// exactly on a zone center yields a finite (zero) force.
const Softening = 1e-3

// Settings controls the force constants for the simulation.
// Passing this into the force functions allows changing rules at runtime.
type Settings struct {
	RepulsionStrength  float64 // push away from crisis zones
	AttractionStrength float64 // pull toward the nearest safe zone
}

// Repulsion returns the push a crisis zone centered at center exerts on p:
//
//	(p - center)/(d + Softening) * strength/(d + Softening)
//
// The effective magnitude is strength*d/(d+Softening)^2, zero at the center
// and strictly decreasing with distance once d > Softening.
// Callers decide whether p is inside the zone radius.
func Repulsion(p, center geometry.Vector2D, strength float64) geometry.Vector2D {
	d := p.DistanceTo(center) + Softening
	return p.Sub(center).Mul(strength / (d * d))
}

// Attraction is the mirror of Repulsion, pointing from p toward center.
func Attraction(p, center geometry.Vector2D, strength float64) geometry.Vector2D {
	d := p.DistanceTo(center) + Softening
	return center.Sub(p).Mul(strength / (d * d))
}
