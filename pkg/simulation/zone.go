package simulation

import (
	"fmt"

	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/geometry"
)

// ZoneKind tells crisis zones (repel) from safe zones (attract).
type ZoneKind int

const (
	ZoneCrisis ZoneKind = iota
	ZoneSafe
)

func (k ZoneKind) String() string {
	switch k {
	case ZoneCrisis:
		return "crisis"
	case ZoneSafe:
		return "safe"
	default:
		return fmt.Sprintf("ZoneKind(%d)", int(k))
	}
}

// Zone is an immutable circular region of the domain.
type Zone struct {
	Center geometry.Vector2D `json:"center"`
	Radius float64           `json:"radius"`
	Kind   ZoneKind          `json:"kind"`
	// Label is informational only, e.g. the capital a safe zone stands for.
	Label string `json:"label,omitempty"`
}

// NewZone validates the radius and returns the zone.
func NewZone(center geometry.Vector2D, radius float64, kind ZoneKind) (Zone, error) {
	if radius <= 0 {
		return Zone{}, configErrorf("radius", "zone radius must be > 0, got %v", radius)
	}
	if !center.IsFinite() {
		return Zone{}, configErrorf("center", "zone center must be finite, got %v", center)
	}
	return Zone{Center: center, Radius: radius, Kind: kind}, nil
}

// Contains reports whether p lies inside or on the boundary.
func (z Zone) Contains(p geometry.Vector2D) bool {
	return z.Center.DistanceTo(p) <= z.Radius
}

// DistanceTo returns the Euclidean distance from p to the zone center.
func (z Zone) DistanceTo(p geometry.Vector2D) float64 {
	return z.Center.DistanceTo(p)
}

func (z Zone) String() string {
	if z.Label != "" {
		return fmt.Sprintf("%s zone %q at %v r=%.2f", z.Kind, z.Label, z.Center, z.Radius)
	}
	return fmt.Sprintf("%s zone at %v r=%.2f", z.Kind, z.Center, z.Radius)
}
