// Package lookup answers the two geographic questions the scenario needs:
// which country contains a point (and who its neighbors are), and where a
// country's capital lies.
package lookup

import (
	"errors"

	"github.com/paulmach/orb"
)

var (
	// ErrNoCapital is returned when a country is known but has no capital coordinates.
	ErrNoCapital = errors.New("no capital found")
	// ErrUnknownCountry is returned for names a source does not know at all.
	ErrUnknownCountry = errors.New("unknown country")
)

// LandSource is implemented by resolvers that can hand out their country
// outlines, in lon/lat, for drawing a map.
type LandSource interface {
	Land() orb.MultiPolygon
}
