// Package geo holds geographic points and the affine projection that maps
// the simulation plane onto longitude/latitude.
package geo

import (
	"fmt"

	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/geometry"
)

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Lon float64 `json:"lon" yaml:"lon"`
	Lat float64 `json:"lat" yaml:"lat"`
}

func (p Point) String() string {
	return fmt.Sprintf("(lon %.4f, lat %.4f)", p.Lon, p.Lat)
}

// Projection maps domain coordinates to geographic ones:
//
//	lon = BaseLon + x/LonScale
//	lat = BaseLat + y/LatScale
type Projection struct {
	BaseLon  float64 `json:"baseLon" yaml:"baseLon"`
	BaseLat  float64 `json:"baseLat" yaml:"baseLat"`
	LonScale float64 `json:"lonScale" yaml:"lonScale"`
	LatScale float64 `json:"latScale" yaml:"latScale"`
}

// DefaultProjection places the 100x100 domain over West/Central Africa.
func DefaultProjection() Projection {
	return Projection{BaseLon: 3.0, BaseLat: 10.0, LonScale: 4.5, LatScale: 5}
}

// Validate rejects scales that would make the projection non-invertible.
func (p Projection) Validate() error {
	if p.LonScale == 0 || p.LatScale == 0 {
		return fmt.Errorf("projection scales must be non-zero (lonScale=%v, latScale=%v)", p.LonScale, p.LatScale)
	}
	return nil
}

// ToGeo projects a domain position to a geographic point.
func (p Projection) ToGeo(v geometry.Vector2D) Point {
	return Point{
		Lon: p.BaseLon + v.X/p.LonScale,
		Lat: p.BaseLat + v.Y/p.LatScale,
	}
}

// ToDomain is the inverse of ToGeo.
func (p Projection) ToDomain(g Point) geometry.Vector2D {
	return geometry.Vector2D{
		X: (g.Lon - p.BaseLon) * p.LonScale,
		Y: (g.Lat - p.BaseLat) * p.LatScale,
	}
}
