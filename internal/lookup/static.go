package lookup

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"

	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/geo"
)

// StaticCapitals is a fixed country -> capital table, typically loaded from YAML:
//
//	Niger: {lon: 2.11, lat: 13.51}
//	Benin: {lon: 2.60, lat: 6.50}
type StaticCapitals map[string]geo.Point

// LoadStaticCapitals reads a YAML capital table.
func LoadStaticCapitals(path string) (StaticCapitals, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read capitals file: %w", err)
	}
	var table StaticCapitals
	if err := yaml.Unmarshal(b, &table); err != nil {
		return nil, fmt.Errorf("parse capitals yaml: %w", err)
	}
	return table, nil
}

func (s StaticCapitals) CapitalOf(_ context.Context, country string) (geo.Point, error) {
	p, ok := s[country]
	if !ok {
		return geo.Point{}, fmt.Errorf("capital of %s: %w", country, ErrUnknownCountry)
	}
	return p, nil
}

// StaticCountry is one entry of a StaticResolver.
type StaticCountry struct {
	Name      string   `yaml:"name"`
	MinLon    float64  `yaml:"minLon"`
	MinLat    float64  `yaml:"minLat"`
	MaxLon    float64  `yaml:"maxLon"`
	MaxLat    float64  `yaml:"maxLat"`
	Neighbors []string `yaml:"neighbors"`
}

func (c StaticCountry) bound() orb.Bound {
	return orb.Bound{Min: orb.Point{c.MinLon, c.MinLat}, Max: orb.Point{c.MaxLon, c.MaxLat}}
}

// StaticResolver locates points in bounding boxes with hand-written neighbor
// lists. It stands in for a GeoJSON file in offline runs and tests.
type StaticResolver []StaticCountry

func (s StaticResolver) Locate(ctx context.Context, p geo.Point) (string, []string, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	pt := orb.Point{p.Lon, p.Lat}
	for _, c := range s {
		if c.bound().Contains(pt) {
			n := append([]string(nil), c.Neighbors...)
			sort.Strings(n)
			return c.Name, n, nil
		}
	}
	return "", nil, nil
}

// Land returns each bounding box as a rectangle.
func (s StaticResolver) Land() orb.MultiPolygon {
	land := make(orb.MultiPolygon, 0, len(s))
	for _, c := range s {
		land = append(land, c.bound().ToPolygon())
	}
	return land
}

// LoadStaticResolver reads a YAML list of StaticCountry entries.
func LoadStaticResolver(path string) (StaticResolver, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read countries file: %w", err)
	}
	var list StaticResolver
	if err := yaml.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("parse countries yaml: %w", err)
	}
	for i, c := range list {
		if c.Name == "" || c.MinLon > c.MaxLon || c.MinLat > c.MaxLat {
			return nil, fmt.Errorf("countries entry %d (%q): empty name or inverted bounds", i, c.Name)
		}
	}
	return list, nil
}
