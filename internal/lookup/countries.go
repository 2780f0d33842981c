package lookup

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/geo"
)

// DefaultNameProperties are tried in order to read a country's name from a
// feature. Natural Earth files carry it in ADMIN.
var DefaultNameProperties = []string{"ADMIN", "admin", "NAME", "name"}

// vertexQuantum snaps shared border vertices together when detecting neighbors.
const vertexQuantum = 1e-6

type country struct {
	name  string
	shape orb.MultiPolygon
	bound orb.Bound
}

type vertexKey struct{ lon, lat int64 }

// GeoJSONResolver locates points in country polygons loaded from a GeoJSON
// FeatureCollection. Two countries are neighbors when their borders share a vertex.
type GeoJSONResolver struct {
	countries []country
	neighbors map[string][]string
}

// LoadGeoJSONResolver reads a FeatureCollection from disk.
func LoadGeoJSONResolver(path string) (*GeoJSONResolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read countries file: %w", err)
	}
	return NewGeoJSONResolver(data)
}

// NewGeoJSONResolver parses a FeatureCollection. Features without a polygon
// geometry or a readable name are ignored.
func NewGeoJSONResolver(data []byte) (*GeoJSONResolver, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse countries geojson: %w", err)
	}

	r := &GeoJSONResolver{neighbors: make(map[string][]string)}
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		name := featureName(f)
		if name == "" {
			continue
		}
		var polys [][][][]float64
		switch {
		case f.Geometry.IsPolygon():
			polys = [][][][]float64{f.Geometry.Polygon}
		case f.Geometry.IsMultiPolygon():
			polys = f.Geometry.MultiPolygon
		default:
			continue
		}
		shape := toMultiPolygon(polys)
		if len(shape) == 0 {
			continue
		}
		r.countries = append(r.countries, country{name: name, shape: shape, bound: shape.Bound()})
	}
	if len(r.countries) == 0 {
		return nil, fmt.Errorf("parse countries geojson: no polygon features with a name")
	}
	r.buildNeighbors()
	return r, nil
}

func featureName(f *geojson.Feature) string {
	for _, key := range DefaultNameProperties {
		if v, ok := f.Properties[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// toMultiPolygon keeps the polygons whose outer ring has at least three
// vertices and drops degenerate holes.
func toMultiPolygon(polys [][][][]float64) orb.MultiPolygon {
	var mp orb.MultiPolygon
	for _, poly := range polys {
		var p orb.Polygon
		for i, coords := range poly {
			ring := make(orb.Ring, 0, len(coords))
			for _, pt := range coords {
				if len(pt) >= 2 {
					ring = append(ring, orb.Point{pt[0], pt[1]})
				}
			}
			if len(ring) < 3 {
				if i == 0 {
					break
				}
				continue
			}
			p = append(p, ring)
		}
		if len(p) > 0 {
			mp = append(mp, p)
		}
	}
	return mp
}

func (c *country) contains(p geo.Point) bool {
	pt := orb.Point{p.Lon, p.Lat}
	return c.bound.Contains(pt) && planar.MultiPolygonContains(c.shape, pt)
}

func (r *GeoJSONResolver) buildNeighbors() {
	owners := make(map[vertexKey]map[int]bool)
	for i, c := range r.countries {
		for _, poly := range c.shape {
			for _, ring := range poly {
				for _, pt := range ring {
					k := vertexKey{int64(math.Round(pt[0] / vertexQuantum)), int64(math.Round(pt[1] / vertexQuantum))}
					if owners[k] == nil {
						owners[k] = make(map[int]bool)
					}
					owners[k][i] = true
				}
			}
		}
	}

	sets := make(map[string]map[string]bool)
	for _, idx := range owners {
		if len(idx) < 2 {
			continue
		}
		for a := range idx {
			for b := range idx {
				if a == b {
					continue
				}
				na, nb := r.countries[a].name, r.countries[b].name
				if na == nb {
					continue
				}
				if sets[na] == nil {
					sets[na] = make(map[string]bool)
				}
				sets[na][nb] = true
			}
		}
	}
	for name, set := range sets {
		list := make([]string, 0, len(set))
		for n := range set {
			list = append(list, n)
		}
		sort.Strings(list)
		r.neighbors[name] = list
	}
}

// Locate returns the first country containing p and its sorted neighbors.
// A point over no country returns an empty name and a nil error.
func (r *GeoJSONResolver) Locate(ctx context.Context, p geo.Point) (string, []string, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	for i := range r.countries {
		if r.countries[i].contains(p) {
			name := r.countries[i].name
			return name, r.Neighbors(name), nil
		}
	}
	return "", nil, nil
}

// Neighbors returns a copy of the sorted neighbor list of a country.
func (r *GeoJSONResolver) Neighbors(name string) []string {
	return append([]string(nil), r.neighbors[name]...)
}

// Countries returns the number of countries loaded.
func (r *GeoJSONResolver) Countries() int { return len(r.countries) }

// Land returns every country outline as one multipolygon in lon/lat.
func (r *GeoJSONResolver) Land() orb.MultiPolygon {
	var land orb.MultiPolygon
	for _, c := range r.countries {
		land = append(land, c.shape...)
	}
	return land
}
