package lookup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paulmach/orb"

	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/geo"
)

func newTestRestClient(url string) *RestCountries {
	return NewRestCountries(
		WithBaseURL(url),
		WithTimeout(2*time.Second),
		WithRetry(4, time.Millisecond, 5*time.Millisecond),
	)
}

func TestRestCountries_CapitalOf(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		switch r.URL.Path {
		case "/name/Niger":
			if r.URL.Query().Get("fields") != "capitalInfo" {
				t.Errorf("fields query = %q", r.URL.Query().Get("fields"))
			}
			w.Write([]byte(`[{"capitalInfo":{"latlng":[13.52,2.12]}}]`))
		case "/name/Antarctica":
			w.Write([]byte(`[{"capitalInfo":{}}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := newTestRestClient(srv.URL)

	p, err := client.CapitalOf(context.Background(), "Niger")
	if err != nil {
		t.Fatalf("CapitalOf(Niger): %v", err)
	}
	if p.Lat != 13.52 || p.Lon != 2.12 {
		t.Errorf("CapitalOf(Niger) = %v; want lat 13.52 lon 2.12", p)
	}

	tests := []struct {
		name string
		want error
	}{
		{"Antarctica", ErrNoCapital},
		{"Atlantis", ErrUnknownCountry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := atomic.LoadInt32(&hits)
			_, err := client.CapitalOf(context.Background(), tt.name)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v; want %v", err, tt.want)
			}
			if n := atomic.LoadInt32(&hits) - before; n != 1 {
				t.Errorf("made %d requests; negative answers must not be retried", n)
			}
		})
	}
}

func TestRestCountries_RetriesServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[{"capitalInfo":{"latlng":[6.5,2.6]}}]`))
	}))
	defer srv.Close()

	p, err := newTestRestClient(srv.URL).CapitalOf(context.Background(), "Benin")
	if err != nil {
		t.Fatalf("CapitalOf: %v", err)
	}
	if n := atomic.LoadInt32(&hits); p.Lon != 2.6 || n != 3 {
		t.Errorf("got %v after %d hits; want lon 2.6 after 3", p, n)
	}
}

func TestRestCountries_GivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestRestClient(srv.URL).CapitalOf(context.Background(), "Chad")
	if err == nil || errors.Is(err, ErrNoCapital) || errors.Is(err, ErrUnknownCountry) {
		t.Errorf("err = %v; want a transport failure", err)
	}
}

// two unit squares side by side, plus an island with a lake
const testCountries = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"ADMIN": "Westland"},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}},
    {"type": "Feature", "properties": {"ADMIN": "Eastland"},
     "geometry": {"type": "Polygon", "coordinates": [[[1,0],[2,0],[2,1],[1,1],[1,0]]]}},
    {"type": "Feature", "properties": {"name": "Isle"},
     "geometry": {"type": "MultiPolygon", "coordinates": [
       [[[10,10],[14,10],[14,14],[10,14],[10,10]], [[11,11],[13,11],[13,13],[11,13],[11,11]]]
     ]}},
    {"type": "Feature", "properties": {"ADMIN": "Nowhere"},
     "geometry": {"type": "Point", "coordinates": [5,5]}}
  ]
}`

func TestGeoJSONResolver_Locate(t *testing.T) {
	r, err := NewGeoJSONResolver([]byte(testCountries))
	if err != nil {
		t.Fatal(err)
	}
	if r.Countries() != 3 {
		t.Errorf("loaded %d countries; want 3", r.Countries())
	}

	tests := []struct {
		name      string
		p         geo.Point
		country   string
		neighbors []string
	}{
		{"West", geo.Point{Lon: 0.5, Lat: 0.5}, "Westland", []string{"Eastland"}},
		{"East", geo.Point{Lon: 1.5, Lat: 0.2}, "Eastland", []string{"Westland"}},
		{"Island shore", geo.Point{Lon: 10.5, Lat: 12}, "Isle", nil},
		{"Lake", geo.Point{Lon: 12, Lat: 12}, "", nil},
		{"Ocean", geo.Point{Lon: 5, Lat: 5}, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			country, neighbors, err := r.Locate(context.Background(), tt.p)
			if err != nil {
				t.Fatal(err)
			}
			if country != tt.country {
				t.Errorf("country = %q; want %q", country, tt.country)
			}
			if len(neighbors) != len(tt.neighbors) {
				t.Fatalf("neighbors = %v; want %v", neighbors, tt.neighbors)
			}
			for i := range neighbors {
				if neighbors[i] != tt.neighbors[i] {
					t.Errorf("neighbors = %v; want %v", neighbors, tt.neighbors)
				}
			}
		})
	}
}

func TestGeoJSONResolver_Land(t *testing.T) {
	r, err := NewGeoJSONResolver([]byte(testCountries))
	if err != nil {
		t.Fatal(err)
	}
	land := r.Land()
	if len(land) != 3 {
		t.Fatalf("Land has %d polygons; want 3", len(land))
	}
	if got := len(land[2]); got != 2 {
		t.Errorf("island polygon has %d rings; want outer ring and lake", got)
	}
	want := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{14, 14}}
	if got := land.Bound(); !got.Equal(want) {
		t.Errorf("Land bound = %v; want %v", got, want)
	}
}

func TestGeoJSONResolver_Errors(t *testing.T) {
	if _, err := NewGeoJSONResolver([]byte(`not json`)); err == nil {
		t.Error("expected parse error")
	}
	if _, err := NewGeoJSONResolver([]byte(`{"type":"FeatureCollection","features":[]}`)); err == nil {
		t.Error("expected error for empty collection")
	}
	if _, err := LoadGeoJSONResolver(filepath.Join(t.TempDir(), "missing.geojson")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestStore_RoundTrip(t *testing.T) {
	s, err := OpenStore(filepath.Join(t.TempDir(), "capitals.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	if _, found, err := s.Get(ctx, "Niger"); found || err != nil {
		t.Fatalf("empty store: found=%v err=%v", found, err)
	}
	if err := s.Put(ctx, "Niger", geo.Point{Lon: 2.1, Lat: 13.5}); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, "Niger", geo.Point{Lon: 2.12, Lat: 13.52}); err != nil {
		t.Fatal(err)
	}
	if err := s.PutMissing(ctx, "Atlantis", ErrUnknownCountry); err != nil {
		t.Fatal(err)
	}
	if err := s.PutMissing(ctx, "Antarctica", ErrNoCapital); err != nil {
		t.Fatal(err)
	}

	p, found, err := s.Get(ctx, "Niger")
	if err != nil || !found || p.Lon != 2.12 || p.Lat != 13.52 {
		t.Errorf("Get(Niger) = %v, %v, %v; want updated point", p, found, err)
	}
	if _, found, err := s.Get(ctx, "Atlantis"); !found || !errors.Is(err, ErrUnknownCountry) {
		t.Errorf("Get(Atlantis) found=%v err=%v; want stored ErrUnknownCountry", found, err)
	}
	if _, found, err := s.Get(ctx, "Antarctica"); !found || !errors.Is(err, ErrNoCapital) {
		t.Errorf("Get(Antarctica) found=%v err=%v; want stored ErrNoCapital", found, err)
	}
	if n, err := s.Count(ctx); err != nil || n != 3 {
		t.Errorf("Count = %d, %v; want 3", n, err)
	}
}

type countingSource struct {
	calls     int
	answer    map[string]geo.Point
	noCapital map[string]bool
	fail      error
}

func (c *countingSource) CapitalOf(_ context.Context, country string) (geo.Point, error) {
	c.calls++
	if c.fail != nil {
		return geo.Point{}, c.fail
	}
	if c.noCapital[country] {
		return geo.Point{}, ErrNoCapital
	}
	p, ok := c.answer[country]
	if !ok {
		return geo.Point{}, ErrUnknownCountry
	}
	return p, nil
}

func TestCachedCapitals(t *testing.T) {
	ctx := context.Background()
	store, err := OpenStore(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	up := &countingSource{
		answer:    map[string]geo.Point{"Benin": {Lon: 2.6, Lat: 6.5}},
		noCapital: map[string]bool{"Antarctica": true},
	}
	cache, err := NewCachedCapitals(up, 16, store, nil)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if p, err := cache.CapitalOf(ctx, "Benin"); err != nil || p.Lon != 2.6 {
			t.Fatalf("CapitalOf(Benin) = %v, %v", p, err)
		}
		if _, err := cache.CapitalOf(ctx, "Atlantis"); !errors.Is(err, ErrUnknownCountry) {
			t.Fatalf("CapitalOf(Atlantis) err = %v", err)
		}
		if _, err := cache.CapitalOf(ctx, "Antarctica"); !errors.Is(err, ErrNoCapital) {
			t.Fatalf("CapitalOf(Antarctica) err = %v", err)
		}
	}
	if up.calls != 3 {
		t.Errorf("upstream called %d times; want 3", up.calls)
	}

	// a fresh cache over the same store answers without upstream
	offline := &countingSource{fail: errors.New("network down")}
	cache2, err := NewCachedCapitals(offline, 16, store, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p, err := cache2.CapitalOf(ctx, "Benin"); err != nil || p.Lat != 6.5 {
		t.Errorf("store-backed CapitalOf = %v, %v", p, err)
	}
	if _, err := cache2.CapitalOf(ctx, "Atlantis"); !errors.Is(err, ErrUnknownCountry) {
		t.Errorf("store-backed unknown country err = %v", err)
	}
	if _, err := cache2.CapitalOf(ctx, "Antarctica"); !errors.Is(err, ErrNoCapital) {
		t.Errorf("store-backed missing capital err = %v", err)
	}
	if offline.calls != 0 {
		t.Errorf("offline upstream called %d times; want 0", offline.calls)
	}

	// transport errors are not cached
	if _, err := cache2.CapitalOf(ctx, "Chad"); err == nil {
		t.Error("expected transport error")
	}
	if _, err := cache2.CapitalOf(ctx, "Chad"); err == nil || offline.calls != 2 {
		t.Errorf("transport error was cached (calls=%d)", offline.calls)
	}
}

func TestStaticLookups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capitals.yaml")
	doc := "Niger: {lon: 2.11, lat: 13.51}\nBenin: {lon: 2.6, lat: 6.5}\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	caps, err := LoadStaticCapitals(path)
	if err != nil {
		t.Fatal(err)
	}
	if p, err := caps.CapitalOf(context.Background(), "Niger"); err != nil || p.Lat != 13.51 {
		t.Errorf("CapitalOf(Niger) = %v, %v", p, err)
	}
	if _, err := caps.CapitalOf(context.Background(), "Chad"); !errors.Is(err, ErrUnknownCountry) {
		t.Errorf("CapitalOf(Chad) err = %v; want ErrUnknownCountry", err)
	}

	res := StaticResolver{{Name: "Nigeria", MinLon: 3, MinLat: 4, MaxLon: 14, MaxLat: 14, Neighbors: []string{"Niger", "Benin"}}}
	country, neighbors, err := res.Locate(context.Background(), geo.Point{Lon: 8, Lat: 10})
	if err != nil || country != "Nigeria" || len(neighbors) != 2 || neighbors[0] != "Benin" {
		t.Errorf("Locate = %q %v %v", country, neighbors, err)
	}
	if country, _, _ := res.Locate(context.Background(), geo.Point{Lon: 0, Lat: 0}); country != "" {
		t.Errorf("Locate outside = %q; want none", country)
	}
	land := res.Land()
	if len(land) != 1 || !land.Bound().Contains(orb.Point{3, 4}) || !land.Bound().Contains(orb.Point{14, 14}) {
		t.Errorf("Land = %v; want the Nigeria box", land)
	}
}

func TestLoadStaticResolver(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "countries.yaml")
	doc := "- name: Nigeria\n  minLon: 3\n  minLat: 4\n  maxLon: 14\n  maxLat: 14\n  neighbors: [Niger, Benin]\n"
	if err := os.WriteFile(good, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := LoadStaticResolver(good)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 || res[0].Name != "Nigeria" || len(res[0].Neighbors) != 2 {
		t.Errorf("resolver = %+v", res)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("- name: Upside\n  minLon: 10\n  maxLon: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadStaticResolver(bad); err == nil {
		t.Error("expected error for inverted bounds")
	}
}
