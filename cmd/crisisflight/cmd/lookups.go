package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-crisis-flight/internal/lookup"
	"github.com/lao-tseu-is-alive/go-crisis-flight/internal/render"
	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/scenario"
	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/simulation"
)

const capitalCacheSize = 256

// lookups bundles the geographic services a scenario needs.
type lookups struct {
	countries scenario.CountryResolver
	capitals  scenario.CapitalLookup
	store     *lookup.Store
}

func (l *lookups) Close() error {
	if l.store == nil {
		return nil
	}
	return l.store.Close()
}

// basemap returns the country map of the loaded resolver, or nil when it has
// no outlines to draw.
func (l *lookups) basemap(cfg *simulation.Config) *render.Basemap {
	src, ok := l.countries.(lookup.LandSource)
	if !ok {
		return nil
	}
	return &render.Basemap{Land: src.Land(), Projection: cfg.Projection, GridSize: cfg.GridSize}
}

func openLookups(log *zap.SugaredLogger) (*lookups, error) {
	countries, err := openCountries(viper.GetString("countries"))
	if err != nil {
		return nil, err
	}
	l := &lookups{countries: countries}

	if path := viper.GetString("capitals"); path != "" {
		caps, err := lookup.LoadStaticCapitals(path)
		if err != nil {
			return nil, err
		}
		log.Infof("using %d static capitals from %s", len(caps), path)
		l.capitals = caps
		return l, nil
	}

	rest := lookup.NewRestCountries(
		lookup.WithBaseURL(viper.GetString("restcountries-url")),
		lookup.WithTimeout(10*time.Second),
		lookup.WithRestLogger(log),
	)
	if path := viper.GetString("cache"); path != "" {
		store, err := lookup.OpenStore(path)
		if err != nil {
			return nil, err
		}
		l.store = store
	}
	cached, err := lookup.NewCachedCapitals(rest, capitalCacheSize, l.store, log)
	if err != nil {
		_ = l.Close()
		return nil, err
	}
	l.capitals = cached
	return l, nil
}

func openCountries(path string) (scenario.CountryResolver, error) {
	if path == "" {
		return nil, fmt.Errorf("no country data: set --countries or %s_COUNTRIES", envPrefix)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return lookup.LoadGeoJSONResolver(path)
	case ".yaml", ".yml":
		return lookup.LoadStaticResolver(path)
	default:
		return nil, fmt.Errorf("countries file %s: unsupported extension", path)
	}
}
