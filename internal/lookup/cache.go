package lookup

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/geo"
)

// CapitalSource is anything that can answer a capital lookup.
type CapitalSource interface {
	CapitalOf(ctx context.Context, country string) (geo.Point, error)
}

// CachedCapitals answers from an in-memory LRU, then an optional SQLite store,
// and only then from the upstream source. Positive and negative answers are
// both remembered; transport errors are not.
type CachedCapitals struct {
	upstream CapitalSource
	mem      *lru.Cache
	store    *Store
	log      *zap.SugaredLogger
}

type cachedAnswer struct {
	point geo.Point
	miss  error // ErrNoCapital or ErrUnknownCountry for negative answers
}

// NewCachedCapitals wraps upstream. store and log may be nil.
func NewCachedCapitals(upstream CapitalSource, size int, store *Store, log *zap.SugaredLogger) (*CachedCapitals, error) {
	mem, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create capital cache: %w", err)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &CachedCapitals{upstream: upstream, mem: mem, store: store, log: log}, nil
}

func (c *CachedCapitals) CapitalOf(ctx context.Context, country string) (geo.Point, error) {
	if v, ok := c.mem.Get(country); ok {
		return answer(country, v.(cachedAnswer))
	}

	if c.store != nil {
		p, found, err := c.store.Get(ctx, country)
		switch {
		case found && isNegative(err):
			a := cachedAnswer{miss: err}
			c.mem.Add(country, a)
			return answer(country, a)
		case found && err == nil:
			c.mem.Add(country, cachedAnswer{point: p})
			return p, nil
		case err != nil:
			c.log.Warnf("capital store read failed for %s: %v", country, err)
		}
	}

	p, err := c.upstream.CapitalOf(ctx, country)
	switch {
	case err == nil:
		c.remember(ctx, country, cachedAnswer{point: p})
		return p, nil
	case isNegative(err):
		miss := ErrNoCapital
		if errors.Is(err, ErrUnknownCountry) {
			miss = ErrUnknownCountry
		}
		c.remember(ctx, country, cachedAnswer{miss: miss})
		return geo.Point{}, err
	default:
		return geo.Point{}, err
	}
}

func (c *CachedCapitals) remember(ctx context.Context, country string, a cachedAnswer) {
	c.mem.Add(country, a)
	if c.store == nil {
		return
	}
	var err error
	if a.miss != nil {
		err = c.store.PutMissing(ctx, country, a.miss)
	} else {
		err = c.store.Put(ctx, country, a.point)
	}
	if err != nil {
		c.log.Warnf("capital store write failed for %s: %v", country, err)
	}
}

func answer(country string, a cachedAnswer) (geo.Point, error) {
	if a.miss != nil {
		return geo.Point{}, fmt.Errorf("capital of %s: %w", country, a.miss)
	}
	return a.point, nil
}

func isNegative(err error) bool {
	return errors.Is(err, ErrNoCapital) || errors.Is(err, ErrUnknownCountry)
}
