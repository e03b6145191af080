package directory

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/babycommando/afroradio/internal/station"
)

const (
	DefaultCacheTTL        = 10 * time.Minute
	DefaultCleanupInterval = 20 * time.Minute
)

// Cached keeps recent non-empty results per country and collapses concurrent
// fetches of the same country into one upstream request.
type Cached struct {
	next  Directory
	mem   *cache.Cache
	group singleflight.Group
	log   *zap.Logger
}

var _ Directory = (*Cached)(nil)

func NewCached(next Directory, ttl time.Duration, logger *zap.Logger) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{
		next: next,
		mem:  cache.New(ttl, DefaultCleanupInterval),
		log:  logger.Named("directory.cache"),
	}
}

func cacheKey(country string) string {
	return strings.ToLower(strings.TrimSpace(country))
}

func (c *Cached) Fetch(ctx context.Context, country string) []station.Station {
	key := cacheKey(country)
	if cached, found := c.mem.Get(key); found {
		if stations, ok := cached.([]station.Station); ok {
			c.log.Debug("cache hit", zap.String("country", country))
			return clone(stations)
		}
	}

	// The shared call outlives whichever caller started it: a superseded
	// request must not cancel the fetch a newer request has joined. Each
	// caller still stops waiting when its own ctx ends.
	flight := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		stations := c.next.Fetch(flight, country)
		// An empty list may be a failure; do not pin it.
		if len(stations) > 0 {
			c.mem.Set(key, stations, cache.DefaultExpiration)
		}
		return stations, nil
	})
	select {
	case res := <-ch:
		if res.Shared {
			c.log.Debug("joined in-flight fetch", zap.String("country", country))
		}
		return clone(res.Val.([]station.Station))
	case <-ctx.Done():
		return []station.Station{}
	}
}

// Invalidate drops the cached list for a country.
func (c *Cached) Invalidate(country string) {
	c.mem.Delete(cacheKey(country))
}

func clone(s []station.Station) []station.Station {
	out := make([]station.Station, len(s))
	copy(out, s)
	return out
}
