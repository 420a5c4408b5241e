package nominatim

import (
	"context"
	"fmt"
	"strings"

	"github.com/couchcryptid/climatology-service/internal/domain"
	"github.com/couchcryptid/climatology-service/internal/observability"
	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedResolver wraps a LocationResolver with an in-memory LRU cache keyed
// by the normalized query.
type CachedResolver struct {
	inner   domain.LocationResolver
	cache   *lru.Cache[string, domain.GeocodingResult]
	metrics *observability.Metrics
}

// NewCachedResolver creates a cache decorator around a resolver.
func NewCachedResolver(inner domain.LocationResolver, maxEntries int, metrics *observability.Metrics) (*CachedResolver, error) {
	c, err := lru.New[string, domain.GeocodingResult](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create geocode cache: %w", err)
	}
	return &CachedResolver{inner: inner, cache: c, metrics: metrics}, nil
}

func (c *CachedResolver) Resolve(ctx context.Context, query string) (domain.GeocodingResult, error) {
	key := strings.ToLower(strings.Join(strings.Fields(query), " "))
	if result, ok := c.cache.Get(key); ok {
		c.metrics.ProviderCache.WithLabelValues(providerName, "hit").Inc()
		return result, nil
	}
	c.metrics.ProviderCache.WithLabelValues(providerName, "miss").Inc()

	result, err := c.inner.Resolve(ctx, query)
	if err != nil {
		// Not-found answers are not cached so new OSM data is picked up.
		return result, err
	}
	c.cache.Add(key, result)
	return result, nil
}
