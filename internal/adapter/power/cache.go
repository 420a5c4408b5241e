package power

import (
	"context"
	"fmt"

	"github.com/couchcryptid/climatology-service/internal/domain"
	"github.com/couchcryptid/climatology-service/internal/observability"
	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedProvider wraps a SeriesProvider with an in-memory LRU cache keyed by
// rounded coordinates and year range.
type CachedProvider struct {
	inner   domain.SeriesProvider
	cache   *lru.Cache[string, domain.RawSeries]
	metrics *observability.Metrics
}

// NewCachedProvider creates a cache decorator around a provider.
func NewCachedProvider(inner domain.SeriesProvider, maxEntries int, metrics *observability.Metrics) (*CachedProvider, error) {
	c, err := lru.New[string, domain.RawSeries](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create series cache: %w", err)
	}
	return &CachedProvider{inner: inner, cache: c, metrics: metrics}, nil
}

func (c *CachedProvider) FetchSeries(ctx context.Context, loc domain.Location, startYear, endYear int) (domain.RawSeries, error) {
	// POWER resolves to a half-degree grid; four decimals keep distinct
	// requests distinct without caching float noise.
	key := fmt.Sprintf("%.4f,%.4f|%d-%d", loc.Latitude, loc.Longitude, startYear, endYear)
	if s, ok := c.cache.Get(key); ok {
		c.metrics.ProviderCache.WithLabelValues(providerName, "hit").Inc()
		s.Location = loc
		return s, nil
	}
	c.metrics.ProviderCache.WithLabelValues(providerName, "miss").Inc()

	s, err := c.inner.FetchSeries(ctx, loc, startYear, endYear)
	if err != nil {
		return s, err
	}
	c.cache.Add(key, s)
	return s, nil
}

// Len returns the number of cached series.
func (c *CachedProvider) Len() int {
	return c.cache.Len()
}
