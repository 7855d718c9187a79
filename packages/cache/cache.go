// Package cache is an optional Redis-backed TTL cache for assembled
// aggregates, so repeated insight requests for the same storefront do not
// re-scrape it within the cache window.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/domain"
	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/metrics"
)

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(addr, password string, db int, ttl time.Duration) *Cache {
	return &Cache{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		ttl:    ttl,
	}
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func cacheKey(baseURL string) string {
	return "insights:" + baseURL
}

// Get returns the cached aggregate or nil. Redis errors count as misses.
func (c *Cache) Get(ctx context.Context, baseURL string) *domain.BrandInsights {
	raw, err := c.client.Get(ctx, cacheKey(baseURL)).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("Cache lookup failed", "base_url", baseURL, "error", err)
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil
	}
	var insights domain.BrandInsights
	if err := json.Unmarshal(raw, &insights); err != nil {
		slog.Warn("Cache entry is unreadable, ignoring", "base_url", baseURL, "error", err)
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return &insights
}

// Set stores the aggregate best-effort; failures are logged, never
// propagated.
func (c *Cache) Set(ctx context.Context, baseURL string, insights *domain.BrandInsights) {
	raw, err := json.Marshal(insights)
	if err != nil {
		slog.Warn("Failed to marshal insights for cache", "base_url", baseURL, "error", err)
		return
	}
	if err := c.client.Set(ctx, cacheKey(baseURL), raw, c.ttl).Err(); err != nil {
		slog.Warn("Failed to cache insights", "base_url", baseURL, "error", err)
	}
}
