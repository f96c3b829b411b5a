package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"StockAdvisor/internal/cache"
	"StockAdvisor/internal/metrics"
	"StockAdvisor/internal/model"
)

// CachedFetcher decorates a Fetcher with a TTL cache. A fresh entry answers
// without calling the provider. When the provider fails, an expired entry is
// served instead of the error.
type CachedFetcher struct {
	Fetcher Fetcher
	Cache   *cache.Cache
	Metrics *metrics.Metrics
}

// NewCachedFetcher wraps f with c.
func NewCachedFetcher(f Fetcher, c *cache.Cache, m *metrics.Metrics) *CachedFetcher {
	return &CachedFetcher{Fetcher: f, Cache: c, Metrics: m}
}

func (c *CachedFetcher) Name() string { return c.Fetcher.Name() + "+cache" }

func barsKey(symbol string, start, end time.Time) string {
	return fmt.Sprintf("bars:%s:%s:%s", symbol, start.Format("20060102"), end.Format("20060102"))
}

func snapshotKey(symbol string) string { return "snapshot:" + symbol }

func (c *CachedFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	return cached(ctx, c, barsKey(symbol, start, end), func() ([]model.OHLCV, error) {
		return c.Fetcher.FetchDailyBars(ctx, symbol, start, end)
	})
}

func (c *CachedFetcher) FetchSnapshot(ctx context.Context, symbol string) (*model.Snapshot, error) {
	return cached(ctx, c, snapshotKey(symbol), func() (*model.Snapshot, error) {
		return c.Fetcher.FetchSnapshot(ctx, symbol)
	})
}

func cached[T any](ctx context.Context, c *CachedFetcher, key string, fetch func() (T, error)) (T, error) {
	var zero T

	entry, fresh, err := c.Cache.Get(ctx, key)
	hasEntry := err == nil
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		log.Printf("[WARN] cache lookup %s: %v", key, err)
	}
	if hasEntry && fresh {
		var v T
		if err := json.Unmarshal(entry.Data, &v); err == nil {
			c.Metrics.ObserveCache("hit")
			return v, nil
		}
		hasEntry = false
	}
	c.Metrics.ObserveCache("miss")

	v, fetchErr := fetch()
	if fetchErr != nil {
		if hasEntry {
			var stale T
			if err := json.Unmarshal(entry.Data, &stale); err == nil {
				log.Printf("[WARN] %s: provider failed (%v), serving cached data from %s",
					key, fetchErr, entry.StoredAt.Format(time.RFC3339))
				c.Metrics.ObserveCache("stale")
				return stale, nil
			}
		}
		return zero, fetchErr
	}

	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[WARN] encode %s for cache: %v", key, err)
		return v, nil
	}
	if err := c.Cache.Set(ctx, key, data); err != nil {
		log.Printf("[WARN] %v", err)
	}
	return v, nil
}
