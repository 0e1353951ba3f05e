package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bluele/gcache"

	"commute-route-service/internal/platform/obs"
	"commute-route-service/internal/ports"
)

// MemoryDirectionsCache is an in-process LRU cache with per-entry expiration.
type MemoryDirectionsCache struct {
	lru gcache.Cache
}

// NewMemoryDirectionsCache keeps at most size entries. A zero ttl disables
// expiration.
func NewMemoryDirectionsCache(size int, ttl time.Duration) *MemoryDirectionsCache {
	b := gcache.New(size).LRU()
	if ttl > 0 {
		b = b.Expiration(ttl)
	}
	return &MemoryDirectionsCache{lru: b.Build()}
}

func (c *MemoryDirectionsCache) Get(_ context.Context, key ports.DirectionsKey) (ports.DirectionsResult, bool, error) {
	v, err := c.lru.Get(key)
	if errors.Is(err, gcache.KeyNotFoundError) {
		obs.CacheMisses.WithLabelValues("memory").Inc()
		return ports.DirectionsResult{}, false, nil
	}
	if err != nil {
		return ports.DirectionsResult{}, false, fmt.Errorf("get directions cache: %w", err)
	}

	r, ok := v.(ports.DirectionsResult)
	if !ok {
		return ports.DirectionsResult{}, false, fmt.Errorf("get directions cache: unexpected value %T", v)
	}

	obs.CacheHits.WithLabelValues("memory").Inc()
	return r, true, nil
}

func (c *MemoryDirectionsCache) Put(_ context.Context, key ports.DirectionsKey, r ports.DirectionsResult) error {
	if err := c.lru.Set(key, r); err != nil {
		return fmt.Errorf("insert directions cache: %w", err)
	}
	return nil
}

func (c *MemoryDirectionsCache) Len() int {
	return c.lru.Len(false)
}
