package directions

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"commute-route-service/internal/platform/obs"
	"commute-route-service/internal/ports"
)

// sharedFetchTimeout bounds a collapsed fetch, which outlives the caller
// that started it.
const sharedFetchTimeout = time.Minute

// cachedFetch puts a directions cache in front of a provider call and
// collapses concurrent requests for the same key into one call.
type cachedFetch struct {
	provider string
	cache    ports.DirectionsCache
	log      *zap.Logger
	flight   singleflight.Group
}

func (c *cachedFetch) get(
	ctx context.Context,
	key ports.DirectionsKey,
	fetch func(ctx context.Context) (ports.DirectionsResult, error),
) (ports.DirectionsResult, error) {
	// Check the directions cache before issuing external API calls.
	if c.cache != nil {
		r, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			return ports.DirectionsResult{}, fmt.Errorf("%s get directions cache: %w", c.provider, err)
		}
		if ok {
			obs.DirectionsRequests.WithLabelValues(c.provider, "cached").Inc()
			return r, nil
		}
	}

	// Shared by every caller waiting on key; detached from ctx.
	ch := c.flight.DoChan(key.String(), func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()

		start := time.Now()
		r, err := fetch(fctx)
		obs.DirectionsDuration.WithLabelValues(c.provider).Observe(time.Since(start).Seconds())
		if err != nil {
			obs.DirectionsRequests.WithLabelValues(c.provider, "error").Inc()
			return nil, err
		}
		obs.DirectionsRequests.WithLabelValues(c.provider, "ok").Inc()

		if c.cache != nil {
			if err := c.cache.Put(fctx, key, r); err != nil {
				c.log.Warn("directions cache write failed", zap.String("key", key.String()), zap.Error(err))
			}
		}
		return r, nil
	})

	select {
	case <-ctx.Done():
		return ports.DirectionsResult{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return ports.DirectionsResult{}, res.Err
		}
		return res.Val.(ports.DirectionsResult), nil
	}
}
