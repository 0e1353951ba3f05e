package cache

import (
	"context"
	"fmt"

	"commute-route-service/internal/ports"
)

// TieredDirectionsCache reads through a fast front cache to a slower back
// cache, filling the front on back hits. Writes go to both.
type TieredDirectionsCache struct {
	Front ports.DirectionsCache
	Back  ports.DirectionsCache
}

func NewTieredDirectionsCache(front, back ports.DirectionsCache) *TieredDirectionsCache {
	return &TieredDirectionsCache{Front: front, Back: back}
}

func (t *TieredDirectionsCache) Get(ctx context.Context, key ports.DirectionsKey) (ports.DirectionsResult, bool, error) {
	r, ok, err := t.Front.Get(ctx, key)
	if err != nil {
		return ports.DirectionsResult{}, false, fmt.Errorf("tiered cache front: %w", err)
	}
	if ok {
		return r, true, nil
	}

	r, ok, err = t.Back.Get(ctx, key)
	if err != nil {
		return ports.DirectionsResult{}, false, fmt.Errorf("tiered cache back: %w", err)
	}
	if !ok {
		return ports.DirectionsResult{}, false, nil
	}

	if err := t.Front.Put(ctx, key, r); err != nil {
		return ports.DirectionsResult{}, false, fmt.Errorf("tiered cache fill front: %w", err)
	}
	return r, true, nil
}

func (t *TieredDirectionsCache) Put(ctx context.Context, key ports.DirectionsKey, r ports.DirectionsResult) error {
	if err := t.Back.Put(ctx, key, r); err != nil {
		return fmt.Errorf("tiered cache back: %w", err)
	}
	if err := t.Front.Put(ctx, key, r); err != nil {
		return fmt.Errorf("tiered cache front: %w", err)
	}
	return nil
}
