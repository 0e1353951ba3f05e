package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"commute-route-service/internal/platform/obs"
	"commute-route-service/internal/ports"
)

const redisKeyPrefix = "directions:"

// RedisDirectionsCache stores directions results as JSON values with a TTL.
type RedisDirectionsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type redisEntry struct {
	Polyline        string `json:"polyline"`
	DistanceMeters  int    `json:"distance_meters"`
	DurationSeconds int    `json:"duration_seconds"`
	Attribution     string `json:"attribution"`
}

// NewRedisDirectionsCache connects to addr and verifies the connection.
// A zero ttl keeps entries forever.
func NewRedisDirectionsCache(ctx context.Context, addr string, ttl time.Duration) (*RedisDirectionsCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connect %s: %w", addr, err)
	}
	return &RedisDirectionsCache{client: client, ttl: ttl}, nil
}

func (c *RedisDirectionsCache) Get(ctx context.Context, key ports.DirectionsKey) (ports.DirectionsResult, bool, error) {
	b, err := c.client.Get(ctx, redisKeyPrefix+key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		obs.CacheMisses.WithLabelValues("redis").Inc()
		return ports.DirectionsResult{}, false, nil
	}
	if err != nil {
		return ports.DirectionsResult{}, false, fmt.Errorf("get directions cache: redis get: %w", err)
	}

	var e redisEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return ports.DirectionsResult{}, false, fmt.Errorf("get directions cache: decode %q: %w", key.String(), err)
	}

	obs.CacheHits.WithLabelValues("redis").Inc()
	return ports.DirectionsResult{
		Polyline:        e.Polyline,
		DistanceMeters:  e.DistanceMeters,
		DurationSeconds: e.DurationSeconds,
		Attribution:     e.Attribution,
	}, true, nil
}

func (c *RedisDirectionsCache) Put(ctx context.Context, key ports.DirectionsKey, r ports.DirectionsResult) error {
	b, err := json.Marshal(redisEntry{
		Polyline:        r.Polyline,
		DistanceMeters:  r.DistanceMeters,
		DurationSeconds: r.DurationSeconds,
		Attribution:     r.Attribution,
	})
	if err != nil {
		return fmt.Errorf("insert directions cache: encode: %w", err)
	}

	if err := c.client.Set(ctx, redisKeyPrefix+key.String(), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("insert directions cache: redis set: %w", err)
	}
	return nil
}

func (c *RedisDirectionsCache) Close() error {
	return c.client.Close()
}
