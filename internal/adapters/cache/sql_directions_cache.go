package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"commute-route-service/internal/platform/obs"
	"commute-route-service/internal/ports"
)

// SQLDirectionsCache is a Postgres-backed cache of directions results.
type SQLDirectionsCache struct {
	DB *sql.DB
}

func NewSQLDirectionsCache(db *sql.DB) *SQLDirectionsCache {
	return &SQLDirectionsCache{DB: db}
}

// Fetch the cached result for key.
func (s *SQLDirectionsCache) Get(
	ctx context.Context,
	key ports.DirectionsKey,
) (_ ports.DirectionsResult, _ bool, err error) {
	defer obs.Time(ctx, nil, "directions.cache.Get")(&err)

	if s.DB == nil {
		return ports.DirectionsResult{}, false, errors.New("directions cache: db is nil")
	}

	if key.Origin == "" || key.Destination == "" {
		return ports.DirectionsResult{}, false, errors.New("get directions cache: origin and destination must not be empty")
	}

	q := `
	SELECT polyline, distance_meters, duration_seconds, attribution
    FROM directions_cache
    WHERE origin = $1
        AND destination = $2
        AND mode = $3;
	`

	var r ports.DirectionsResult
	err = s.DB.QueryRowContext(ctx, q, key.Origin, key.Destination, string(key.Mode)).
		Scan(&r.Polyline, &r.DistanceMeters, &r.DurationSeconds, &r.Attribution)
	if errors.Is(err, sql.ErrNoRows) {
		obs.CacheMisses.WithLabelValues("postgres").Inc()
		return ports.DirectionsResult{}, false, nil
	}
	if err != nil {
		return ports.DirectionsResult{}, false, fmt.Errorf("get directions cache: query directions_cache table: %w", err)
	}

	obs.CacheHits.WithLabelValues("postgres").Inc()
	return r, true, nil
}

// Store a directions result, replacing any previous entry.
func (s *SQLDirectionsCache) Put(
	ctx context.Context,
	key ports.DirectionsKey,
	r ports.DirectionsResult,
) error {
	if s.DB == nil {
		return errors.New("directions cache: db is nil")
	}

	if key.Origin == "" || key.Destination == "" {
		return errors.New("insert directions cache: origin and destination must not be empty")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO directions_cache (origin, destination, mode, polyline, distance_meters, duration_seconds, attribution)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (origin, destination, mode) DO UPDATE
	SET polyline = EXCLUDED.polyline,
		distance_meters = EXCLUDED.distance_meters,
		duration_seconds = EXCLUDED.duration_seconds,
		attribution = EXCLUDED.attribution;
	`, key.Origin, key.Destination, string(key.Mode), r.Polyline, r.DistanceMeters, r.DurationSeconds, r.Attribution)
	if err != nil {
		return fmt.Errorf("insert directions cache key=%q: %w", key.String(), err)
	}

	return nil
}
