package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"commute-route-service/internal/platform/obs"
	"commute-route-service/internal/ports"
)

// SQLite backed cache of directions results.
// Keys are expected to be normalized by the caller (see ports.NewDirectionsKey).
type SqliteDirectionsCache struct {
	DB *sql.DB
}

func NewSqliteDirectionsCache(db *sql.DB) *SqliteDirectionsCache {
	return &SqliteDirectionsCache{DB: db}
}

// Fetch the cached result for key.
func (s *SqliteDirectionsCache) Get(
	ctx context.Context,
	key ports.DirectionsKey,
) (ports.DirectionsResult, bool, error) {
	if s.DB == nil {
		return ports.DirectionsResult{}, false, errors.New("directions cache: db is nil")
	}

	if key.Origin == "" || key.Destination == "" {
		return ports.DirectionsResult{}, false, errors.New("get directions cache: origin and destination must not be empty")
	}

	q := `
	SELECT
        polyline,
        distance_meters,
        duration_seconds,
        attribution
    FROM directions_cache
    WHERE origin = ?
        AND destination = ?
        AND mode = ?;
	`

	var r ports.DirectionsResult
	err := s.DB.QueryRowContext(ctx, q, key.Origin, key.Destination, string(key.Mode)).
		Scan(&r.Polyline, &r.DistanceMeters, &r.DurationSeconds, &r.Attribution)
	if errors.Is(err, sql.ErrNoRows) {
		obs.CacheMisses.WithLabelValues("sqlite").Inc()
		return ports.DirectionsResult{}, false, nil
	}
	if err != nil {
		return ports.DirectionsResult{}, false, fmt.Errorf("get directions cache: query directions_cache table: %w", err)
	}

	obs.CacheHits.WithLabelValues("sqlite").Inc()
	return r, true, nil
}

// Store a directions result, replacing any previous entry.
func (s *SqliteDirectionsCache) Put(
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
	INSERT OR REPLACE INTO directions_cache (
        origin,
        destination,
        mode,
        polyline,
        distance_meters,
        duration_seconds,
        attribution
    )
    VALUES (?, ?, ?, ?, ?, ?, ?);
	`, key.Origin, key.Destination, string(key.Mode), r.Polyline, r.DistanceMeters, r.DurationSeconds, r.Attribution)
	if err != nil {
		return fmt.Errorf("insert directions cache key=%q: %w", key.String(), err)
	}

	return nil
}
