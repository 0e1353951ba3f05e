package repositories

import (
	"database/sql"
	"errors"
)

// Initialize the Postgres cache tables used by the SQL caches.
func InitPostgresSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init postgres schema: DB is nil")
	}

	createDirectionsCacheQuery := `
	CREATE TABLE IF NOT EXISTS directions_cache (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        mode TEXT NOT NULL,
        polyline TEXT NOT NULL,
        distance_meters INTEGER NOT NULL,
        duration_seconds INTEGER NOT NULL,
        attribution TEXT NOT NULL,
        PRIMARY KEY (origin, destination, mode)
    );
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lon DOUBLE PRECISION NOT NULL,
        lat DOUBLE PRECISION NOT NULL
    );
	`

	return execAll(db, "init postgres schema", []string{
		createDirectionsCacheQuery,
		createGeocodeCacheQuery,
	})
}
