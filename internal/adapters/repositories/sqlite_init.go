package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"commute-route-service/internal/adapters/survey"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	createCommutesQuery := `
	CREATE TABLE IF NOT EXISTS commutes (
		row_number INTEGER PRIMARY KEY,
		building TEXT NOT NULL,
		address TEXT NOT NULL,
		city TEXT NOT NULL,
		mode_label TEXT NOT NULL
	);
	`

	createRoutesQuery := `
	CREATE TABLE IF NOT EXISTS routes (
        route_id TEXT PRIMARY KEY,
        row_number INTEGER NOT NULL,
        building TEXT NOT NULL,
        mode_label TEXT NOT NULL,
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        mode TEXT NOT NULL,
        depart_at TEXT NOT NULL,
        polyline TEXT NOT NULL,
        attribution TEXT NOT NULL,
        distance_meters INTEGER NOT NULL,
        duration_seconds INTEGER NOT NULL,
        created_at TEXT NOT NULL
    );
	`

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
        lon REAL NOT NULL,
        lat REAL NOT NULL
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_routes_building_row
    ON routes(building, row_number);
	`

	return execAll(db, "init schema", []string{
		createCommutesQuery,
		createRoutesQuery,
		createDirectionsCacheQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	})
}

func execAll(db *sql.DB, op string, statements []string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("%s: exec statement #%d: %w", op, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit tx: %w", op, err)
	}

	return nil
}

// Populate the commutes table from a survey CSV file. Existing rows with
// the same row number are replaced.
func SeedFromCSV(ctx context.Context, db *sql.DB, csvPath string, opts survey.Options, log *zap.Logger) (int, error) {
	commutes, err := survey.ReadFile(csvPath, opts, log)
	if err != nil {
		return 0, fmt.Errorf("seed commutes: %w", err)
	}

	repo := NewSqliteCommuteRepository(db)
	if err := repo.SaveCommutes(ctx, commutes); err != nil {
		return 0, fmt.Errorf("seed commutes: %w", err)
	}

	return len(commutes), nil
}
