package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"commute-route-service/internal/domain"
	"commute-route-service/internal/polyline"
)

// SQLite-backed implementation of the RouteRepository port.
// Geometry is stored as an encoded polyline and decoded on read.
type SqliteRouteRepository struct{ DB *sql.DB }

func NewSqliteRouteRepository(db *sql.DB) *SqliteRouteRepository {
	return &SqliteRouteRepository{DB: db}
}

const selectRoutes = `
	SELECT
		route_id,
		row_number,
		building,
		mode_label,
		origin,
		destination,
		mode,
		depart_at,
		polyline,
		attribution,
		distance_meters,
		duration_seconds,
		created_at
	FROM routes
`

// Store routes. A route supersedes any stored route with the same ID or
// for the same survey row and building, so re-plotting keeps one feature
// per commute.
func (s *SqliteRouteRepository) SaveRoutes(ctx context.Context, routes []*domain.Route) error {
	if s.DB == nil {
		return errors.New("sqlite route repository: DB is nil")
	}

	if len(routes) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save routes: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	del, err := tx.PrepareContext(ctx, `
	DELETE FROM routes
	WHERE row_number = ? AND building = ? AND route_id <> ?;
	`)
	if err != nil {
		return fmt.Errorf("save routes: prepare delete: %w", err)
	}
	defer del.Close()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO routes (
		route_id,
		row_number,
		building,
		mode_label,
		origin,
		destination,
		mode,
		depart_at,
		polyline,
		attribution,
		distance_meters,
		duration_seconds,
		created_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("save routes: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range routes {
		if r == nil || r.ID == "" {
			return errors.New("save routes: route must have an ID")
		}

		if _, err := del.ExecContext(ctx, r.Row, r.Building, r.ID); err != nil {
			return fmt.Errorf("save routes: drop previous row=%d building=%q: %w", r.Row, r.Building, err)
		}

		_, err := stmt.ExecContext(ctx,
			r.ID,
			r.Row,
			r.Building,
			r.ModeLabel,
			r.Origin,
			r.Destination,
			string(r.Mode),
			r.DepartAt.UTC().Format(time.RFC3339),
			polyline.Encode(r.Points),
			r.Attribution,
			r.DistanceMeters,
			r.DurationSeconds,
			r.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("save routes: insert route_id=%s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save routes: commit tx: %w", err)
	}

	return nil
}

// Return all stored routes ordered by survey row.
func (s *SqliteRouteRepository) ListRoutes(ctx context.Context) ([]*domain.Route, error) {
	return s.list(ctx, selectRoutes+" ORDER BY row_number, created_at;")
}

// Return the stored routes heading to building, ordered by survey row.
func (s *SqliteRouteRepository) ListByBuilding(ctx context.Context, building string) ([]*domain.Route, error) {
	return s.list(ctx, selectRoutes+" WHERE building = ? ORDER BY row_number, created_at;", building)
}

func (s *SqliteRouteRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Route, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite route repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list routes: query routes table: %w", err)
	}
	defer rows.Close()

	routes := make([]*domain.Route, 0, 64)
	for rows.Next() {
		var (
			r                   domain.Route
			mode, line          string
			departAt, createdAt string
		)
		err := rows.Scan(
			&r.ID,
			&r.Row,
			&r.Building,
			&r.ModeLabel,
			&r.Origin,
			&r.Destination,
			&mode,
			&departAt,
			&line,
			&r.Attribution,
			&r.DistanceMeters,
			&r.DurationSeconds,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("list routes: scan row: %w", err)
		}

		r.Mode = domain.TravelMode(mode)
		if r.DepartAt, err = time.Parse(time.RFC3339, departAt); err != nil {
			return nil, fmt.Errorf("list routes: route_id=%s depart_at: %w", r.ID, err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("list routes: route_id=%s created_at: %w", r.ID, err)
		}
		if r.Points, err = polyline.DecodeStrict(line); err != nil {
			return nil, fmt.Errorf("list routes: route_id=%s geometry: %w", r.ID, err)
		}

		routes = append(routes, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list routes: row iteration: %w", err)
	}

	return routes, nil
}
