package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"commute-route-service/internal/domain"
)

// SQLite-backed implementation of the CommuteRepository port.
type SqliteCommuteRepository struct{ DB *sql.DB }

func NewSqliteCommuteRepository(db *sql.DB) *SqliteCommuteRepository {
	return &SqliteCommuteRepository{DB: db}
}

// Return all survey answers ordered by row.
func (s *SqliteCommuteRepository) ListCommutes(ctx context.Context) ([]domain.Commute, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite commute repository: DB is nil")
	}

	query := `
	SELECT
		row_number,
		building,
		address,
		city,
		mode_label
	FROM commutes
	ORDER BY row_number;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list commutes: query commutes table: %w", err)
	}
	defer rows.Close()

	commutes := make([]domain.Commute, 0, 64)
	for rows.Next() {
		var c domain.Commute
		if err := rows.Scan(&c.Row, &c.Building, &c.Address, &c.City, &c.ModeLabel); err != nil {
			return nil, fmt.Errorf("list commutes: scan row: %w", err)
		}
		commutes = append(commutes, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list commutes: row iteration: %w", err)
	}

	return commutes, nil
}

// Store survey answers keyed by row number.
func (s *SqliteCommuteRepository) SaveCommutes(ctx context.Context, commutes []domain.Commute) error {
	if s.DB == nil {
		return errors.New("sqlite commute repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save commutes: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO commutes (
		row_number,
		building,
		address,
		city,
		mode_label
	)
	VALUES (?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("save commutes: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range commutes {
		if c.Row <= 0 {
			return fmt.Errorf("save commutes: invalid row number %d", c.Row)
		}
		if _, err := stmt.ExecContext(ctx, c.Row, c.Building, c.Address, c.City, c.ModeLabel); err != nil {
			return fmt.Errorf("save commutes: insert row=%d: %w", c.Row, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save commutes: commit tx: %w", err)
	}

	return nil
}
