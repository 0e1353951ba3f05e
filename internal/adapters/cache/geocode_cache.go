package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"commute-route-service/internal/domain"
	"commute-route-service/internal/platform/obs"
)

// geocodeDialect holds the statements that differ between drivers.
type geocodeDialect struct {
	label string
	// lookup builds the SELECT for n addresses plus its bind args.
	lookup func(addrs []string) (string, []any)
	upsert string
}

var sqliteGeocode = geocodeDialect{
	label: "geocode_sqlite",
	lookup: func(addrs []string) (string, []any) {
		ph := strings.TrimSuffix(strings.Repeat("?,", len(addrs)), ",")
		args := make([]any, len(addrs))
		for i, a := range addrs {
			args[i] = a
		}
		return `SELECT address, lon, lat FROM geocode_cache WHERE address IN (` + ph + `);`, args
	},
	upsert: `
	INSERT INTO geocode_cache (address, lon, lat)
	VALUES (?, ?, ?)
	ON CONFLICT(address) DO UPDATE SET lon = excluded.lon, lat = excluded.lat;
	`,
}

var postgresGeocode = geocodeDialect{
	label: "geocode_postgres",
	lookup: func(addrs []string) (string, []any) {
		return `SELECT address, lon, lat FROM geocode_cache WHERE address = ANY($1::text[]);`, []any{addrs}
	},
	upsert: `
	INSERT INTO geocode_cache (address, lon, lat)
	VALUES ($1, $2, $3)
	ON CONFLICT (address) DO UPDATE SET lon = EXCLUDED.lon, lat = EXCLUDED.lat;
	`,
}

// SQLGeocodeCache maps free-text addresses to coordinates in a
// geocode_cache table. Keys are trimmed; callers normalize the rest.
type SQLGeocodeCache struct {
	DB      *sql.DB
	dialect geocodeDialect
}

func NewSqliteGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db, dialect: sqliteGeocode}
}

func NewSQLGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db, dialect: postgresGeocode}
}

// uniqueAddresses trims, drops blanks and dedupes while keeping order.
func uniqueAddresses(addresses []string) []string {
	seen := make(map[string]struct{}, len(addresses))
	out := make([]string, 0, len(addresses))
	for _, a := range addresses {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}

func (s *SQLGeocodeCache) GetMany(ctx context.Context, addresses []string) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, nil, s.dialect.label+".GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	uniq := uniqueAddresses(addresses)
	found := make(map[string]domain.Coordinates, len(uniq))
	if len(uniq) == 0 {
		return found, nil
	}

	q, args := s.dialect.lookup(uniq)
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("geocode cache lookup (%d addresses): %w", len(uniq), err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			addr string
			c    domain.Coordinates
		)
		if err := rows.Scan(&addr, &c.Lon, &c.Lat); err != nil {
			return nil, fmt.Errorf("geocode cache lookup: scan: %w", err)
		}
		found[addr] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("geocode cache lookup: rows: %w", err)
	}

	obs.CacheHits.WithLabelValues(s.dialect.label).Add(float64(len(found)))
	obs.CacheMisses.WithLabelValues(s.dialect.label).Add(float64(len(uniq) - len(found)))
	return found, nil
}

// PutMany upserts every mapping in one transaction. A blank key aborts
// the whole batch.
func (s *SQLGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}
	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("geocode cache store: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.dialect.upsert)
	if err != nil {
		return fmt.Errorf("geocode cache store: prepare: %w", err)
	}
	defer stmt.Close()

	n := 0
	for addr, c := range results {
		key := strings.TrimSpace(addr)
		if key == "" {
			return errors.New("geocode cache store: empty address key")
		}
		if _, err := stmt.ExecContext(ctx, key, c.Lon, c.Lat); err != nil {
			return fmt.Errorf("geocode cache store %s: %w", strconv.Quote(key), err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("geocode cache store: commit %d rows: %w", n, err)
	}
	return nil
}
