// Package app assembles the configured adapters behind their ports. It is
// shared by the server and the batch commands.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"commute-route-service/internal/adapters/cache"
	"commute-route-service/internal/adapters/directions"
	"commute-route-service/internal/adapters/events"
	"commute-route-service/internal/adapters/repositories"
	"commute-route-service/internal/adapters/survey"
	"commute-route-service/internal/config"
	"commute-route-service/internal/platform/db"
	"commute-route-service/internal/ports"
	"commute-route-service/internal/services"
)

type App struct {
	Config    *config.Config
	Store     *sql.DB
	Provider  ports.DirectionsProvider
	Commutes  *repositories.SqliteCommuteRepository
	Routes    *repositories.SqliteRouteRepository
	Publisher ports.RoutePublisher

	log     *zap.Logger
	closers []func()
}

// Open connects every configured backend. Call Close when done, also
// after an error.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (_ *App, err error) {
	a := &App{Config: cfg, log: log}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if a.Store, err = OpenStore(cfg.Database.SqlitePath); err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = a.Store.Close() })

	a.Commutes = repositories.NewSqliteCommuteRepository(a.Store)
	a.Routes = repositories.NewSqliteRouteRepository(a.Store)

	dirCache, geoCache, err := a.caches(ctx)
	if err != nil {
		return nil, err
	}

	if a.Provider, err = a.provider(dirCache, geoCache); err != nil {
		return nil, err
	}

	a.Publisher = events.NopPublisher{}
	if cfg.NATS.URL != "" {
		pub, err := events.NewNATSPublisher(cfg.NATS.URL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pub.Close)
		a.Publisher = pub
		log.Info("publishing routes to nats", zap.String("url", cfg.NATS.URL))
	}

	return a, nil
}

// OpenStore opens the SQLite file holding survey answers and routes,
// creating its directory and schema when missing.
func OpenStore(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); path != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir %q: %w", dir, err)
		}
	}

	store, err := db.OpenSqlite(path)
	if err != nil {
		return nil, err
	}
	if err := repositories.InitSchema(store); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// caches builds the directions cache tiers (LRU in front of Redis or SQL)
// and the geocode cache.
func (a *App) caches(ctx context.Context) (ports.DirectionsCache, ports.GeocodeCache, error) {
	cfg := a.Config

	var (
		back ports.DirectionsCache
		geo  ports.GeocodeCache
	)
	switch cfg.Database.Driver {
	case "pgx":
		pg, err := db.Open(cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, func() { _ = pg.Close() })
		if err := repositories.InitPostgresSchema(pg); err != nil {
			return nil, nil, err
		}
		back = cache.NewSQLDirectionsCache(pg)
		geo = cache.NewSQLGeocodeCache(pg)
	default:
		back = cache.NewSqliteDirectionsCache(a.Store)
		geo = cache.NewSqliteGeocodeCache(a.Store)
	}

	if cfg.Cache.RedisAddr != "" {
		rc, err := cache.NewRedisDirectionsCache(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisTTL)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, func() { _ = rc.Close() })
		back = rc
	}

	if cfg.Cache.MemorySize > 0 {
		front := cache.NewMemoryDirectionsCache(cfg.Cache.MemorySize, cfg.Cache.MemoryTTL)
		return cache.NewTieredDirectionsCache(front, back), geo, nil
	}
	return back, geo, nil
}

func (a *App) provider(dc ports.DirectionsCache, gc ports.GeocodeCache) (ports.DirectionsProvider, error) {
	d := a.Config.Directions
	log := a.log.Named(d.Provider)

	switch d.Provider {
	case "ors":
		return directions.NewORSDirectionsProvider(directions.ORSOptions{
			APIKey:            d.ORSAPIKey,
			BaseURL:           d.ORSBaseURL,
			Country:           d.ORSCountry,
			Timeout:           d.Timeout,
			RequestsPerSecond: d.RequestsPerSecond,
			Cache:             dc,
			GeocodeCache:      gc,
			Log:               log,
		})
	case "google":
		return directions.NewGoogleDirectionsProvider(directions.GoogleOptions{
			APIKey:            d.GoogleAPIKey,
			BaseURL:           d.GoogleBaseURL,
			Timeout:           d.Timeout,
			RequestsPerSecond: d.RequestsPerSecond,
			Cache:             dc,
			Log:               log,
		})
	}
	return nil, fmt.Errorf("unknown directions provider %q", d.Provider)
}

// Plotter returns a route plotter that persists to the route store and
// announces through the publisher.
func (a *App) Plotter() *services.RoutePlotter {
	p := a.Config.Plot
	return services.NewRoutePlotter(a.Provider, a.Config.Lookup, services.PlotOptions{
		Workers:      p.Workers,
		StrictDecode: p.StrictDecode,
		FailFast:     p.FailFast,
		LayerName:    p.LayerName,
		Repo:         a.Routes,
		Publisher:    a.Publisher,
		Log:          a.log.Named("plotter"),
	})
}

// SurveyOptions maps the survey section of the config.
func SurveyOptions(cfg *config.Config) survey.Options {
	opts := survey.DefaultOptions()
	opts.Encoding = cfg.Survey.Encoding
	opts.Columns = survey.Columns{
		Building: cfg.Survey.BuildingColumn,
		Address:  cfg.Survey.AddressColumn,
		City:     cfg.Survey.CityColumn,
		Mode:     cfg.Survey.ModeColumn,
	}
	return opts
}

// Close releases backends in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
