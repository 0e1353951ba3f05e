package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"commute-route-service/internal/config"
	"commute-route-service/internal/domain"
	"commute-route-service/internal/platform/obs"
	"commute-route-service/internal/ports"
)

const DefaultWorkers = 4

type PlotOptions struct {
	// Workers bounds concurrent directions lookups. Zero means DefaultWorkers.
	Workers      int
	StrictDecode bool
	// FailFast aborts the run on the first directions or decode error
	// instead of skipping the row.
	FailFast  bool
	LayerName string
	// Repo and Publisher are optional.
	Repo      ports.RouteRepository
	Publisher ports.RoutePublisher
	Log       *zap.Logger
}

type SkippedRow struct {
	Row      int    `json:"row"`
	Building string `json:"building"`
	Reason   string `json:"reason"`
}

type PlotReport struct {
	Total   int          `json:"total"`
	Plotted int          `json:"plotted"`
	Empty   int          `json:"empty"`
	Skipped []SkippedRow `json:"skipped"`
}

// RoutePlotter draws one route per survey answer into a layer.
type RoutePlotter struct {
	provider ports.DirectionsProvider
	lookup   config.Lookup
	opts     PlotOptions
}

func NewRoutePlotter(provider ports.DirectionsProvider, lookup config.Lookup, opts PlotOptions) *RoutePlotter {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &RoutePlotter{provider: provider, lookup: lookup, opts: opts}
}

type routeResult struct {
	route *domain.Route
	err   error
}

// Plot resolves, fetches and decodes a route for every commute. Rows that
// cannot be resolved or routed are reported as skipped; the layer keeps
// the input order of the rows that made it.
func (p *RoutePlotter) Plot(
	ctx context.Context,
	commutes []domain.Commute,
	departAt time.Time,
) (_ *domain.Layer, report PlotReport, err error) {
	defer obs.Time(ctx, p.opts.Log, "plotter.Plot")(&err)

	report = PlotReport{Total: len(commutes), Skipped: []SkippedRow{}}
	layer := domain.NewLayer(p.opts.LayerName)

	requests := make([]domain.RouteRequest, 0, len(commutes))
	for _, c := range commutes {
		req, err := ResolveCommute(c, p.lookup, departAt)
		if err != nil {
			p.skip(&report, c.Row, c.Building, err)
			continue
		}
		requests = append(requests, req)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]routeResult, len(requests))
	sem := make(chan struct{}, p.opts.Workers)
	var (
		wg       sync.WaitGroup
		failOnce sync.Once
		failErr  error
	)

	for i, req := range requests {
		wg.Add(1)
		go func(i int, req domain.RouteRequest) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-runCtx.Done():
				results[i] = routeResult{err: runCtx.Err()}
				return
			}
			defer func() { <-sem }()

			route, err := BuildRoute(runCtx, p.provider, req, p.opts.StrictDecode)
			results[i] = routeResult{route: route, err: err}

			if err != nil && p.opts.FailFast {
				failOnce.Do(func() {
					failErr = fmt.Errorf("plot routes: row %d: %w", req.Row, err)
					cancel()
				})
			}
		}(i, req)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, report, fmt.Errorf("plot routes: %w", err)
	}
	if failErr != nil {
		return nil, report, failErr
	}

	for i, res := range results {
		req := requests[i]
		if res.err != nil {
			p.skip(&report, req.Row, req.Building, res.err)
			continue
		}

		route := res.route
		if route.Empty() {
			p.opts.Log.Warn("no points for route",
				zap.Int("row", req.Row),
				zap.String("origin", req.Origin),
				zap.String("destination", req.Destination),
			)
			report.Empty++
			obs.RoutesPlotted.WithLabelValues("empty").Inc()
		} else {
			obs.RoutesPlotted.WithLabelValues("plotted").Inc()
		}
		report.Plotted++
		layer.Add(route)
	}

	sort.SliceStable(report.Skipped, func(a, b int) bool {
		return report.Skipped[a].Row < report.Skipped[b].Row
	})

	if p.opts.Repo != nil && len(layer.Routes) > 0 {
		if err := p.opts.Repo.SaveRoutes(ctx, layer.Routes); err != nil {
			return nil, report, fmt.Errorf("plot routes: save routes: %w", err)
		}
	}

	if p.opts.Publisher != nil {
		for _, r := range layer.Routes {
			if err := p.opts.Publisher.PublishRoute(ctx, r); err != nil {
				p.opts.Log.Warn("publish route failed", zap.String("id", r.ID), zap.Error(err))
			}
		}
	}

	p.opts.Log.Info("routes plotted",
		zap.Int("total", report.Total),
		zap.Int("plotted", report.Plotted),
		zap.Int("empty", report.Empty),
		zap.Int("skipped", len(report.Skipped)),
	)

	return layer, report, nil
}

func (p *RoutePlotter) skip(report *PlotReport, row int, building string, err error) {
	p.opts.Log.Info("skipping row", zap.Int("row", row), zap.Error(err))
	report.Skipped = append(report.Skipped, SkippedRow{Row: row, Building: building, Reason: err.Error()})
	obs.RoutesPlotted.WithLabelValues("skipped").Inc()
}

// PlotStored plots the commutes held in repo, optionally only those
// heading to one building.
func (p *RoutePlotter) PlotStored(
	ctx context.Context,
	repo ports.CommuteRepository,
	building string,
	departAt time.Time,
) (*domain.Layer, PlotReport, error) {
	commutes, err := repo.ListCommutes(ctx)
	if err != nil {
		return nil, PlotReport{}, fmt.Errorf("plot stored: list commutes: %w", err)
	}

	if building != "" {
		building = strings.TrimSpace(building)
		if _, ok := p.lookup.Building(building); !ok {
			return nil, PlotReport{}, fmt.Errorf("plot stored: %q: %w", building, ErrUnknownBuilding)
		}
		filtered := commutes[:0]
		for _, c := range commutes {
			if strings.TrimSpace(c.Building) == building {
				filtered = append(filtered, c)
			}
		}
		commutes = filtered
	}

	return p.Plot(ctx, commutes, departAt)
}
