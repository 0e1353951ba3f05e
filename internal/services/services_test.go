package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commute-route-service/internal/adapters/directions"
	"commute-route-service/internal/config"
	"commute-route-service/internal/domain"
	"commute-route-service/internal/polyline"
	"commute-route-service/internal/ports"
)

const (
	hurra       = "HURRA (DBH eta BATXILERGOA)"
	hurraAddr   = "Indianoene Kalea, 1, Donostia"
	villa       = "VILLA SOROA (HH)"
	villaAddr   = "Ategorrieta Hiribidea, 24, 20013 Donostia, Gipuzkoa"
	refPolyline = "_p~iF~ps|U_ulLnnqC_mqNvxq`@"
)

var depart = time.Date(2022, 10, 3, 8, 0, 0, 0, time.UTC)

func TestResolveCommute(t *testing.T) {
	lookup := config.DefaultLookup()

	tests := []struct {
		name    string
		commute domain.Commute
		want    domain.RouteRequest
		err     error
	}{
		{
			name:    "walking",
			commute: domain.Commute{Row: 1, Building: hurra, Address: "Zubieta 5", City: "Donostia", ModeLabel: " Oinez / A pie "},
			want: domain.RouteRequest{
				Row: 1, Building: hurra, ModeLabel: "Oinez / A pie",
				Origin: "Zubieta 5, Donostia", Destination: hurraAddr,
				Mode: domain.ModeWalking, DepartAt: depart,
			},
		},
		{
			name:    "bus",
			commute: domain.Commute{Row: 2, Building: villa, Address: "Miracruz 10", City: "Donostia", ModeLabel: "Autobusez / En autobús"},
			want: domain.RouteRequest{
				Row: 2, Building: villa, ModeLabel: "Autobusez / En autobús",
				Origin: "Miracruz 10, Donostia", Destination: villaAddr,
				Mode: domain.ModeTransit, DepartAt: depart,
			},
		},
		{
			name:    "unknown building",
			commute: domain.Commute{Row: 3, Building: "Elsewhere", Address: "Zubieta 5", ModeLabel: "Oinez / A pie"},
			err:     ErrUnknownBuilding,
		},
		{
			name:    "unknown mode",
			commute: domain.Commute{Row: 4, Building: hurra, Address: "Zubieta 5", ModeLabel: "Zaldiz"},
			err:     ErrUnknownMode,
		},
		{
			name:    "empty address",
			commute: domain.Commute{Row: 5, Building: hurra, Address: "  ", City: "Donostia", ModeLabel: "Oinez / A pie"},
			err:     ErrEmptyAddress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveCommute(tt.commute, lookup, depart)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildRoute(t *testing.T) {
	provider := directions.NewMockDirectionsProvider([]directions.MockRoute{
		{From: "Zubieta 5, Donostia", To: hurraAddr, Mode: domain.ModeWalking, Result: ports.DirectionsResult{
			Polyline: refPolyline, DistanceMeters: 1200, DurationSeconds: 900, Attribution: "route provided by google maps api",
		}},
	})
	req := domain.RouteRequest{Row: 7, Building: hurra, Origin: "Zubieta 5, Donostia", Destination: hurraAddr, Mode: domain.ModeWalking, DepartAt: depart}

	route, err := BuildRoute(context.Background(), provider, req, false)
	require.NoError(t, err)
	assert.NotEmpty(t, route.ID)
	assert.Equal(t, 7, route.Row)
	assert.Equal(t, polyline.Decode(refPolyline), route.Points)
	assert.Equal(t, 1200, route.DistanceMeters)
	assert.Equal(t, "route provided by google maps api", route.Attribution)
	assert.False(t, route.CreatedAt.IsZero())

	req.Mode = domain.ModeDriving
	_, err = BuildRoute(context.Background(), provider, req, false)
	assert.ErrorIs(t, err, ports.ErrNoRoute)
}

type memRouteRepo struct {
	mu     sync.Mutex
	routes []*domain.Route
}

func (m *memRouteRepo) SaveRoutes(_ context.Context, routes []*domain.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, routes...)
	return nil
}

func (m *memRouteRepo) ListRoutes(context.Context) ([]*domain.Route, error) { return m.routes, nil }

func (m *memRouteRepo) ListByBuilding(_ context.Context, b string) ([]*domain.Route, error) {
	var out []*domain.Route
	for _, r := range m.routes {
		if r.Building == b {
			out = append(out, r)
		}
	}
	return out, nil
}

type memPublisher struct {
	mu  sync.Mutex
	ids []string
}

func (p *memPublisher) PublishRoute(_ context.Context, r *domain.Route) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, r.ID)
	return nil
}

type memCommuteRepo []domain.Commute

func (m memCommuteRepo) ListCommutes(context.Context) ([]domain.Commute, error) {
	return append([]domain.Commute(nil), m...), nil
}

func surveyRows() []domain.Commute {
	return []domain.Commute{
		{Row: 1, Building: hurra, Address: "Zubieta 5", City: "Donostia", ModeLabel: "Oinez / A pie"},
		{Row: 2, Building: "Elsewhere", Address: "Zubieta 5", City: "Donostia", ModeLabel: "Oinez / A pie"},
		{Row: 3, Building: hurra, Address: "Zubieta 5", City: "Donostia", ModeLabel: "Zaldiz"},
		{Row: 4, Building: villa, Address: "Miracruz 10", City: "Donostia", ModeLabel: "Autoz / En coche"},
		{Row: 5, Building: villa, Address: "Unmapped 1", City: "Donostia", ModeLabel: "Autoz / En coche"},
		{Row: 6, Building: hurra, Address: "Miracruz 10", City: "Donostia", ModeLabel: "Bizikletaz / En bici"},
	}
}

func surveyProvider() *directions.MockDirectionsProvider {
	return directions.NewMockDirectionsProvider([]directions.MockRoute{
		{From: "Zubieta 5, Donostia", To: hurraAddr, Mode: domain.ModeWalking, Result: ports.DirectionsResult{Polyline: refPolyline}},
		{From: "Miracruz 10, Donostia", To: villaAddr, Mode: domain.ModeDriving, Result: ports.DirectionsResult{Polyline: ""}},
		{From: "Miracruz 10, Donostia", To: hurraAddr, Mode: domain.ModeBicycling, Result: ports.DirectionsResult{Polyline: "_p~iF~ps|U"}},
	})
}

func TestPlot(t *testing.T) {
	repo := &memRouteRepo{}
	pub := &memPublisher{}
	plotter := NewRoutePlotter(surveyProvider(), config.DefaultLookup(), PlotOptions{Repo: repo, Publisher: pub})

	layer, report, err := plotter.Plot(context.Background(), surveyRows(), depart)
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultLayerName, layer.Name)
	require.Len(t, layer.Routes, 3)
	assert.Equal(t, 1, layer.Routes[0].Row)
	assert.Equal(t, 4, layer.Routes[1].Row)
	assert.Equal(t, 6, layer.Routes[2].Row)
	assert.True(t, layer.Routes[1].Empty())
	assert.Equal(t, depart, layer.Routes[0].DepartAt)

	assert.Equal(t, 6, report.Total)
	assert.Equal(t, 3, report.Plotted)
	assert.Equal(t, 1, report.Empty)
	require.Len(t, report.Skipped, 3)
	assert.Equal(t, 2, report.Skipped[0].Row)
	assert.Contains(t, report.Skipped[0].Reason, ErrUnknownBuilding.Error())
	assert.Equal(t, 3, report.Skipped[1].Row)
	assert.Contains(t, report.Skipped[1].Reason, ErrUnknownMode.Error())
	assert.Equal(t, 5, report.Skipped[2].Row)
	assert.Contains(t, report.Skipped[2].Reason, ports.ErrNoRoute.Error())

	assert.Len(t, repo.routes, 3)
	assert.Len(t, pub.ids, 3)
}

func TestPlotStrictDecodeSkipsMalformed(t *testing.T) {
	provider := directions.NewMockDirectionsProvider([]directions.MockRoute{
		{From: "Zubieta 5, Donostia", To: hurraAddr, Mode: domain.ModeWalking, Result: ports.DirectionsResult{Polyline: "AA_"}},
	})
	rows := surveyRows()[:1]

	_, report, err := NewRoutePlotter(provider, config.DefaultLookup(), PlotOptions{}).Plot(context.Background(), rows, depart)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Plotted)

	_, report, err = NewRoutePlotter(provider, config.DefaultLookup(), PlotOptions{StrictDecode: true}).Plot(context.Background(), rows, depart)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Plotted)
	require.Len(t, report.Skipped, 1)
	assert.Contains(t, report.Skipped[0].Reason, polyline.ErrTruncated.Error())
}

func TestPlotFailFast(t *testing.T) {
	plotter := NewRoutePlotter(surveyProvider(), config.DefaultLookup(), PlotOptions{FailFast: true})

	layer, _, err := plotter.Plot(context.Background(), surveyRows(), depart)
	assert.Nil(t, layer)
	assert.ErrorIs(t, err, ports.ErrNoRoute)
}

func TestPlotCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewRoutePlotter(surveyProvider(), config.DefaultLookup(), PlotOptions{}).Plot(ctx, surveyRows(), depart)
	assert.ErrorIs(t, err, context.Canceled)
}

// slowProvider answers later rows first and records peak concurrency.
type slowProvider struct {
	active, peak atomic.Int32
}

func (s *slowProvider) GetDirections(ctx context.Context, req domain.RouteRequest) (ports.DirectionsResult, error) {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}

	select {
	case <-time.After(time.Duration(20-req.Row) * 2 * time.Millisecond):
	case <-ctx.Done():
		return ports.DirectionsResult{}, ctx.Err()
	}
	return ports.DirectionsResult{Polyline: refPolyline}, nil
}

func TestPlotKeepsRowOrderAndBoundsWorkers(t *testing.T) {
	rows := make([]domain.Commute, 0, 12)
	for i := 1; i <= 12; i++ {
		rows = append(rows, domain.Commute{Row: i, Building: hurra, Address: "Zubieta 5", City: "Donostia", ModeLabel: "Oinez / A pie"})
	}

	provider := &slowProvider{}
	layer, report, err := NewRoutePlotter(provider, config.DefaultLookup(), PlotOptions{Workers: 3}).Plot(context.Background(), rows, depart)
	require.NoError(t, err)
	assert.Equal(t, 12, report.Plotted)

	for i, r := range layer.Routes {
		assert.Equal(t, i+1, r.Row)
	}
	assert.LessOrEqual(t, provider.peak.Load(), int32(3))
}

func TestPlotStored(t *testing.T) {
	plotter := NewRoutePlotter(surveyProvider(), config.DefaultLookup(), PlotOptions{})
	repo := memCommuteRepo(surveyRows())

	layer, report, err := plotter.PlotStored(context.Background(), repo, villa, depart)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	require.Len(t, layer.Routes, 1)
	assert.Equal(t, 4, layer.Routes[0].Row)

	_, _, err = plotter.PlotStored(context.Background(), repo, "Elsewhere", depart)
	assert.True(t, errors.Is(err, ErrUnknownBuilding))
}
