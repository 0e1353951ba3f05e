package directions

import (
	"context"
	"fmt"
	"sync"

	"commute-route-service/internal/domain"
	"commute-route-service/internal/ports"
)

type MockRoute struct {
	From, To string
	Mode     domain.TravelMode
	Result   ports.DirectionsResult
	Err      error
}

// MockDirectionsProvider serves canned results keyed by
// "origin|destination|mode" and counts the calls it receives.
type MockDirectionsProvider struct {
	m map[string]MockRoute

	mu    sync.Mutex
	calls int
}

func NewMockDirectionsProvider(routes []MockRoute) *MockDirectionsProvider {
	m := make(map[string]MockRoute, len(routes))
	for _, r := range routes {
		m[ports.NewDirectionsKey(r.From, r.To, r.Mode).String()] = r
	}
	return &MockDirectionsProvider{m: m}
}

func (p *MockDirectionsProvider) GetDirections(ctx context.Context, req domain.RouteRequest) (ports.DirectionsResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.DirectionsResult{}, err
	}

	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	key := ports.NewDirectionsKey(req.Origin, req.Destination, req.Mode)
	r, ok := p.m[key.String()]
	if !ok {
		return ports.DirectionsResult{}, fmt.Errorf("missing route %q: %w", key.String(), ports.ErrNoRoute)
	}
	if r.Err != nil {
		return ports.DirectionsResult{}, r.Err
	}

	return r.Result, nil
}

func (p *MockDirectionsProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
