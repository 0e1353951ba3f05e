package ports

import (
	"context"

	"commute-route-service/internal/domain"
)

// Port: storage for plotted route features.
type RouteRepository interface {
	// Store routes, replacing any route with the same ID.
	SaveRoutes(ctx context.Context, routes []*domain.Route) error
	// Retrieve all routes ordered by survey row.
	ListRoutes(ctx context.Context) ([]*domain.Route, error)
	// Retrieve the routes heading to one building.
	ListByBuilding(ctx context.Context, building string) ([]*domain.Route, error)
}

// Port: a boundary for retrieving survey answers from a data source.
type CommuteRepository interface {
	ListCommutes(ctx context.Context) ([]domain.Commute, error)
}

// Announces routes as they are plotted.
type RoutePublisher interface {
	PublishRoute(ctx context.Context, route *domain.Route) error
}
