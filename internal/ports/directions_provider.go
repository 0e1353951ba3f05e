package ports

import (
	"context"
	"errors"

	"commute-route-service/internal/domain"
)

var (
	// ErrNoRoute means the provider answered but found no route.
	ErrNoRoute = errors.New("no route found")
	// ErrUnsupportedMode means the provider cannot route the requested mode.
	ErrUnsupportedMode = errors.New("travel mode not supported by provider")
)

// Directions between two locations as returned by a provider.
// Polyline is the encoded overview geometry of the whole route.
type DirectionsResult struct {
	Polyline        string
	DistanceMeters  int
	DurationSeconds int
	Attribution     string
}

// Contract for retrieving a route between two free-form addresses.
type DirectionsProvider interface {
	// Return the route for req. Implementations must honour ctx cancellation.
	GetDirections(ctx context.Context, req domain.RouteRequest) (DirectionsResult, error)
}
