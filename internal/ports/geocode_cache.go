package ports

import (
	"context"

	"commute-route-service/internal/domain"
)

// Store of address -> coordinates lookups. Address keys are expected to be
// normalized by the caller.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}
