package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"commute-route-service/internal/domain"
	"commute-route-service/internal/platform/obs"
	"commute-route-service/internal/polyline"
	"commute-route-service/internal/ports"
)

// BuildRoute fetches directions for req and decodes the overview polyline
// into a route feature. With strict set, a malformed polyline is an error
// instead of a best-effort decode.
func BuildRoute(
	ctx context.Context,
	provider ports.DirectionsProvider,
	req domain.RouteRequest,
	strict bool,
) (*domain.Route, error) {
	res, err := provider.GetDirections(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("build route: get directions %q -> %q: %w", req.Origin, req.Destination, err)
	}

	var points []domain.Coordinates
	if strict {
		points, err = polyline.DecodeStrict(res.Polyline)
		if err != nil {
			return nil, fmt.Errorf("build route: decode polyline: %w", err)
		}
	} else {
		points = polyline.Decode(res.Polyline)
	}
	obs.DecodedPoints.Observe(float64(len(points)))

	return &domain.Route{
		ID:              uuid.NewString(),
		Row:             req.Row,
		Building:        req.Building,
		ModeLabel:       req.ModeLabel,
		Origin:          req.Origin,
		Destination:     req.Destination,
		Mode:            req.Mode,
		DepartAt:        req.DepartAt,
		Points:          points,
		Attribution:     res.Attribution,
		DistanceMeters:  res.DistanceMeters,
		DurationSeconds: res.DurationSeconds,
		CreatedAt:       time.Now().UTC(),
	}, nil
}
