package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"commute-route-service/internal/config"
	"commute-route-service/internal/domain"
)

var (
	ErrUnknownBuilding = errors.New("unknown building")
	ErrUnknownMode     = errors.New("unknown travel mode label")
	ErrEmptyAddress    = errors.New("empty home address")
)

// ResolveCommute turns a survey answer into a directions request using the
// building and mode tables.
func ResolveCommute(c domain.Commute, lookup config.Lookup, departAt time.Time) (domain.RouteRequest, error) {
	origin := c.Origin()
	if strings.TrimSpace(c.Address) == "" || origin == "" {
		return domain.RouteRequest{}, fmt.Errorf("resolve commute: row %d: %w", c.Row, ErrEmptyAddress)
	}

	destination, ok := lookup.Building(c.Building)
	if !ok {
		return domain.RouteRequest{}, fmt.Errorf("resolve commute: row %d: %q: %w", c.Row, c.Building, ErrUnknownBuilding)
	}

	mode, ok := lookup.Mode(c.ModeLabel)
	if !ok {
		return domain.RouteRequest{}, fmt.Errorf("resolve commute: row %d: %q: %w", c.Row, c.ModeLabel, ErrUnknownMode)
	}

	return domain.RouteRequest{
		Row:         c.Row,
		Building:    strings.TrimSpace(c.Building),
		ModeLabel:   strings.TrimSpace(c.ModeLabel),
		Origin:      origin,
		Destination: destination,
		Mode:        mode,
		DepartAt:    departAt,
	}, nil
}
