package domain

import (
	"strings"
	"time"
)

// Commute is a single survey answer: where a family lives, which school
// building they travel to, and how they said they get there.
type Commute struct {
	Row       int
	Building  string
	Address   string
	City      string
	ModeLabel string
}

// Origin joins street address and city the way the directions
// services expect a free-form address.
func (c Commute) Origin() string {
	addr := strings.TrimSpace(c.Address)
	city := strings.TrimSpace(c.City)
	switch {
	case addr == "":
		return city
	case city == "":
		return addr
	}
	return addr + ", " + city
}

// RouteRequest is a commute resolved against the building and mode tables.
type RouteRequest struct {
	Row         int
	Building    string
	ModeLabel   string
	Origin      string
	Destination string
	Mode        TravelMode
	DepartAt    time.Time
}
