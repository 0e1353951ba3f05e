package domain

import "time"

// Route is one drawn line feature: the decoded path of a single commute.
// Points are ordered from origin to destination.
type Route struct {
	ID              string
	Row             int
	Building        string
	ModeLabel       string
	Origin          string
	Destination     string
	Mode            TravelMode
	DepartAt        time.Time
	Points          []Coordinates
	Attribution     string
	DistanceMeters  int
	DurationSeconds int
	CreatedAt       time.Time
}

func (r *Route) Empty() bool { return len(r.Points) == 0 }
