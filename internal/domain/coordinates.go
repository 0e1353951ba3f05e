package domain

import "math"

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Bounds is an axis-aligned bounding box in degrees.
type Bounds struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// Extend grows the box to include c. A zero Bounds with ok=false is
// treated as empty.
func (b Bounds) Extend(c Coordinates, ok bool) Bounds {
	if !ok {
		return Bounds{MinLon: c.Lon, MinLat: c.Lat, MaxLon: c.Lon, MaxLat: c.Lat}
	}
	return Bounds{
		MinLon: math.Min(b.MinLon, c.Lon),
		MinLat: math.Min(b.MinLat, c.Lat),
		MaxLon: math.Max(b.MaxLon, c.Lon),
		MaxLat: math.Max(b.MaxLat, c.Lat),
	}
}
