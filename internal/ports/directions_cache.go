package ports

import (
	"context"
	"strings"

	"commute-route-service/internal/domain"
)

// DirectionsKey identifies a cached route. Build it with NewDirectionsKey so
// equivalent addresses share an entry.
type DirectionsKey struct {
	Origin      string
	Destination string
	Mode        domain.TravelMode
}

func NewDirectionsKey(origin, destination string, mode domain.TravelMode) DirectionsKey {
	return DirectionsKey{
		Origin:      NormalizeAddress(origin),
		Destination: NormalizeAddress(destination),
		Mode:        mode,
	}
}

// String renders the key as "origin|destination|mode".
func (k DirectionsKey) String() string {
	return k.Origin + "|" + k.Destination + "|" + string(k.Mode)
}

// NormalizeAddress collapses runs of whitespace so cache keys are stable.
func NormalizeAddress(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Persistent or in-process store of directions results.
type DirectionsCache interface {
	// Get reports ok=false on a miss; err is reserved for backend failures.
	Get(ctx context.Context, key DirectionsKey) (result DirectionsResult, ok bool, err error)
	Put(ctx context.Context, key DirectionsKey, result DirectionsResult) error
}
