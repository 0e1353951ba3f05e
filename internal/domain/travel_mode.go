package domain

import "strings"

// TravelMode is the provider-neutral directions mode keyword.
type TravelMode string

const (
	ModeDriving   TravelMode = "driving"
	ModeWalking   TravelMode = "walking"
	ModeBicycling TravelMode = "bicycling"
	ModeTransit   TravelMode = "transit"
)

func (m TravelMode) Valid() bool {
	switch m {
	case ModeDriving, ModeWalking, ModeBicycling, ModeTransit:
		return true
	}
	return false
}

// ParseTravelMode accepts the keyword in any case.
func ParseTravelMode(s string) (TravelMode, bool) {
	m := TravelMode(strings.ToLower(strings.TrimSpace(s)))
	return m, m.Valid()
}
