package config

import (
	"fmt"
	"sort"
	"strings"

	"commute-route-service/internal/domain"
)

// Lookup holds the tables that turn survey answers into directions
// requests: school building name to street address, and the mode label
// families picked to a directions mode.
type Lookup struct {
	Buildings map[string]string
	Modes     map[string]domain.TravelMode
}

// LookupTables is the config file form of Lookup. Lists are used instead of
// maps because viper lowercases map keys.
//
//	lookup:
//	  buildings:
//	    - name: "HURRA (DBH eta BATXILERGOA)"
//	      address: "Indianoene Kalea, 1, Donostia"
//	  modes:
//	    - label: "Oinez / A pie"
//	      mode: walking
type LookupTables struct {
	Buildings []BuildingEntry `mapstructure:"buildings"`
	Modes     []ModeEntry     `mapstructure:"modes"`
}

type BuildingEntry struct {
	Name    string `mapstructure:"name"`
	Address string `mapstructure:"address"`
}

type ModeEntry struct {
	Label string `mapstructure:"label"`
	Mode  string `mapstructure:"mode"`
}

// Lookup converts the tables, taking each empty table from def.
func (t LookupTables) Lookup(def Lookup) Lookup {
	out := Lookup{Buildings: def.Buildings, Modes: def.Modes}

	if len(t.Buildings) > 0 {
		out.Buildings = make(map[string]string, len(t.Buildings))
		for _, b := range t.Buildings {
			out.Buildings[strings.TrimSpace(b.Name)] = strings.TrimSpace(b.Address)
		}
	}
	if len(t.Modes) > 0 {
		out.Modes = make(map[string]domain.TravelMode, len(t.Modes))
		for _, m := range t.Modes {
			out.Modes[strings.TrimSpace(m.Label)] = domain.TravelMode(strings.ToLower(strings.TrimSpace(m.Mode)))
		}
	}
	return out
}

// DefaultLookup returns the tables of the 2022 mobility survey.
func DefaultLookup() Lookup {
	return Lookup{
		Buildings: map[string]string{
			"ATEGORRIETA (LH)":            "Atarizar Kalea, 18, 20013 Donostia, Gipuzkoa",
			"VILLA SOROA (HH)":            "Ategorrieta Hiribidea, 24, 20013 Donostia, Gipuzkoa",
			"HURRA (DBH eta BATXILERGOA)": "Indianoene Kalea, 1, Donostia",
		},
		Modes: map[string]domain.TravelMode{
			"Oinez / A pie":           domain.ModeWalking,
			"Autoz / En coche":        domain.ModeDriving,
			"Bizikletaz / En bici":    domain.ModeBicycling,
			"Autobusez / En autobús":  domain.ModeTransit,
			"Motorrez / En moto":      domain.ModeDriving,
			"Patinetez / En patinete": domain.ModeBicycling,
		},
	}
}

// Building returns the address of a school building. Names are matched
// after trimming surrounding whitespace.
func (l Lookup) Building(name string) (string, bool) {
	addr, ok := l.Buildings[strings.TrimSpace(name)]
	return addr, ok
}

// Mode returns the directions mode for a survey label.
func (l Lookup) Mode(label string) (domain.TravelMode, bool) {
	m, ok := l.Modes[strings.TrimSpace(label)]
	return m, ok
}

func (l Lookup) problems() []string {
	var errs []string
	if len(l.Buildings) == 0 {
		errs = append(errs, "lookup.buildings must not be empty")
	}
	if len(l.Modes) == 0 {
		errs = append(errs, "lookup.modes must not be empty")
	}

	labels := make([]string, 0, len(l.Modes))
	for label := range l.Modes {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		if !l.Modes[label].Valid() {
			errs = append(errs, fmt.Sprintf("lookup.modes[%q]: unknown mode %q", label, l.Modes[label]))
		}
	}

	for name, addr := range l.Buildings {
		if strings.TrimSpace(addr) == "" {
			errs = append(errs, fmt.Sprintf("lookup.buildings[%q]: address is empty", name))
		}
	}
	return errs
}
