package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commute-route-service/internal/domain"
)

func TestDefaultLookup(t *testing.T) {
	l := DefaultLookup()

	addr, ok := l.Building("  HURRA (DBH eta BATXILERGOA) ")
	require.True(t, ok)
	assert.Equal(t, "Indianoene Kalea, 1, Donostia", addr)

	tests := map[string]domain.TravelMode{
		"Oinez / A pie":           domain.ModeWalking,
		"Autoz / En coche":        domain.ModeDriving,
		"Bizikletaz / En bici":    domain.ModeBicycling,
		"Autobusez / En autobús":  domain.ModeTransit,
		"Motorrez / En moto":      domain.ModeDriving,
		"Patinetez / En patinete": domain.ModeBicycling,
	}
	for label, want := range tests {
		got, ok := l.Mode(label)
		require.True(t, ok, label)
		assert.Equal(t, want, got, label)
	}

	_, ok = l.Mode("Hegan / Volando")
	assert.False(t, ok)
	assert.Empty(t, l.problems())
}

func TestLookupTablesOverrideDefaults(t *testing.T) {
	tables := LookupTables{
		Buildings: []BuildingEntry{{Name: " Main Campus ", Address: " 1 School Rd "}},
	}

	l := tables.Lookup(DefaultLookup())

	assert.Equal(t, map[string]string{"Main Campus": "1 School Rd"}, l.Buildings)
	assert.Equal(t, DefaultLookup().Modes, l.Modes)
}

func TestLookupProblems(t *testing.T) {
	l := Lookup{
		Buildings: map[string]string{"A": " "},
		Modes:     map[string]domain.TravelMode{"Flying": "flying"},
	}

	problems := l.problems()
	assert.Len(t, problems, 2)
}

func TestLoadFromEnvironmentAndFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
directions:
  provider: ors
lookup:
  buildings:
    - name: "North Building"
      address: "2 North St, Springfield"
  modes:
    - label: "By Foot"
      mode: Walking
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))
	t.Chdir(dir)

	t.Setenv("COMMUTE_DIRECTIONS_ORS_API_KEY", "secret")
	t.Setenv("COMMUTE_PLOT_WORKERS", "8")
	t.Setenv("COMMUTE_DIRECTIONS_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ors", cfg.Directions.Provider)
	assert.Equal(t, "secret", cfg.Directions.ORSAPIKey)
	assert.Equal(t, 8, cfg.Plot.Workers)
	assert.Equal(t, "3s", cfg.Directions.Timeout.String())
	assert.Equal(t, map[string]string{"North Building": "2 North St, Springfield"}, cfg.Lookup.Buildings)
	assert.Equal(t, map[string]domain.TravelMode{"By Foot": domain.ModeWalking}, cfg.Lookup.Modes)
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Config{
		Database:   DatabaseConfig{Driver: "mysql"},
		Directions: DirectionsConfig{Provider: "google"},
		Survey:     SurveyConfig{Encoding: "latin1"},
		Plot:       PlotConfig{Workers: 0},
		Lookup:     DefaultLookup(),
	}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"database.driver",
		"directions.google_api_key",
		"directions.timeout",
		"directions.requests_per_second",
		"plot.workers",
	} {
		assert.Contains(t, err.Error(), want)
	}
}
