package geojson

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commute-route-service/internal/domain"
)

func testLayer() *domain.Layer {
	layer := domain.NewLayer("")
	layer.Add(
		&domain.Route{
			ID:          "a",
			Row:         1,
			Building:    "HURRA (DBH eta BATXILERGOA)",
			Mode:        domain.ModeWalking,
			Origin:      "Zubieta 5, Donostia",
			Destination: "Indianoene Kalea, 1, Donostia",
			Points: []domain.Coordinates{
				{Lon: -120.2, Lat: 38.5},
				{Lon: -120.95, Lat: 40.7},
				{Lon: -126.453, Lat: 43.252},
			},
			Attribution:     "route provided by google maps api",
			DistanceMeters:  1200,
			DurationSeconds: 900,
		},
		&domain.Route{ID: "b", Row: 2, Mode: domain.ModeDriving, Attribution: "route provided by google maps api"},
	)
	return layer
}

func TestWriteLayer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLayer(&buf, testLayer()))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, "FeatureCollection", raw["type"])
	assert.Equal(t, "route", raw["name"])
	assert.Equal(t, []any{-126.453, 38.5, -120.2, 43.252}, raw["bbox"])

	features := raw["features"].([]any)
	require.Len(t, features, 2)

	first := features[0].(map[string]any)
	geom := first["geometry"].(map[string]any)
	assert.Equal(t, "LineString", geom["type"])
	assert.Equal(t, []any{-120.2, 38.5}, geom["coordinates"].([]any)[0])

	props := first["properties"].(map[string]any)
	assert.Equal(t, "route provided by google maps api", props["attribution"])
	assert.Equal(t, "walking", props["mode"])
	assert.EqualValues(t, 1200, props["distance_meters"])

	empty := features[1].(map[string]any)["geometry"].(map[string]any)
	assert.Equal(t, []any{}, empty["coordinates"])
}

func TestReadLayerRoundTrip(t *testing.T) {
	want := testLayer()

	var buf bytes.Buffer
	require.NoError(t, WriteLayer(&buf, want))

	got, err := ReadLayer(&buf)
	require.NoError(t, err)
	assert.Equal(t, want.Name, got.Name)
	require.Len(t, got.Routes, 2)
	assert.Equal(t, want.Routes[0].Points, got.Routes[0].Points)
	assert.Equal(t, want.Routes[0].Origin, got.Routes[0].Origin)
	assert.True(t, got.Routes[1].Empty())
}

func TestReadLayerRejectsOtherGeometry(t *testing.T) {
	tests := map[string]string{
		"not a collection": `{"type":"Feature"}`,
		"point":            `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]}}]}`,
		"short position":   `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"LineString","coordinates":[[1]]}}]}`,
		"malformed":        `{"type":`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadLayer(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestWriteLayerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.geojson")
	require.NoError(t, WriteLayerFile(path, testLayer()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := ReadLayer(f)
	require.NoError(t, err)
	assert.Len(t, got.Routes, 2)
}
