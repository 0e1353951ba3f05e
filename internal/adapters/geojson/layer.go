// Package geojson writes route layers as GeoJSON feature collections and
// reads them back.
package geojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"commute-route-service/internal/domain"
)

const (
	typeFeatureCollection = "FeatureCollection"
	typeFeature           = "Feature"
	typeLineString        = "LineString"
)

// FeatureCollection is a layer of line features. Name is the non-standard
// member GIS tools use for the layer name.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Name     string    `json:"name,omitempty"`
	BBox     []float64 `json:"bbox,omitempty"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string     `json:"type"`
	Properties Properties `json:"properties"`
	Geometry   Geometry   `json:"geometry"`
}

type Properties struct {
	Attribution     string `json:"attribution"`
	ID              string `json:"id"`
	Row             int    `json:"row"`
	Building        string `json:"building"`
	Mode            string `json:"mode"`
	Origin          string `json:"origin"`
	Destination     string `json:"destination"`
	DistanceMeters  int    `json:"distance_meters"`
	DurationSeconds int    `json:"duration_seconds"`
}

type Geometry struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"` // [Lon, Lat]
}

// FromLayer converts a layer to a feature collection, one LineString per
// route in layer order.
func FromLayer(layer *domain.Layer) FeatureCollection {
	fc := FeatureCollection{
		Type:     typeFeatureCollection,
		Name:     layer.Name,
		Features: make([]Feature, 0, len(layer.Routes)),
	}
	if b, ok := layer.Extent(); ok {
		fc.BBox = []float64{b.MinLon, b.MinLat, b.MaxLon, b.MaxLat}
	}

	for _, r := range layer.Routes {
		coords := make([][]float64, 0, len(r.Points))
		for _, p := range r.Points {
			coords = append(coords, p.CoordsToList())
		}
		fc.Features = append(fc.Features, Feature{
			Type: typeFeature,
			Properties: Properties{
				Attribution:     r.Attribution,
				ID:              r.ID,
				Row:             r.Row,
				Building:        r.Building,
				Mode:            string(r.Mode),
				Origin:          r.Origin,
				Destination:     r.Destination,
				DistanceMeters:  r.DistanceMeters,
				DurationSeconds: r.DurationSeconds,
			},
			Geometry: Geometry{Type: typeLineString, Coordinates: coords},
		})
	}
	return fc
}

// ToLayer converts a feature collection back to a layer.
func (fc FeatureCollection) ToLayer() (*domain.Layer, error) {
	if fc.Type != typeFeatureCollection {
		return nil, fmt.Errorf("geojson: type %q is not a %s", fc.Type, typeFeatureCollection)
	}

	layer := domain.NewLayer(fc.Name)
	for i, f := range fc.Features {
		if f.Geometry.Type != typeLineString {
			return nil, fmt.Errorf("geojson: feature %d: geometry %q is not a %s", i, f.Geometry.Type, typeLineString)
		}

		points := make([]domain.Coordinates, 0, len(f.Geometry.Coordinates))
		for j, c := range f.Geometry.Coordinates {
			if len(c) < 2 {
				return nil, fmt.Errorf("geojson: feature %d: position %d has %d values", i, j, len(c))
			}
			points = append(points, domain.Coordinates{Lon: c[0], Lat: c[1]})
		}

		p := f.Properties
		layer.Add(&domain.Route{
			ID:              p.ID,
			Row:             p.Row,
			Building:        p.Building,
			Mode:            domain.TravelMode(p.Mode),
			Origin:          p.Origin,
			Destination:     p.Destination,
			Points:          points,
			Attribution:     p.Attribution,
			DistanceMeters:  p.DistanceMeters,
			DurationSeconds: p.DurationSeconds,
		})
	}
	return layer, nil
}

func WriteLayer(w io.Writer, layer *domain.Layer) error {
	if layer == nil {
		return errors.New("geojson: nil layer")
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromLayer(layer)); err != nil {
		return fmt.Errorf("geojson: encode layer: %w", err)
	}
	return nil
}

func ReadLayer(r io.Reader) (*domain.Layer, error) {
	var fc FeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("geojson: decode layer: %w", err)
	}
	return fc.ToLayer()
}

// WriteLayerFile writes the layer to path, replacing any existing file.
func WriteLayerFile(path string, layer *domain.Layer) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("geojson: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("geojson: close %s: %w", path, cerr)
		}
	}()

	return WriteLayer(f, layer)
}
