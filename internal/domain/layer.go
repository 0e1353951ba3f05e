package domain

// DefaultLayerName matches the name of the route layer users open in
// their GIS tool.
const DefaultLayerName = "route"

// Layer is an ordered collection of route features sharing one schema
// (a LineString geometry and an attribution field).
type Layer struct {
	Name   string
	Routes []*Route
}

func NewLayer(name string) *Layer {
	if name == "" {
		name = DefaultLayerName
	}
	return &Layer{Name: name, Routes: []*Route{}}
}

// Add appends routes in the given order. Nil routes are ignored.
func (l *Layer) Add(routes ...*Route) {
	for _, r := range routes {
		if r != nil {
			l.Routes = append(l.Routes, r)
		}
	}
}

// Extent returns the bounding box of every point in the layer.
// ok is false when the layer has no points.
func (l *Layer) Extent() (b Bounds, ok bool) {
	for _, r := range l.Routes {
		for _, p := range r.Points {
			b = b.Extend(p, ok)
			ok = true
		}
	}
	return b, ok
}
