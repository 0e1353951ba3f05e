package domain

import "testing"

func TestCommuteOrigin(t *testing.T) {
	tests := []struct {
		c    Commute
		want string
	}{
		{Commute{Address: "Zubieta 5", City: "Donostia"}, "Zubieta 5, Donostia"},
		{Commute{Address: " Zubieta 5 ", City: ""}, "Zubieta 5"},
		{Commute{Address: "", City: "Donostia"}, "Donostia"},
		{Commute{}, ""},
	}
	for _, tt := range tests {
		if got := tt.c.Origin(); got != tt.want {
			t.Errorf("Origin(%+v) = %q, want %q", tt.c, got, tt.want)
		}
	}
}

func TestParseTravelMode(t *testing.T) {
	if m, ok := ParseTravelMode(" Walking "); !ok || m != ModeWalking {
		t.Fatalf("expected walking, got %q ok=%v", m, ok)
	}
	if _, ok := ParseTravelMode("teleport"); ok {
		t.Fatal("expected teleport to be rejected")
	}
}

func TestLayerKeepsOrderAndSkipsNil(t *testing.T) {
	layer := NewLayer("")
	if layer.Name != DefaultLayerName {
		t.Fatalf("expected default name %q, got %q", DefaultLayerName, layer.Name)
	}

	layer.Add(&Route{ID: "a", Row: 2}, nil, &Route{ID: "b", Row: 1})
	if len(layer.Routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(layer.Routes))
	}
	if layer.Routes[0].ID != "a" || layer.Routes[1].ID != "b" {
		t.Fatalf("unexpected order: %q, %q", layer.Routes[0].ID, layer.Routes[1].ID)
	}
	if !layer.Routes[0].Empty() {
		t.Fatal("expected route without points to be empty")
	}
}

func TestLayerExtent(t *testing.T) {
	layer := NewLayer("commutes")
	if _, ok := layer.Extent(); ok {
		t.Fatal("expected no extent for an empty layer")
	}

	layer.Add(
		&Route{Points: []Coordinates{{Lon: -1.98, Lat: 43.31}, {Lon: -1.97, Lat: 43.32}}},
		&Route{},
		&Route{Points: []Coordinates{{Lon: -2.01, Lat: 43.30}}},
	)

	b, ok := layer.Extent()
	if !ok {
		t.Fatal("expected an extent")
	}
	want := Bounds{MinLon: -2.01, MinLat: 43.30, MaxLon: -1.97, MaxLat: 43.32}
	if b != want {
		t.Fatalf("extent = %+v, want %+v", b, want)
	}
}

func TestCoordsToList(t *testing.T) {
	got := Coordinates{Lon: -1.98, Lat: 43.31}.CoordsToList()
	if len(got) != 2 || got[0] != -1.98 || got[1] != 43.31 {
		t.Fatalf("unexpected list %v", got)
	}
}
