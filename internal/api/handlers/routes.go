package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"commute-route-service/internal/adapters/geojson"
	"commute-route-service/internal/domain"
	"commute-route-service/internal/ports"
)

// RouteHandler serves stored routes as a GeoJSON layer.
type RouteHandler struct {
	Repo      ports.RouteRepository
	LayerName string
}

func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	var (
		routes []*domain.Route
		err    error
	)
	if building := strings.TrimSpace(r.URL.Query().Get("building")); building != "" {
		routes, err = h.Repo.ListByBuilding(r.Context(), building)
	} else {
		routes, err = h.Repo.ListRoutes(r.Context())
	}
	if err != nil {
		logger(r).Error("list routes failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	layer := domain.NewLayer(h.LayerName)
	layer.Add(routes...)

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	if err := geojson.WriteLayer(w, layer); err != nil {
		logger(r).Warn("write layer failed", zap.Error(err))
	}
}
