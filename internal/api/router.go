package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"commute-route-service/internal/api/handlers"
	"commute-route-service/internal/ports"
	"commute-route-service/internal/services"
)

type Deps struct {
	Plotter   *services.RoutePlotter
	Commutes  ports.CommuteRepository
	Routes    ports.RouteRepository
	LayerName string
	Log       *zap.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}

	mux := http.NewServeMux()

	plotHandler := &handlers.PlotHandler{Plotter: deps.Plotter, Commutes: deps.Commutes}
	routeHandler := &handlers.RouteHandler{Repo: deps.Routes, LayerName: deps.LayerName}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/polylines/decode", handlers.DecodePolyline)
	mux.HandleFunc("/polylines/encode", handlers.EncodePolyline)
	mux.HandleFunc("/plots", plotHandler.Plot)
	mux.HandleFunc("/routes", routeHandler.List)
	mux.Handle("/metrics", promhttp.Handler())

	return requestIDMiddleware(loggingMiddleware(deps.Log, mux))
}
