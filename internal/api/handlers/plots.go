package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"commute-route-service/internal/api/dto"
	"commute-route-service/internal/ports"
	"commute-route-service/internal/services"
)

type PlotHandler struct {
	Plotter  *services.RoutePlotter
	Commutes ports.CommuteRepository
}

// Plot draws routes for the stored survey answers and reports what was
// plotted and what was skipped. Routes are persisted by the plotter.
func (h *PlotHandler) Plot(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}

	var req dto.PlotRequest
	if !decodeBody(w, r, &req, true) {
		return
	}

	depart := time.Now().UTC()
	if req.DepartAt != nil {
		depart = *req.DepartAt
	}

	layer, report, err := h.Plotter.PlotStored(r.Context(), h.Commutes, req.Building, depart)
	switch {
	case errors.Is(err, services.ErrUnknownBuilding):
		writeError(w, r, http.StatusBadRequest, "unknown building")
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusServiceUnavailable, "plot canceled")
		return
	case err != nil:
		logger(r).Error("plot routes failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.PlotResponse{
		Layer:    layer.Name,
		DepartAt: depart,
		Total:    report.Total,
		Plotted:  report.Plotted,
		Empty:    report.Empty,
		Skipped:  make([]dto.SkippedRowResponse, 0, len(report.Skipped)),
		RouteIDs: make([]string, 0, len(layer.Routes)),
	}
	for _, s := range report.Skipped {
		res.Skipped = append(res.Skipped, dto.SkippedRowResponse{Row: s.Row, Building: s.Building, Reason: s.Reason})
	}
	for _, route := range layer.Routes {
		res.RouteIDs = append(res.RouteIDs, route.ID)
	}

	writeJSON(w, r, http.StatusOK, res)
}
