package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"commute-route-service/internal/api/dto"
	"commute-route-service/internal/domain"
	"commute-route-service/internal/polyline"
)

func DecodePolyline(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}

	var req dto.DecodeRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	var points []domain.Coordinates
	if req.Strict {
		var err error
		points, err = polyline.DecodeStrict(req.Polyline)
		if err != nil {
			var se *polyline.SyntaxError
			if errors.As(err, &se) {
				writeJSON(w, r, http.StatusBadRequest, dto.PolylineErrorResponse{Error: se.Error(), Offset: se.Offset})
				return
			}
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
	} else {
		points = polyline.Decode(req.Polyline)
	}

	res := dto.DecodeResponse{Points: make([][]float64, 0, len(points))}
	for _, p := range points {
		res.Points = append(res.Points, p.CoordsToList())
	}
	writeJSON(w, r, http.StatusOK, res)
}

func EncodePolyline(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}

	var req dto.EncodeRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	points := make([]domain.Coordinates, 0, len(req.Points))
	for i, p := range req.Points {
		if len(p) != 2 {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("points[%d] must be [lon, lat]", i))
			return
		}
		if p[0] < -180 || p[0] > 180 || p[1] < -90 || p[1] > 90 {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("points[%d] is out of range", i))
			return
		}
		points = append(points, domain.Coordinates{Lon: p[0], Lat: p[1]})
	}

	writeJSON(w, r, http.StatusOK, dto.EncodeResponse{Polyline: polyline.Encode(points)})
}
