package handlers

import (
	"net/http"
	"strconv"

	"delivery-tracking-service/internal/api/dto"
	"delivery-tracking-service/internal/domain"
	"delivery-tracking-service/internal/ports"
	"delivery-tracking-service/internal/services"

	"github.com/sirupsen/logrus"
)

// PositionHandler records GPS pings and exposes recent trajectory reads.
// Every recorded ping flows through the tracker so stop detection runs inline.
type PositionHandler struct {
	Repo    ports.PositionRepository
	Tracker *services.Tracker
	Log     *logrus.Logger
}

func (h *PositionHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req dto.PositionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	if req.Latitude == nil || req.Longitude == nil {
		writeError(w, r, http.StatusBadRequest, "latitude and longitude are required")
		return
	}
	if *req.Latitude < -90 || *req.Latitude > 90 || *req.Longitude < -180 || *req.Longitude > 180 {
		writeError(w, r, http.StatusBadRequest, "coordinates out of range")
		return
	}

	coord := domain.Coordinate{Lat: *req.Latitude, Lon: *req.Longitude}
	sample, event, err := h.Tracker.RecordPosition(r.Context(), coord)
	if err != nil {
		h.Log.WithError(err).Error("record position failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.RecordPositionResponse{Position: positionResponse(sample)}
	if event != nil {
		se := stopEventResponse(*event, nil)
		res.StopEvent = &se
	}

	writeJSON(w, r, http.StatusCreated, res)
}

func (h *PositionHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = parsed
	}

	samples, err := h.Repo.RecentPositions(r.Context(), limit)
	if err != nil {
		h.Log.WithError(err).Error("list positions failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListPositionsResponse{Positions: make([]dto.PositionResponse, 0, len(samples))}
	for _, s := range samples {
		res.Positions = append(res.Positions, positionResponse(s))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func positionResponse(s domain.TrajectorySample) dto.PositionResponse {
	return dto.PositionResponse{
		ID:        s.PositionID,
		Timestamp: s.Timestamp,
		Latitude:  s.Coord.Lat,
		Longitude: s.Coord.Lon,
	}
}
