package handlers

import (
	"errors"
	"net/http"
	"time"

	"delivery-tracking-service/internal/api/dto"
	"delivery-tracking-service/internal/domain"
	"delivery-tracking-service/internal/ports"
	"delivery-tracking-service/internal/services"

	"github.com/sirupsen/logrus"
)

// StopEventHandler exposes the stop event review queue.
type StopEventHandler struct {
	Ledger *services.StopEventLedger
	Log    *logrus.Logger
}

func (h *StopEventHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	switch status {
	case "", ports.StatusAll:
		status = ports.StatusAll
	case ports.StatusPending, ports.StatusAcknowledged:
	default:
		writeError(w, r, http.StatusBadRequest, "status must be pending, acknowledged or all")
		return
	}

	var since *time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "since must be an RFC 3339 timestamp")
			return
		}
		since = &parsed
	}

	items, err := h.Ledger.List(r.Context(), status, since)
	if err != nil {
		h.Log.WithError(err).Error("list stop events failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListStopEventsResponse{StopEvents: make([]dto.StopEventResponse, 0, len(items))}
	for _, item := range items {
		res.StopEvents = append(res.StopEvents, stopEventResponse(item.StopEvent, item.DurationSeconds))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *StopEventHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid stop event id")
		return
	}

	var req dto.AcknowledgeStopEventRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	event, err := h.Ledger.Acknowledge(r.Context(), id, req.Delivered, req.Quantity, req.Notes)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "stop event not found")
		return
	case errors.Is(err, domain.ErrAlreadyAcknowledged):
		writeError(w, r, http.StatusConflict, "stop event already acknowledged")
		return
	case err != nil:
		h.Log.WithError(err).Error("acknowledge stop event failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, stopEventResponse(event, nil))
}

func stopEventResponse(e domain.StopEvent, durationSeconds *int) dto.StopEventResponse {
	return dto.StopEventResponse{
		ID:              e.ID,
		PositionID:      e.PositionID,
		ClientID:        e.ClientID,
		ClientName:      e.ClientName,
		DistanceKm:      e.DistanceKm,
		TriggeredAt:     e.TriggeredAt,
		AcknowledgedAt:  e.AcknowledgedAt,
		Delivered:       e.Delivered,
		Quantity:        e.Quantity,
		Notes:           e.Notes,
		DurationSeconds: durationSeconds,
	}
}
