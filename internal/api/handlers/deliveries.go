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

// DeliveryHandler exposes scheduled delivery endpoints, including the manual
// completion path and the batch arrival reconciliation sweep.
type DeliveryHandler struct {
	Repo       ports.DeliveryRepository
	Reconciler *services.ArrivalReconciler
	Log        *logrus.Logger
}

func (h *DeliveryHandler) List(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date != "" && !validDate(date) {
		writeError(w, r, http.StatusBadRequest, "date must be formatted YYYY-MM-DD")
		return
	}

	deliveries, err := h.Repo.ListDeliveries(r.Context(), date)
	if err != nil {
		h.Log.WithError(err).Error("list deliveries failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListDeliveriesResponse{Deliveries: make([]dto.DeliveryResponse, 0, len(deliveries))}
	for _, d := range deliveries {
		res.Deliveries = append(res.Deliveries, deliveryResponse(d))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *DeliveryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid delivery id")
		return
	}

	d, err := h.Repo.GetDelivery(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "delivery not found")
		return
	}
	if err != nil {
		h.Log.WithError(err).Error("get delivery failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, deliveryResponse(d))
}

func (h *DeliveryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.DeliveryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	if req.ClientID < 1 {
		writeError(w, r, http.StatusBadRequest, "client_id is required")
		return
	}
	if !validDate(req.ScheduledDate) {
		writeError(w, r, http.StatusBadRequest, "scheduled_date must be formatted YYYY-MM-DD")
		return
	}

	d, err := h.Repo.CreateDelivery(r.Context(), ports.NewDelivery{
		ClientID:      req.ClientID,
		ScheduledDate: req.ScheduledDate,
		Quantity:      req.Quantity,
		Notes:         req.Notes,
	})
	if err != nil {
		h.Log.WithError(err).Error("create delivery failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusCreated, deliveryResponse(d))
}

func (h *DeliveryHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid delivery id")
		return
	}

	var req dto.CompleteDeliveryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	d, err := h.Repo.CompleteDelivery(r.Context(), id, req.Quantity, req.Notes)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "delivery not found")
		return
	}
	if err != nil {
		h.Log.WithError(err).Error("complete delivery failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, deliveryResponse(d))
}

// Reconcile runs the batch dwell sweep and reports the detections it acted on.
func (h *DeliveryHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date != "" && !validDate(date) {
		writeError(w, r, http.StatusBadRequest, "date must be formatted YYYY-MM-DD")
		return
	}

	detections, err := h.Reconciler.ReconcileArrivals(r.Context(), date)
	if err != nil {
		h.Log.WithError(err).Error("reconcile arrivals failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	type detection struct {
		DeliveryID  int       `json:"delivery_id"`
		ClientID    int       `json:"client_id"`
		StaySeconds int       `json:"stay_seconds"`
		DetectedAt  time.Time `json:"detected_at"`
	}

	res := struct {
		Detections []detection `json:"detections"`
	}{Detections: make([]detection, 0, len(detections))}

	for _, d := range detections {
		res.Detections = append(res.Detections, detection{
			DeliveryID:  d.DeliveryID,
			ClientID:    d.ClientID,
			StaySeconds: d.StaySeconds,
			DetectedAt:  d.DetectedAt,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func deliveryResponse(d domain.Delivery) dto.DeliveryResponse {
	return dto.DeliveryResponse{
		ID:            d.ID,
		ClientID:      d.ClientID,
		ClientName:    d.ClientName,
		ScheduledDate: d.ScheduledDate,
		Status:        d.Status,
		Quantity:      d.Quantity,
		Notes:         d.Notes,
		ArrivedAt:     d.ArrivedAt,
		StaySeconds:   d.StaySeconds,
		CompletedAt:   d.CompletedAt,
	}
}

func validDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}
