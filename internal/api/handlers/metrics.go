package handlers

import (
	"net/http"

	"delivery-tracking-service/internal/api/dto"
	"delivery-tracking-service/internal/ports"

	"github.com/sirupsen/logrus"
)

// MetricsHandler serves the read-only dashboard aggregate.
type MetricsHandler struct {
	Repo ports.MetricsRepository
	Log  *logrus.Logger
}

func (h *MetricsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Repo.Summary(r.Context())
	if err != nil {
		h.Log.WithError(err).Error("metrics summary failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.MetricsResponse{
		TotalClients:    summary.TotalClients,
		TotalDeliveries: summary.TotalDeliveries,
		CompletedToday:  summary.CompletedToday,
		QuantityByDay:   make([]dto.DailyTotalResponse, 0, len(summary.QuantityByDay)),
		TopClients:      make([]dto.ClientCountResponse, 0, len(summary.TopClients)),
	}

	for _, t := range summary.QuantityByDay {
		res.QuantityByDay = append(res.QuantityByDay, dto.DailyTotalResponse{Day: t.Day, Quantity: t.Quantity})
	}
	for _, c := range summary.TopClients {
		res.TopClients = append(res.TopClients, dto.ClientCountResponse{Name: c.Name, Deliveries: c.Deliveries})
	}

	writeJSON(w, r, http.StatusOK, res)
}
