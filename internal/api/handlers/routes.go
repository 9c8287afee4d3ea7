package handlers

import (
	"net/http"
	"time"

	"delivery-tracking-service/internal/api/dto"
	"delivery-tracking-service/internal/domain"
	"delivery-tracking-service/internal/ports"
	"delivery-tracking-service/internal/services"

	"github.com/sirupsen/logrus"
)

// Praça da Sé, São Paulo. Used when the caller does not send a start point.
var defaultRouteStart = domain.Coordinate{Lat: -23.55052, Lon: -46.633308}

// RouteHandler computes a visiting order for the day's open deliveries.
type RouteHandler struct {
	Repo    ports.DeliveryRepository
	Orderer services.RouteOrderer
	Log     *logrus.Logger
}

func (h *RouteHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req dto.RouteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	date := req.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if !validDate(date) {
		writeError(w, r, http.StatusBadRequest, "date must be formatted YYYY-MM-DD")
		return
	}

	if (req.StartLat == nil) != (req.StartLon == nil) {
		writeError(w, r, http.StatusBadRequest, "start_lat and start_lon must be provided together")
		return
	}

	start := defaultRouteStart
	if req.StartLat != nil {
		start = domain.Coordinate{Lat: *req.StartLat, Lon: *req.StartLon}
	}

	candidates, err := h.Repo.ListRouteCandidates(r.Context(), date, req.ClientIDs)
	if err != nil {
		h.Log.WithError(err).Error("list route candidates failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	result := h.Orderer.Order(r.Context(), start, candidates)

	writeJSON(w, r, http.StatusOK, routeResponse(result))
}

func routeResponse(result domain.RouteResult) dto.RouteResponse {
	res := dto.RouteResponse{
		StartLat: result.Start.Lat,
		StartLon: result.Start.Lon,
		Stops:    make([]dto.RouteStopResponse, 0, len(result.Ordered)),
		Skipped:  make([]dto.RouteStopResponse, 0, len(result.Skipped)),
	}

	for i, wp := range result.Ordered {
		res.Stops = append(res.Stops, routeStopResponse(i+1, wp))
	}
	for _, wp := range result.Skipped {
		res.Skipped = append(res.Skipped, routeStopResponse(0, wp))
	}

	if result.Metadata != nil {
		meta := dto.RouteMetadataResponse{
			Polyline: result.Metadata.Polyline,
			Legs:     make([]dto.RouteLegResponse, 0, len(result.Metadata.Legs)),
			Warnings: result.Metadata.Warnings,
			Summary:  result.Metadata.Summary,
		}
		for _, leg := range result.Metadata.Legs {
			meta.Legs = append(meta.Legs, dto.RouteLegResponse{
				DistanceMeters:  leg.DistanceMeters,
				DurationSeconds: leg.DurationSeconds,
				StartAddress:    leg.StartAddress,
				EndAddress:      leg.EndAddress,
			})
		}
		res.Metadata = &meta
	}

	return res
}

func routeStopResponse(order int, wp domain.Waypoint) dto.RouteStopResponse {
	return dto.RouteStopResponse{
		Order:         order,
		ClientID:      wp.ClientID,
		ClientName:    wp.ClientName,
		Address:       wp.Address,
		Latitude:      wp.Latitude,
		Longitude:     wp.Longitude,
		DeliveryID:    wp.DeliveryID,
		Status:        wp.Status,
		ScheduledDate: wp.ScheduledDate,
		Notes:         wp.Notes,
	}
}
