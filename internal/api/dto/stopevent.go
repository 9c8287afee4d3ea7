package dto

import "time"

type AcknowledgeStopEventRequest struct {
	Delivered bool    `json:"delivered"`
	Quantity  *int    `json:"quantity"`
	Notes     *string `json:"notes"`
}

type StopEventResponse struct {
	ID              int        `json:"id"`
	PositionID      int        `json:"position_id"`
	ClientID        int        `json:"client_id"`
	ClientName      string     `json:"client_name"`
	DistanceKm      float64    `json:"distance_km"`
	TriggeredAt     time.Time  `json:"triggered_at"`
	AcknowledgedAt  *time.Time `json:"acknowledged_at"`
	Delivered       bool       `json:"delivered"`
	Quantity        *int       `json:"quantity"`
	Notes           *string    `json:"notes"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`
}

type ListStopEventsResponse struct {
	StopEvents []StopEventResponse `json:"stop_events"`
}
