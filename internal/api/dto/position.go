package dto

import "time"

type PositionRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type PositionResponse struct {
	ID        int       `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

type RecordPositionResponse struct {
	Position  PositionResponse   `json:"position"`
	StopEvent *StopEventResponse `json:"stop_event,omitempty"`
}

type ListPositionsResponse struct {
	Positions []PositionResponse `json:"positions"`
}
