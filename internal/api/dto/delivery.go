package dto

import "time"

type DeliveryRequest struct {
	ClientID      int     `json:"client_id"`
	ScheduledDate string  `json:"scheduled_date"`
	Quantity      *int    `json:"quantity"`
	Notes         *string `json:"notes"`
}

type CompleteDeliveryRequest struct {
	Quantity *int    `json:"quantity"`
	Notes    *string `json:"notes"`
}

type DeliveryResponse struct {
	ID            int        `json:"id"`
	ClientID      int        `json:"client_id"`
	ClientName    string     `json:"client_name"`
	ScheduledDate string     `json:"scheduled_date"`
	Status        string     `json:"status"`
	Quantity      *int       `json:"quantity"`
	Notes         *string    `json:"notes"`
	ArrivedAt     *time.Time `json:"arrived_at"`
	StaySeconds   *int       `json:"stay_seconds"`
	CompletedAt   *time.Time `json:"completed_at"`
}

type ListDeliveriesResponse struct {
	Deliveries []DeliveryResponse `json:"deliveries"`
}
