package dto

import "time"

type ClientRequest struct {
	Name      string   `json:"name"`
	Phone     string   `json:"phone"`
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Notes     string   `json:"notes"`
}

type ClientResponse struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

type ListClientsResponse struct {
	Clients []ClientResponse `json:"clients"`
}
