package ports

import (
	"context"

	"delivery-tracking-service/internal/domain"
)

// NewClient carries the writable attributes of a client record.
type NewClient struct {
	Name      string
	Phone     string
	Address   string
	Latitude  *float64
	Longitude *float64
	Notes     string
}

// Port: a boundary for reading and writing Client records.
type ClientRepository interface {
	ListClients(ctx context.Context) ([]domain.Client, error)
	GetClient(ctx context.Context, id int) (domain.Client, error)
	CreateClient(ctx context.Context, c NewClient) (domain.Client, error)
	UpdateClient(ctx context.Context, id int, c NewClient) (domain.Client, error)
	DeleteClient(ctx context.Context, id int) error
}
