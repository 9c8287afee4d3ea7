package ports

import (
	"context"
	"time"

	"delivery-tracking-service/internal/domain"
)

// NewDelivery carries the writable attributes of a delivery record.
type NewDelivery struct {
	ClientID      int
	ScheduledDate string
	Quantity      *int
	Notes         *string
}

// Port: a boundary for reading and patching Delivery records. The core never
// owns the delivery schema; it only transitions status and arrival fields.
type DeliveryRepository interface {
	ListDeliveries(ctx context.Context, date string) ([]domain.Delivery, error)
	GetDelivery(ctx context.Context, id int) (domain.Delivery, error)
	CreateDelivery(ctx context.Context, d NewDelivery) (domain.Delivery, error)

	// CompleteDelivery marks the delivery completed, keeping existing
	// quantity/notes when the arguments are nil.
	CompleteDelivery(ctx context.Context, id int, quantity *int, notes *string) (domain.Delivery, error)

	// FindOpenDelivery returns the oldest not-completed delivery for the
	// client on the given date, or domain.ErrNotFound.
	FindOpenDelivery(ctx context.Context, clientID int, date string) (domain.Delivery, error)

	// CreateCompleted inserts a delivery that is already completed, used when
	// an acknowledged stop has no scheduled delivery to reconcile against.
	CreateCompleted(ctx context.Context, clientID int, date string, quantity *int, notes *string) (domain.Delivery, error)

	// MarkArrived records a detected dwell on a still-pending delivery.
	// Deliveries in any other status are left untouched.
	MarkArrived(ctx context.Context, id int, arrivedAt time.Time, staySeconds int) error

	// ListRouteCandidates returns the waypoints eligible for routing: clients
	// with a not-completed delivery on the date, or the explicitly requested
	// clients enriched with their open delivery when one exists.
	ListRouteCandidates(ctx context.Context, date string, clientIDs []int) ([]domain.Waypoint, error)

	// ListVisitTargets returns the detection targets for not-completed
	// deliveries on the date, joined with client coordinates.
	ListVisitTargets(ctx context.Context, date string) ([]domain.VisitTarget, error)
}
