package domain

import "time"

// Delivery status lifecycle. Detection moves a pending delivery to arrived;
// confirmed acknowledgment (or an explicit completion call) moves it to
// completed.
const (
	DeliveryPending   = "pending"
	DeliveryArrived   = "arrived"
	DeliveryCompleted = "completed"
)

// Delivery is a scheduled drop for a client on a given date. The record is
// owned by the persistence collaborator; this core only patches its status
// and arrival fields through narrow repository calls.
type Delivery struct {
	ID            int
	ClientID      int
	ClientName    string
	ScheduledDate string
	Status        string
	Quantity      *int
	Notes         *string
	ArrivedAt     *time.Time
	StaySeconds   *int
	CompletedAt   *time.Time
}
