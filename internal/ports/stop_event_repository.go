package ports

import (
	"context"
	"time"

	"delivery-tracking-service/internal/domain"
)

// Stop event listing filters. StatusAll disables the status filter.
const (
	StatusPending      = "pending"
	StatusAcknowledged = "acknowledged"
	StatusAll          = "all"
)

// Port: a boundary for the stop event records the ledger owns.
type StopEventRepository interface {
	InsertStopEvent(ctx context.Context, candidate domain.StopCandidate) (domain.StopEvent, error)

	GetStopEvent(ctx context.Context, id int) (domain.StopEvent, error)

	// FindUnacknowledged returns the most recent unacknowledged event for the
	// client triggered at or after since, or domain.ErrNotFound.
	FindUnacknowledged(ctx context.Context, clientID int, since time.Time) (domain.StopEvent, error)

	// AcknowledgeStopEvent sets the acknowledgment fields if and only if the
	// event is still unacknowledged. It reports false when the event was
	// already acknowledged (compare-and-set on acknowledged_at).
	AcknowledgeStopEvent(ctx context.Context, id int, at time.Time, delivered bool, quantity *int, notes *string) (bool, error)

	// ListStopEvents returns events newest-trigger-first, filtered by status
	// and optionally by trigger time.
	ListStopEvents(ctx context.Context, status string, since *time.Time) ([]domain.StopEvent, error)
}
