package ports

import (
	"context"
	"time"

	"delivery-tracking-service/internal/domain"
)

// Port: a boundary for the recorded GPS trajectory.
type PositionRepository interface {
	// RecordPosition appends a sample and returns it with its assigned id.
	RecordPosition(ctx context.Context, coord domain.Coordinate, ts time.Time) (domain.TrajectorySample, error)

	// LatestPosition returns the most recent sample, or domain.ErrNotFound
	// when nothing has been recorded yet.
	LatestPosition(ctx context.Context) (domain.TrajectorySample, error)

	// PositionBefore returns the sample immediately preceding the given
	// position id in the current ordering, or domain.ErrNotFound.
	PositionBefore(ctx context.Context, positionID int) (domain.TrajectorySample, error)

	// TrajectorySince returns samples recorded at or after since, ascending
	// by timestamp. Rows with malformed timestamps are dropped.
	TrajectorySince(ctx context.Context, since time.Time) ([]domain.TrajectorySample, error)

	// RecentPositions returns up to limit samples, newest first.
	RecentPositions(ctx context.Context, limit int) ([]domain.TrajectorySample, error)
}
