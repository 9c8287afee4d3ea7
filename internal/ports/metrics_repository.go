package ports

import (
	"context"

	"delivery-tracking-service/internal/domain"
)

// Port: read-only dashboard aggregates.
type MetricsRepository interface {
	Summary(ctx context.Context) (domain.MetricsSummary, error)
}
