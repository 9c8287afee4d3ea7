package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"delivery-tracking-service/internal/domain"
	"delivery-tracking-service/internal/ports"
)

// Tracker records incoming agent positions and runs incremental stop
// detection on each one.
//
// Recording is serialized: the previous-position lookup and the insert of the
// new sample happen under one mutex so concurrent updates for the agent
// cannot observe an inconsistent "previous" sample.
type Tracker struct {
	Positions ports.PositionRepository
	Clients   ports.ClientRepository
	Ledger    *StopEventLedger

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time

	mu sync.Mutex
}

// RecordPosition appends a new trajectory sample and, when the incremental
// detector finds a qualifying dwell near a client, registers a stop event
// through the ledger. The returned event is nil when nothing was detected or
// the ledger suppressed a duplicate.
func (t *Tracker) RecordPosition(ctx context.Context, coord domain.Coordinate) (domain.TrajectorySample, *domain.StopEvent, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var prev *domain.TrajectorySample
	latest, err := t.Positions.LatestPosition(ctx)
	switch {
	case err == nil:
		prev = &latest
	case errors.Is(err, domain.ErrNotFound):
		// First sample ever; incremental detection needs two.
	default:
		return domain.TrajectorySample{}, nil, fmt.Errorf("record position: latest position: %w", err)
	}

	sample, err := t.Positions.RecordPosition(ctx, coord, t.now())
	if err != nil {
		return domain.TrajectorySample{}, nil, fmt.Errorf("record position: %w", err)
	}

	targets, err := t.clientTargets(ctx)
	if err != nil {
		return domain.TrajectorySample{}, nil, fmt.Errorf("record position: load targets: %w", err)
	}

	candidate := DetectStop(prev, sample, targets)
	if candidate == nil {
		return sample, nil, nil
	}

	event, err := t.Ledger.Register(ctx, *candidate)
	if err != nil {
		return domain.TrajectorySample{}, nil, fmt.Errorf("record position: %w", err)
	}

	return sample, event, nil
}

// clientTargets exposes every client with coordinates as a detection target.
// Stop events are keyed by client, not delivery, so undelivered stops at a
// known location still surface.
func (t *Tracker) clientTargets(ctx context.Context) ([]domain.VisitTarget, error) {
	clients, err := t.Clients.ListClients(ctx)
	if err != nil {
		return nil, err
	}

	targets := make([]domain.VisitTarget, 0, len(clients))
	for _, c := range clients {
		targets = append(targets, domain.VisitTarget{
			ClientID:  c.ID,
			Latitude:  c.Latitude,
			Longitude: c.Longitude,
		})
	}
	return targets, nil
}

func (t *Tracker) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}
