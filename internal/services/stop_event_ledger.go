package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"delivery-tracking-service/internal/domain"
	"delivery-tracking-service/internal/ports"

	"github.com/sirupsen/logrus"
)

// A fresh unacknowledged event for the same client within this window
// suppresses creation of another one.
const stopEventSuppression = 20 * time.Minute

// StopEventLedger owns the stop event lifecycle: dedup suppression on
// creation, the one-time unacknowledged -> acknowledged transition, and the
// side effect of reconciling the delivery collaborator on confirmation.
type StopEventLedger struct {
	Events     ports.StopEventRepository
	Positions  ports.PositionRepository
	Deliveries ports.DeliveryRepository
	Log        *logrus.Logger

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

// Register persists a detected stop candidate unless an unacknowledged event
// for the same client was already triggered within the suppression window.
// A suppressed candidate returns (nil, nil).
func (l *StopEventLedger) Register(ctx context.Context, candidate domain.StopCandidate) (*domain.StopEvent, error) {
	since := l.now().Add(-stopEventSuppression)

	existing, err := l.Events.FindUnacknowledged(ctx, candidate.ClientID, since)
	if err == nil {
		l.logger().WithFields(logrus.Fields{
			"client_id":     candidate.ClientID,
			"stop_event_id": existing.ID,
		}).Debug("stop event suppressed by recent unacknowledged event")
		return nil, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("register stop event: find unacknowledged: %w", err)
	}

	event, err := l.Events.InsertStopEvent(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("register stop event: insert: %w", err)
	}

	l.logger().WithFields(logrus.Fields{
		"stop_event_id": event.ID,
		"client_id":     event.ClientID,
		"distance_km":   event.DistanceKm,
	}).Info("stop event registered")

	return &event, nil
}

// Acknowledge performs the terminal state transition of a stop event.
//
// It fails with domain.ErrNotFound when the event does not exist and with
// domain.ErrAlreadyAcknowledged when the transition already happened; a lost
// compare-and-set race reports the conflict the same way, so two concurrent
// acknowledgments can never double-reconcile the delivery.
func (l *StopEventLedger) Acknowledge(ctx context.Context, id int, delivered bool, quantity *int, notes *string) (domain.StopEvent, error) {
	event, err := l.Events.GetStopEvent(ctx, id)
	if err != nil {
		return domain.StopEvent{}, fmt.Errorf("acknowledge stop event %d: %w", id, err)
	}
	if event.Acknowledged() {
		return domain.StopEvent{}, domain.ErrAlreadyAcknowledged
	}

	now := l.now()
	ok, err := l.Events.AcknowledgeStopEvent(ctx, id, now, delivered, quantity, notes)
	if err != nil {
		return domain.StopEvent{}, fmt.Errorf("acknowledge stop event %d: %w", id, err)
	}
	if !ok {
		return domain.StopEvent{}, domain.ErrAlreadyAcknowledged
	}

	if delivered && event.ClientID != 0 {
		if err := l.reconcileDelivery(ctx, event.ClientID, now, quantity, notes); err != nil {
			// The acknowledgment itself committed; reconciliation acts on the
			// external collaborator and its failure is reported, not rolled back.
			return domain.StopEvent{}, fmt.Errorf("acknowledge stop event %d: reconcile delivery: %w", id, err)
		}
	}

	acked, err := l.Events.GetStopEvent(ctx, id)
	if err != nil {
		return domain.StopEvent{}, fmt.Errorf("acknowledge stop event %d: reload: %w", id, err)
	}
	return acked, nil
}

// reconcileDelivery closes today's open delivery for the client, or records a
// completed ad-hoc delivery when none was scheduled.
func (l *StopEventLedger) reconcileDelivery(ctx context.Context, clientID int, now time.Time, quantity *int, notes *string) error {
	today := now.Format("2006-01-02")

	open, err := l.Deliveries.FindOpenDelivery(ctx, clientID, today)
	switch {
	case err == nil:
		if _, err := l.Deliveries.CompleteDelivery(ctx, open.ID, quantity, notes); err != nil {
			return fmt.Errorf("complete delivery %d: %w", open.ID, err)
		}
		l.logger().WithFields(logrus.Fields{
			"delivery_id": open.ID,
			"client_id":   clientID,
		}).Info("delivery completed from stop acknowledgment")
	case errors.Is(err, domain.ErrNotFound):
		created, err := l.Deliveries.CreateCompleted(ctx, clientID, today, quantity, notes)
		if err != nil {
			return fmt.Errorf("create completed delivery: %w", err)
		}
		l.logger().WithFields(logrus.Fields{
			"delivery_id": created.ID,
			"client_id":   clientID,
		}).Info("completed delivery created from stop acknowledgment")
	default:
		return fmt.Errorf("find open delivery: %w", err)
	}

	return nil
}

// List returns stop events newest-trigger-first, each enriched with the
// elapsed seconds between the triggering position and the one immediately
// before it. The duration is recomputed at read time since it depends on the
// then-current position ordering.
func (l *StopEventLedger) List(ctx context.Context, status string, since *time.Time) ([]domain.StopEventListItem, error) {
	events, err := l.Events.ListStopEvents(ctx, status, since)
	if err != nil {
		return nil, fmt.Errorf("list stop events: %w", err)
	}

	items := make([]domain.StopEventListItem, 0, len(events))
	for _, event := range events {
		item := domain.StopEventListItem{StopEvent: event}

		prev, err := l.Positions.PositionBefore(ctx, event.PositionID)
		switch {
		case err == nil:
			seconds := int(event.TriggeredAt.Sub(prev.Timestamp).Seconds())
			item.DurationSeconds = &seconds
		case errors.Is(err, domain.ErrNotFound):
			// First recorded position has no predecessor; leave it unset.
		default:
			return nil, fmt.Errorf("list stop events: position before %d: %w", event.PositionID, err)
		}

		items = append(items, item)
	}

	return items, nil
}

func (l *StopEventLedger) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *StopEventLedger) logger() *logrus.Logger {
	if l.Log != nil {
		return l.Log
	}
	return logrus.StandardLogger()
}
