package services

import (
	"context"
	"fmt"
	"time"

	"delivery-tracking-service/internal/domain"
	"delivery-tracking-service/internal/ports"

	"github.com/sirupsen/logrus"
)

// How much trajectory history the reconciliation sweep retains.
const reconcileLookback = 12 * time.Hour

// ArrivalReconciler runs the batch visit detector over the retained position
// window and settles delivery arrival state from it. Unlike the incremental
// detector it carries a real minimum-dwell guarantee, so it is the
// authoritative source for the "arrived" status; dwells the streaming path
// missed are caught here.
type ArrivalReconciler struct {
	Positions  ports.PositionRepository
	Deliveries ports.DeliveryRepository
	Log        *logrus.Logger

	ThresholdMeters float64
	MinDuration     time.Duration

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

// ReconcileArrivals detects visits for not-completed deliveries on the given
// date (today when empty) and marks the still-pending ones as arrived.
// Running it again over the same history is harmless: detection is idempotent
// and only pending deliveries transition.
func (r *ArrivalReconciler) ReconcileArrivals(ctx context.Context, date string) ([]domain.VisitDetection, error) {
	now := r.now()
	if date == "" {
		date = now.Format("2006-01-02")
	}

	trajectory, err := r.Positions.TrajectorySince(ctx, now.Add(-reconcileLookback))
	if err != nil {
		return nil, fmt.Errorf("reconcile arrivals: load trajectory: %w", err)
	}

	targets, err := r.Deliveries.ListVisitTargets(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("reconcile arrivals: load targets: %w", err)
	}

	detections := DetectVisits(trajectory, targets, r.thresholdMeters(), r.minDuration())

	for _, d := range detections {
		if d.DeliveryID == 0 {
			continue
		}
		if err := r.Deliveries.MarkArrived(ctx, d.DeliveryID, d.DetectedAt, d.StaySeconds); err != nil {
			return nil, fmt.Errorf("reconcile arrivals: mark delivery %d arrived: %w", d.DeliveryID, err)
		}
		r.logger().WithFields(logrus.Fields{
			"delivery_id":  d.DeliveryID,
			"client_id":    d.ClientID,
			"stay_seconds": d.StaySeconds,
		}).Info("delivery marked arrived")
	}

	return detections, nil
}

func (r *ArrivalReconciler) thresholdMeters() float64 {
	if r.ThresholdMeters > 0 {
		return r.ThresholdMeters
	}
	return DefaultVisitThresholdMeters
}

func (r *ArrivalReconciler) minDuration() time.Duration {
	if r.MinDuration > 0 {
		return r.MinDuration
	}
	return DefaultVisitMinDuration
}

func (r *ArrivalReconciler) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *ArrivalReconciler) logger() *logrus.Logger {
	if r.Log != nil {
		return r.Log
	}
	return logrus.StandardLogger()
}
