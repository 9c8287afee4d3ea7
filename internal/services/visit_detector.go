package services

import (
	"time"

	"delivery-tracking-service/internal/domain"
)

// Batch detection defaults: the agent counts as visiting when it stays within
// DefaultVisitThresholdMeters of the target for at least DefaultVisitMinDuration.
const (
	DefaultVisitThresholdMeters = 80.0
	DefaultVisitMinDuration     = 90 * time.Second
)

// Incremental detection thresholds. The two-sample approximation considers the
// agent stationary when at least stopMinElapsed passed since the previous
// sample while it moved at most stopDriftKm, and associates the dwell with the
// nearest target within stopNearKm.
const (
	stopMinElapsed = 120 * time.Second
	stopDriftKm    = 0.05
	stopNearKm     = 0.25
)

// DetectVisits sweeps a time-ordered trajectory against each target
// independently, maintaining a dwell window of contiguous in-range samples.
// A window that lasted at least minDuration when it closes (or when the
// trajectory ends) yields one detection; only the first qualifying dwell per
// target is reported. Targets without coordinates are skipped.
//
// The sweep is a pure function of its inputs: re-running it over the same
// trajectory and targets produces the same detections.
func DetectVisits(
	trajectory []domain.TrajectorySample,
	targets []domain.VisitTarget,
	thresholdMeters float64,
	minDuration time.Duration,
) []domain.VisitDetection {
	detections := make([]domain.VisitDetection, 0)

	if len(trajectory) == 0 {
		return detections
	}

	for _, target := range targets {
		targetCoord, ok := target.Coordinate()
		if !ok {
			continue
		}

		var window *domain.DwellWindow
		for _, sample := range trajectory {
			distanceMeters := domain.Haversine(sample.Coord, targetCoord) * 1000

			if distanceMeters <= thresholdMeters {
				if window == nil {
					window = &domain.DwellWindow{Start: sample.Timestamp, End: sample.Timestamp}
				} else {
					window.Extend(sample.Timestamp)
				}
				continue
			}

			// Sample out of range closes the window; a long enough dwell ends
			// the scan for this target.
			if window != nil {
				if window.Duration() >= minDuration {
					detections = append(detections, newDetection(target, *window))
					window = nil
					break
				}
				window = nil
			}
		}

		// Trajectory ended with an open window: evaluate it the same way.
		if window != nil && window.Duration() >= minDuration {
			detections = append(detections, newDetection(target, *window))
		}
	}

	return detections
}

func newDetection(target domain.VisitTarget, window domain.DwellWindow) domain.VisitDetection {
	return domain.VisitDetection{
		DeliveryID:  target.DeliveryID,
		ClientID:    target.ClientID,
		StaySeconds: int(window.Duration().Seconds()),
		DetectedAt:  window.End,
	}
}

// DetectStop evaluates a newly recorded position against the previous one.
//
// This is the streaming counterpart of DetectVisits: instead of sweeping a
// retained window it approximates a dwell from the last two samples only,
// trading precision for O(1) state. The agent must have been essentially
// stationary (moved at most 50 m) for at least two minutes; the dwell is then
// attributed to the nearest target within 250 m, if any.
func DetectStop(prev *domain.TrajectorySample, cur domain.TrajectorySample, targets []domain.VisitTarget) *domain.StopCandidate {
	if prev == nil {
		return nil
	}

	elapsed := cur.Timestamp.Sub(prev.Timestamp)
	if elapsed < stopMinElapsed {
		return nil
	}
	if domain.Haversine(prev.Coord, cur.Coord) > stopDriftKm {
		return nil
	}

	bestIdx := -1
	bestDist := 0.0
	for i, target := range targets {
		coord, ok := target.Coordinate()
		if !ok {
			continue
		}

		d := domain.Haversine(cur.Coord, coord)
		if bestIdx == -1 || d < bestDist {
			bestIdx = i
			bestDist = d
		}
	}

	if bestIdx == -1 || bestDist > stopNearKm {
		return nil
	}

	return &domain.StopCandidate{
		PositionID:      cur.PositionID,
		ClientID:        targets[bestIdx].ClientID,
		DistanceKm:      bestDist,
		DurationSeconds: int(elapsed.Seconds()),
		TriggeredAt:     cur.Timestamp,
	}
}
