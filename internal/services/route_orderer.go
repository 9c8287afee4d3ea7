package services

import (
	"context"

	"delivery-tracking-service/internal/domain"
	"delivery-tracking-service/internal/ports"

	"github.com/sirupsen/logrus"
)

// NearestNeighborRoute orders stop candidates using a greedy nearest-neighbor
// heuristic over straight-line geodesic distance.
//
// The algorithm minimizes immediate travel distance at each step. It does not
// attempt global route optimization (e.g., VRP solvers). The design
// prioritizes determinism and simplicity over optimality; stop counts are
// small enough that O(n^2) is acceptable.
//
// Candidates missing a coordinate are never orderable: they are partitioned
// out in their input order and returned in Skipped.
func NearestNeighborRoute(start domain.Coordinate, candidates []domain.Waypoint) domain.RouteResult {
	withCoord, skipped := partitionByCoordinate(candidates)

	ordered := make([]domain.Waypoint, 0, len(withCoord))
	remaining := make([]domain.Waypoint, len(withCoord))
	copy(remaining, withCoord)

	current := start
	for len(remaining) > 0 {
		bestIdx := -1
		bestDist := 0.0

		// Select the next stop by minimum distance (greedy step).
		// Tie-breaker: lowest client id, for deterministic ordering.
		for i, cand := range remaining {
			coord, _ := cand.Coordinate()
			d := domain.Haversine(current, coord)

			if bestIdx == -1 || d < bestDist ||
				(d == bestDist && cand.ClientID < remaining[bestIdx].ClientID) {
				bestIdx = i
				bestDist = d
			}
		}

		best := remaining[bestIdx]
		ordered = append(ordered, best)
		current, _ = best.Coordinate()
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return domain.RouteResult{
		Start:   start,
		Ordered: ordered,
		Skipped: skipped,
	}
}

// RouteOrderer produces a visiting order for a set of stop candidates.
// When an external optimizer is configured it is preferred, but every failure
// mode (network error, timeout, bad status, malformed body, empty route list)
// degrades to the local heuristic instead of surfacing an error.
type RouteOrderer struct {
	Optimizer ports.RouteOptimizer
	Log       *logrus.Logger
}

// Order computes the visiting sequence for candidates starting from start.
//
// Without an optimizer (no API key configured) or without any coordinate
// candidates, the local heuristic answers directly and no network call is
// attempted. Optimizer results are re-derived from the returned waypoint
// order permutation; the last coordinate candidate is the trip destination.
func (o RouteOrderer) Order(ctx context.Context, start domain.Coordinate, candidates []domain.Waypoint) domain.RouteResult {
	withCoord, skipped := partitionByCoordinate(candidates)

	if o.Optimizer == nil || len(withCoord) == 0 {
		return NearestNeighborRoute(start, candidates)
	}

	coords := make([]domain.Coordinate, len(withCoord))
	for i, w := range withCoord {
		coords[i], _ = w.Coordinate()
	}

	optimized, err := o.Optimizer.OptimizeRoute(ctx, start, coords)
	if err != nil {
		o.logger().WithError(err).Warn("route optimizer unavailable, using nearest-neighbor fallback")
		return NearestNeighborRoute(start, candidates)
	}

	ordered, ok := applyWaypointOrder(withCoord, optimized.WaypointOrder)
	if !ok {
		o.logger().WithField("waypoint_order", optimized.WaypointOrder).
			Warn("route optimizer returned an invalid permutation, using nearest-neighbor fallback")
		return NearestNeighborRoute(start, candidates)
	}

	return domain.RouteResult{
		Start:   start,
		Ordered: ordered,
		Skipped: skipped,
		Metadata: &domain.RouteMetadata{
			Polyline: optimized.Polyline,
			Legs:     optimized.Legs,
			Warnings: optimized.Warnings,
			Summary:  optimized.Summary,
		},
	}
}

func (o RouteOrderer) logger() *logrus.Logger {
	if o.Log != nil {
		return o.Log
	}
	return logrus.StandardLogger()
}

func partitionByCoordinate(candidates []domain.Waypoint) (withCoord, skipped []domain.Waypoint) {
	withCoord = make([]domain.Waypoint, 0, len(candidates))
	skipped = make([]domain.Waypoint, 0)

	for _, c := range candidates {
		if _, ok := c.Coordinate(); ok {
			withCoord = append(withCoord, c)
		} else {
			skipped = append(skipped, c)
		}
	}

	return withCoord, skipped
}

// applyWaypointOrder rebuilds the visiting sequence from the optimizer's
// permutation of intermediate indices. The last candidate is the destination
// and always closes the route; a single candidate needs no permutation.
func applyWaypointOrder(withCoord []domain.Waypoint, order []int) ([]domain.Waypoint, bool) {
	if len(withCoord) == 1 {
		return []domain.Waypoint{withCoord[0]}, true
	}

	intermediates := withCoord[:len(withCoord)-1]
	if len(order) != len(intermediates) {
		return nil, false
	}

	seen := make(map[int]struct{}, len(order))
	ordered := make([]domain.Waypoint, 0, len(withCoord))
	for _, idx := range order {
		if idx < 0 || idx >= len(intermediates) {
			return nil, false
		}
		if _, dup := seen[idx]; dup {
			return nil, false
		}
		seen[idx] = struct{}{}
		ordered = append(ordered, intermediates[idx])
	}

	ordered = append(ordered, withCoord[len(withCoord)-1])
	return ordered, true
}
