package ports

import (
	"context"

	"delivery-tracking-service/internal/domain"
)

// OptimizedRoute is the answer of an external optimizer for a single
// origin/destination/intermediates request. WaypointOrder is the permutation
// of the intermediate indices in visiting order; the destination is implicit
// and always last.
type OptimizedRoute struct {
	WaypointOrder []int
	Polyline      string
	Legs          []domain.RouteLeg
	Warnings      []string
	Summary       string
}

// RouteOptimizer is the boundary to an external route optimization provider.
// Implementations must bound the call with a timeout; any failure is reported
// as an error and the caller recovers with the local heuristic.
type RouteOptimizer interface {
	// OptimizeRoute reorders the intermediate waypoints of a trip from origin
	// to the last coordinate in waypoints.
	OptimizeRoute(ctx context.Context, origin domain.Coordinate, waypoints []domain.Coordinate) (OptimizedRoute, error)
}
