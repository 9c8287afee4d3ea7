package directions

import (
	"context"

	"delivery-tracking-service/internal/domain"
	"delivery-tracking-service/internal/ports"
)

// FakeOptimizer is an injectable RouteOptimizer for tests: it records the
// request and returns a canned result or error without any network I/O.
type FakeOptimizer struct {
	Result ports.OptimizedRoute
	Err    error

	Calls         int
	LastOrigin    domain.Coordinate
	LastWaypoints []domain.Coordinate
}

func (f *FakeOptimizer) OptimizeRoute(
	ctx context.Context,
	origin domain.Coordinate,
	waypoints []domain.Coordinate,
) (ports.OptimizedRoute, error) {
	f.Calls++
	f.LastOrigin = origin
	f.LastWaypoints = waypoints

	if f.Err != nil {
		return ports.OptimizedRoute{}, f.Err
	}
	return f.Result, nil
}
