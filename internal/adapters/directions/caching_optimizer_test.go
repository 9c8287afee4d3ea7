package directions

import (
	"context"
	"errors"
	"testing"

	"delivery-tracking-service/internal/domain"
	"delivery-tracking-service/internal/ports"

	"github.com/stretchr/testify/require"
)

type fakeRouteCache struct {
	entries map[string]ports.OptimizedRoute

	getErr error
	putErr error
	puts   int
}

func newFakeRouteCache() *fakeRouteCache {
	return &fakeRouteCache{entries: make(map[string]ports.OptimizedRoute)}
}

func (f *fakeRouteCache) Get(_ context.Context, key string) (ports.OptimizedRoute, bool, error) {
	if f.getErr != nil {
		return ports.OptimizedRoute{}, false, f.getErr
	}
	route, ok := f.entries[key]
	return route, ok, nil
}

func (f *fakeRouteCache) Put(_ context.Context, key string, route ports.OptimizedRoute) error {
	f.puts++
	if f.putErr != nil {
		return f.putErr
	}
	f.entries[key] = route
	return nil
}

var cacheTestWaypoints = []domain.Coordinate{
	{Lat: -23.564003, Lon: -46.652267},
	{Lat: -23.500855, Lon: -46.624439},
}

func TestCachingOptimizerMissCallsInnerAndStores(t *testing.T) {
	inner := &FakeOptimizer{Result: ports.OptimizedRoute{Polyline: "fresh"}}
	routeCache := newFakeRouteCache()

	optimizer := NewCachingOptimizer(inner, routeCache, nil)

	route, err := optimizer.OptimizeRoute(context.Background(), domain.Coordinate{}, cacheTestWaypoints)
	require.NoError(t, err)
	require.Equal(t, "fresh", route.Polyline)
	require.Equal(t, 1, inner.Calls)
	require.Equal(t, 1, routeCache.puts)
}

func TestCachingOptimizerHitSkipsInner(t *testing.T) {
	inner := &FakeOptimizer{Result: ports.OptimizedRoute{Polyline: "fresh"}}
	routeCache := newFakeRouteCache()
	optimizer := NewCachingOptimizer(inner, routeCache, nil)

	_, err := optimizer.OptimizeRoute(context.Background(), domain.Coordinate{}, cacheTestWaypoints)
	require.NoError(t, err)

	route, err := optimizer.OptimizeRoute(context.Background(), domain.Coordinate{}, cacheTestWaypoints)
	require.NoError(t, err)
	require.Equal(t, "fresh", route.Polyline)
	require.Equal(t, 1, inner.Calls)
}

func TestCachingOptimizerDistinctRequestsMiss(t *testing.T) {
	inner := &FakeOptimizer{}
	routeCache := newFakeRouteCache()
	optimizer := NewCachingOptimizer(inner, routeCache, nil)

	_, err := optimizer.OptimizeRoute(context.Background(), domain.Coordinate{}, cacheTestWaypoints)
	require.NoError(t, err)

	// Reversed waypoints change the destination, so the key must differ.
	reversed := []domain.Coordinate{cacheTestWaypoints[1], cacheTestWaypoints[0]}
	_, err = optimizer.OptimizeRoute(context.Background(), domain.Coordinate{}, reversed)
	require.NoError(t, err)

	require.Equal(t, 2, inner.Calls)
}

func TestCachingOptimizerCacheReadFailureDegrades(t *testing.T) {
	inner := &FakeOptimizer{Result: ports.OptimizedRoute{Polyline: "fresh"}}
	routeCache := newFakeRouteCache()
	routeCache.getErr = errors.New("disk gone")

	optimizer := NewCachingOptimizer(inner, routeCache, nil)

	route, err := optimizer.OptimizeRoute(context.Background(), domain.Coordinate{}, cacheTestWaypoints)
	require.NoError(t, err)
	require.Equal(t, "fresh", route.Polyline)
	require.Equal(t, 1, inner.Calls)
}

func TestCachingOptimizerCacheWriteFailureDegrades(t *testing.T) {
	inner := &FakeOptimizer{Result: ports.OptimizedRoute{Polyline: "fresh"}}
	routeCache := newFakeRouteCache()
	routeCache.putErr = errors.New("disk full")

	optimizer := NewCachingOptimizer(inner, routeCache, nil)

	route, err := optimizer.OptimizeRoute(context.Background(), domain.Coordinate{}, cacheTestWaypoints)
	require.NoError(t, err)
	require.Equal(t, "fresh", route.Polyline)
}

func TestCachingOptimizerInnerErrorNotCached(t *testing.T) {
	inner := &FakeOptimizer{Err: errors.New("provider down")}
	routeCache := newFakeRouteCache()

	optimizer := NewCachingOptimizer(inner, routeCache, nil)

	_, err := optimizer.OptimizeRoute(context.Background(), domain.Coordinate{}, cacheTestWaypoints)
	require.Error(t, err)
	require.Zero(t, routeCache.puts)
	require.Empty(t, routeCache.entries)
}
