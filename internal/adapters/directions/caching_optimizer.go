package directions

import (
	"context"
	"strings"

	"delivery-tracking-service/internal/domain"
	"delivery-tracking-service/internal/ports"

	"github.com/sirupsen/logrus"
)

// CachingOptimizer decorates a RouteOptimizer with a persistent response
// cache. Cache failures never fail the optimization: a broken cache degrades
// to calling the inner optimizer directly.
type CachingOptimizer struct {
	Inner ports.RouteOptimizer
	Cache ports.RouteCache
	Log   *logrus.Logger
}

func NewCachingOptimizer(inner ports.RouteOptimizer, cache ports.RouteCache, log *logrus.Logger) *CachingOptimizer {
	return &CachingOptimizer{Inner: inner, Cache: cache, Log: log}
}

func (c *CachingOptimizer) OptimizeRoute(
	ctx context.Context,
	origin domain.Coordinate,
	waypoints []domain.Coordinate,
) (ports.OptimizedRoute, error) {
	key := requestKey(origin, waypoints)

	cached, hit, err := c.Cache.Get(ctx, key)
	if err != nil {
		c.logger().WithError(err).Warn("route cache read failed")
	} else if hit {
		return cached, nil
	}

	route, err := c.Inner.OptimizeRoute(ctx, origin, waypoints)
	if err != nil {
		return ports.OptimizedRoute{}, err
	}

	if err := c.Cache.Put(ctx, key, route); err != nil {
		c.logger().WithError(err).Warn("route cache write failed")
	}

	return route, nil
}

func (c *CachingOptimizer) logger() *logrus.Logger {
	if c.Log != nil {
		return c.Log
	}
	return logrus.StandardLogger()
}

// requestKey normalizes a request into a stable cache key. Waypoint order
// matters: the optimizer treats the last coordinate as the destination.
func requestKey(origin domain.Coordinate, waypoints []domain.Coordinate) string {
	parts := make([]string, 0, 1+len(waypoints))
	parts = append(parts, formatCoordinate(origin))
	for _, w := range waypoints {
		parts = append(parts, formatCoordinate(w))
	}
	return strings.Join(parts, ";")
}
