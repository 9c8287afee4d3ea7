package ports

import "context"

// Port: a persistent cache for optimizer responses. Keys are expected to be
// consistent (e.g., already normalized) by the caller.
type RouteCache interface {
	// Get returns the cached route for key when present and fresh.
	Get(ctx context.Context, key string) (OptimizedRoute, bool, error)

	// Put stores the route under key, replacing any previous entry.
	Put(ctx context.Context, key string, route OptimizedRoute) error
}
