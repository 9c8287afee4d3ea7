package domain

// RouteLeg describes one segment of an externally optimized route.
type RouteLeg struct {
	DistanceMeters  int
	DurationSeconds int
	StartAddress    string
	EndAddress      string
}

// RouteMetadata carries the extra answers an external optimizer produced.
// It is only present when the optimizer call succeeded; the local heuristic
// never fabricates it.
type RouteMetadata struct {
	Polyline string
	Legs     []RouteLeg
	Warnings []string
	Summary  string
}

// RouteResult is the outcome of ordering a set of stop candidates.
// Ordered contains exactly one entry per candidate that had coordinates;
// Skipped preserves the input order of candidates that lacked them.
type RouteResult struct {
	Start    Coordinate
	Ordered  []Waypoint
	Skipped  []Waypoint
	Metadata *RouteMetadata
}
