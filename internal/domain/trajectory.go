package domain

import "time"

// TrajectorySample is one recorded agent position. Samples are consumed in
// non-decreasing timestamp order; rows with malformed timestamps are dropped
// at the persistence boundary and never reach detection.
type TrajectorySample struct {
	PositionID int
	Timestamp  time.Time
	Coord      Coordinate
}

// DwellWindow is a transient accumulator for a maximal contiguous run of
// samples within threshold distance of a target. It is never persisted.
type DwellWindow struct {
	Start time.Time
	End   time.Time
}

// Extend moves the window end to the given timestamp.
func (w *DwellWindow) Extend(ts time.Time) { w.End = ts }

// Duration returns the elapsed span covered by the window.
func (w DwellWindow) Duration() time.Duration { return w.End.Sub(w.Start) }

// VisitTarget is a stationary point the detector checks the trajectory
// against. DeliveryID is zero when the target is a bare client location.
type VisitTarget struct {
	DeliveryID int
	ClientID   int
	Latitude   *float64
	Longitude  *float64
}

// Coordinate returns the target position and whether both components are set.
func (t VisitTarget) Coordinate() (Coordinate, bool) {
	if t.Latitude == nil || t.Longitude == nil {
		return Coordinate{}, false
	}
	return Coordinate{Lat: *t.Latitude, Lon: *t.Longitude}, true
}

// VisitDetection is the output of a batch detection pass: the agent dwelt
// within range of the target for at least the minimum duration.
type VisitDetection struct {
	DeliveryID  int
	ClientID    int
	StaySeconds int
	DetectedAt  time.Time
}
