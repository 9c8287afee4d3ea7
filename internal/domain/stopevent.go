package domain

import "time"

// StopCandidate is a dwell detected by the incremental (two-sample) detector.
// It becomes a StopEvent once the ledger accepts it.
type StopCandidate struct {
	PositionID      int
	ClientID        int
	DistanceKm      float64
	DurationSeconds int
	TriggeredAt     time.Time
}

// StopEvent is a persisted, acknowledgeable record of a detected dwell near a
// client location. The acknowledgment transition is terminal: once
// AcknowledgedAt is set the event is never mutated again.
type StopEvent struct {
	ID          int
	PositionID  int
	ClientID    int
	ClientName  string
	DistanceKm  float64
	TriggeredAt time.Time

	AcknowledgedAt *time.Time
	Delivered      bool
	Quantity       *int
	Notes          *string
}

// Acknowledged reports whether the event has left the unacknowledged state.
func (e StopEvent) Acknowledged() bool { return e.AcknowledgedAt != nil }

// StopEventListItem is a StopEvent enriched for read paths with the elapsed
// time between the triggering position and the one immediately before it.
// The duration is derived at read time, not stored.
type StopEventListItem struct {
	StopEvent
	DurationSeconds *int
}
