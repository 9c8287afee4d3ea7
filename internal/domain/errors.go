package domain

import "errors"

// Errors surfaced to callers by the stop event ledger. Everything else in the
// core degrades instead of failing: a broken optimizer falls back to the local
// heuristic and a missed incremental detection is caught later by batch
// reconciliation.
var (
	// ErrNotFound reports an operation against a record that does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyAcknowledged reports a second acknowledgment attempt on a
	// stop event whose transition already happened.
	ErrAlreadyAcknowledged = errors.New("stop event already acknowledged")
)
