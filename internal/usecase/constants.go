package usecase

import "time"

const (
	// DefaultRetentionWindow is how far back a transaction may be dated.
	// Older inserts are rejected rather than silently dropped from
	// timelines.
	DefaultRetentionWindow = 2 * 365 * 24 * time.Hour

	// DefaultListLimit and MaxListLimit bound pagination.
	DefaultListLimit = 20
	MaxListLimit     = 100

	// IdempotencyKeyTTL is how long idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour

	// forceRecomputeAttempts bounds how many superseded replays a
	// synchronous recomputation retries before handing off to the worker.
	forceRecomputeAttempts = 3
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
