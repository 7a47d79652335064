package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PointStatus is the lifecycle state of a daily balance snapshot.
type PointStatus string

const (
	PointCurrent     PointStatus = "current"
	PointRecomputing PointStatus = "recomputing"
	PointFailed      PointStatus = "failed"
)

// BalancePoint is a materialized daily snapshot of an account's balance.
// Points form a contiguous series: a day with no transactions carries the
// previous day's balance forward with HasTransactions false. Unique per
// (account, day).
type BalancePoint struct {
	AccountID       string
	Day             time.Time
	Balance         decimal.Decimal
	HasTransactions bool
	Status          PointStatus
	UpdatedAt       time.Time
}

// RecomputeJob is the per-account coordination record for deferred timeline
// recomputation. EarliestDirtyDate only ever moves earlier (range
// consolidation); Generation increments on every trigger so an in-flight
// job can detect it has been superseded and abort.
type RecomputeJob struct {
	AccountID         string
	EarliestDirtyDate time.Time
	Generation        int64
	UpdatedAt         time.Time
}

// Day truncates t to its UTC calendar date. All ledger dates and balance
// point days are normalized through this before comparison or storage.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
