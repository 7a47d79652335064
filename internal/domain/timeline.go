package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalkDaily replays ledger entries over [start, end] and produces one
// balance point per calendar day, never skipping days. Entries must belong
// to a single account, be sorted by (date, sequence), and fall within the
// range; days without entries carry the previous balance forward with
// HasTransactions false. Replaying the same inputs always reproduces the
// same series.
func WalkDaily(accountID string, opening decimal.Decimal, entries []*Transaction, start, end time.Time) []BalancePoint {
	start, end = Day(start), Day(end)
	if end.Before(start) {
		return nil
	}

	points := make([]BalancePoint, 0, int(end.Sub(start).Hours()/24)+1)
	running := opening
	i := 0

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		hasTx := false
		for i < len(entries) && Day(entries[i].Date).Equal(day) {
			running = running.Add(entries[i].BalanceImpact)
			hasTx = true
			i++
		}

		points = append(points, BalancePoint{
			AccountID:       accountID,
			Day:             day,
			Balance:         running,
			HasTransactions: hasTx,
			Status:          PointCurrent,
		})
	}

	return points
}

// SumImpacts totals the signed impacts of entries. Used by reconciliation
// to recompute a balance from scratch, independent of any cached value.
func SumImpacts(entries []*Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.BalanceImpact)
	}
	return total
}
