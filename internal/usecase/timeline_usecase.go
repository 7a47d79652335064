package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mariobrusarosco/better-call-buffet/internal/domain"
)

// TimelineUseCase derives day-by-day balance series and point-in-time
// balances by replaying the ledger from a known starting point. It is also
// the recomputation engine the background worker drives after backdated
// inserts.
type TimelineUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   TransactionRepository
	pointRepo   BalancePointRepository
	jobRepo     RecomputeJobRepository
	cache       Cache
	cacheTTL    time.Duration
}

// NewTimelineUseCase creates a new TimelineUseCase. cache may be nil to
// disable response caching.
func NewTimelineUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo TransactionRepository,
	pointRepo BalancePointRepository,
	jobRepo RecomputeJobRepository,
	cache Cache,
	cacheTTL time.Duration,
) *TimelineUseCase {
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	return &TimelineUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		pointRepo:   pointRepo,
		jobRepo:     jobRepo,
		cache:       cache,
		cacheTTL:    cacheTTL,
	}
}

// GetTimelineInput represents input for a timeline query.
type GetTimelineInput struct {
	OwnerID   string
	AccountID string
	Start     time.Time
	End       time.Time
}

// TimelineResult is an ordered daily series plus the account's snapshot
// status. Status recomputing means a backdated insert invalidated stored
// points and the worker has not caught up; the series itself is computed
// from the ledger and is always internally consistent.
type TimelineResult struct {
	Points []domain.BalancePoint
	Status domain.PointStatus
}

// GetTimeline returns one balance point per calendar day in [start, end].
// Days before the account existed carry a zero balance; days without
// transactions carry the previous day's balance forward.
func (uc *TimelineUseCase) GetTimeline(ctx context.Context, input GetTimelineInput) (*TimelineResult, error) {
	start, end := domain.Day(input.Start), domain.Day(input.End)
	today := domain.Day(time.Now().UTC())

	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s before start %s", domain.ErrInvalidDateRange,
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	if end.After(today) {
		return nil, fmt.Errorf("%w: end date is in the future", domain.ErrInvalidDateRange)
	}

	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if !account.OwnedBy(input.OwnerID) {
		return nil, domain.ErrOwnershipViolation
	}

	job, err := uc.jobRepo.Get(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}

	status := domain.PointCurrent
	if job != nil {
		status = domain.PointRecomputing
	}

	cacheKey := uc.timelineCacheKey(account, start, end)
	if job == nil && uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, cacheKey); err == nil && cached != nil {
			var points []domain.BalancePoint
			if json.Unmarshal(cached, &points) == nil {
				return &TimelineResult{Points: points, Status: status}, nil
			}
		}
	}

	opening, err := uc.openingBalance(ctx, input.AccountID, start, job)
	if err != nil {
		return nil, err
	}

	entries, err := uc.entryRepo.ListByAccountBetween(ctx, input.AccountID, start, end)
	if err != nil {
		return nil, err
	}

	points := domain.WalkDaily(input.AccountID, opening, entries, start, end)

	// Persist and cache opportunistically, but never while a recompute is
	// pending: the job owns those rows.
	if job == nil {
		if err := uc.persistPoints(ctx, points); err != nil {
			return nil, err
		}

		if uc.cache != nil {
			if encoded, err := json.Marshal(points); err == nil {
				_ = uc.cache.Set(ctx, cacheKey, encoded, uc.cacheTTL)
			}
		}
	}

	return &TimelineResult{Points: points, Status: status}, nil
}

// GetBalanceAt returns the account balance as of the end of asOf.
func (uc *TimelineUseCase) GetBalanceAt(ctx context.Context, ownerID, accountID string, asOf time.Time) (decimal.Decimal, error) {
	day := domain.Day(asOf)
	today := domain.Day(time.Now().UTC())

	if day.After(today) {
		return decimal.Zero, fmt.Errorf("%w: as-of date is in the future", domain.ErrInvalidDateRange)
	}

	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	if !account.OwnedBy(ownerID) {
		return decimal.Zero, domain.ErrOwnershipViolation
	}

	job, err := uc.jobRepo.Get(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	if job == nil {
		if point, err := uc.pointRepo.GetLatestBefore(ctx, accountID, day.AddDate(0, 0, 1)); err == nil && point != nil {
			// A snapshot on or before the requested day plus the entries
			// after it reproduces the ledger sum without a full replay.
			if point.Day.Equal(day) {
				return point.Balance, nil
			}
		}
	}

	return uc.entryRepo.SumImpactsByAccountThrough(ctx, accountID, day)
}

// Recompute replays the ledger for the account's pending recompute job,
// from its earliest dirty date through today, and retires the job if no
// newer trigger superseded it. Returns superseded=true when a concurrent
// backdated insert extended the range; the caller should re-run.
func (uc *TimelineUseCase) Recompute(ctx context.Context, accountID string) (superseded bool, err error) {
	job, err := uc.jobRepo.Get(ctx, accountID)
	if err != nil {
		return false, err
	}

	if job == nil {
		return false, nil
	}

	start := domain.Day(job.EarliestDirtyDate)
	today := domain.Day(time.Now().UTC())

	if err := uc.recomputeRange(ctx, accountID, start, today, job.Generation); err != nil {
		uc.markFailed(ctx, accountID, start)
		return false, err
	}

	// The job row survives a Complete with a stale generation; report it
	// so the worker re-runs with the extended range.
	current, err := uc.jobRepo.Get(ctx, accountID)
	if err != nil {
		return false, err
	}

	return current != nil, nil
}

// ForceRecompute drains the account's pending recompute job synchronously
// instead of waiting for the background worker. Returns the resulting
// snapshot status: current when the job is retired, recomputing when
// concurrent backdated inserts kept extending the range faster than the
// replay could finish.
func (uc *TimelineUseCase) ForceRecompute(ctx context.Context, ownerID, accountID string) (domain.PointStatus, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return domain.PointFailed, err
	}

	if !account.OwnedBy(ownerID) {
		return domain.PointFailed, domain.ErrOwnershipViolation
	}

	for attempt := 0; attempt < forceRecomputeAttempts; attempt++ {
		superseded, err := uc.Recompute(ctx, accountID)
		if err != nil {
			return domain.PointFailed, err
		}
		if !superseded {
			return domain.PointCurrent, nil
		}
	}

	// Still superseded after several replays; leave the rest to the worker.
	return domain.PointRecomputing, nil
}

func (uc *TimelineUseCase) recomputeRange(ctx context.Context, accountID string, start, end time.Time, generation int64) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Serializes against reconciliation fixes and other recomputations
	// for this account.
	if err := uc.pointRepo.LockAccount(ctx, tx, accountID); err != nil {
		return err
	}

	opening, err := uc.openingBalance(ctx, accountID, start, nil)
	if err != nil {
		return err
	}

	entries, err := uc.entryRepo.ListByAccountBetween(ctx, accountID, start, end)
	if err != nil {
		return err
	}

	points := domain.WalkDaily(accountID, opening, entries, start, end)

	if err := uc.pointRepo.UpsertRange(ctx, tx, points); err != nil {
		return err
	}

	if _, err := uc.jobRepo.Complete(ctx, tx, accountID, generation); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// openingBalance determines the balance at the day before start, from a
// clean prior snapshot when one exists, else by summing all ledger impacts
// up to that day. A pending job makes snapshots untrustworthy from its
// dirty date onward, so those are bypassed.
func (uc *TimelineUseCase) openingBalance(ctx context.Context, accountID string, start time.Time, job *domain.RecomputeJob) (decimal.Decimal, error) {
	usePoint := job == nil || domain.Day(job.EarliestDirtyDate).After(start) || domain.Day(job.EarliestDirtyDate).Equal(start)

	if usePoint {
		point, err := uc.pointRepo.GetLatestBefore(ctx, accountID, start)
		if err != nil {
			return decimal.Zero, err
		}

		if point != nil {
			// Entries between the snapshot and start still need replaying
			// when the snapshot is older than the day before start.
			dayBefore := start.AddDate(0, 0, -1)
			if point.Day.Equal(dayBefore) {
				return point.Balance, nil
			}

			tail, err := uc.entryRepo.ListByAccountBetween(ctx, accountID, point.Day.AddDate(0, 0, 1), dayBefore)
			if err != nil {
				return decimal.Zero, err
			}

			return point.Balance.Add(domain.SumImpacts(tail)), nil
		}
	}

	return uc.entryRepo.SumImpactsByAccountThrough(ctx, accountID, start.AddDate(0, 0, -1))
}

func (uc *TimelineUseCase) persistPoints(ctx context.Context, points []domain.BalancePoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.pointRepo.UpsertRange(ctx, tx, points); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (uc *TimelineUseCase) markFailed(ctx context.Context, accountID string, from time.Time) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return
	}
	defer tx.Rollback(ctx)

	if err := uc.pointRepo.MarkStatusFrom(ctx, tx, accountID, from, domain.PointFailed); err != nil {
		return
	}

	_ = tx.Commit(ctx)
}

// timelineCacheKey embeds the balance-updated timestamp so any write to
// the account naturally misses stale entries instead of requiring
// explicit invalidation.
func (uc *TimelineUseCase) timelineCacheKey(account *domain.Account, start, end time.Time) string {
	return fmt.Sprintf("timeline:%s:%s:%s:%d",
		account.ID, start.Format("2006-01-02"), end.Format("2006-01-02"), account.BalanceUpdatedAt.UnixNano())
}
