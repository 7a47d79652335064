package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mariobrusarosco/better-call-buffet/internal/domain"
	"github.com/mariobrusarosco/better-call-buffet/internal/usecase"
	"github.com/mariobrusarosco/better-call-buffet/internal/usecase/mocks"
)

type timelineFixture struct {
	accountRepo *mocks.MockAccountRepository
	entryRepo   *mocks.MockTransactionRepository
	pointRepo   *mocks.MockBalancePointRepository
	jobRepo     *mocks.MockRecomputeJobRepository
	cache       *mocks.MockCache
	uc          *usecase.TimelineUseCase
}

func newTimelineFixture() *timelineFixture {
	f := &timelineFixture{
		accountRepo: mocks.NewMockAccountRepository(),
		entryRepo:   mocks.NewMockTransactionRepository(),
		pointRepo:   mocks.NewMockBalancePointRepository(),
		jobRepo:     mocks.NewMockRecomputeJobRepository(),
		cache:       mocks.NewMockCache(),
	}
	f.uc = usecase.NewTimelineUseCase(
		mocks.NewMockTransactionManager(), f.accountRepo, f.entryRepo,
		f.pointRepo, f.jobRepo, f.cache, time.Minute,
	)
	return f
}

func (f *timelineFixture) seedAccount(id, ownerID string, balance int64) *domain.Account {
	account := &domain.Account{
		ID:       id,
		OwnerID:  ownerID,
		Name:     "Account " + id,
		Kind:     domain.AccountChecking,
		Currency: "USD",
		Balance:  decimal.NewFromInt(balance),
		Active:   true,
	}
	_ = f.accountRepo.Create(context.Background(), account)
	return account
}

func (f *timelineFixture) seedEntry(accountID string, day time.Time, impact int64) {
	amount := decimal.NewFromInt(impact)
	movement := domain.MovementIncome
	if impact < 0 {
		amount = amount.Neg()
		movement = domain.MovementExpense
	}
	_ = f.entryRepo.Create(context.Background(), nil, &domain.Transaction{
		ID:            "e-" + day.Format("20060102") + "-" + accountID,
		OwnerID:       "owner-1",
		Amount:        amount,
		MovementType:  movement,
		AccountID:     &accountID,
		Date:          domain.Day(day),
		BalanceImpact: decimal.NewFromInt(impact),
	})
}

func today() time.Time {
	return domain.Day(time.Now().UTC())
}

func TestTimelineUseCase_GetTimelineGapFill(t *testing.T) {
	f := newTimelineFixture()
	f.seedAccount("acc-1", "owner-1", 70)

	d := today()
	f.seedEntry("acc-1", d.AddDate(0, 0, -5), 100)
	f.seedEntry("acc-1", d.AddDate(0, 0, -2), -30)

	result, err := f.uc.GetTimeline(context.Background(), usecase.GetTimelineInput{
		OwnerID:   "owner-1",
		AccountID: "acc-1",
		Start:     d.AddDate(0, 0, -6),
		End:       d,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != domain.PointCurrent {
		t.Errorf("expected status current, got %s", result.Status)
	}
	if len(result.Points) != 7 {
		t.Fatalf("expected 7 points, got %d", len(result.Points))
	}

	wantBalances := []int64{0, 100, 100, 100, 70, 70, 70}
	wantActivity := []bool{false, true, false, false, true, false, false}
	for i, p := range result.Points {
		if !p.Balance.Equal(decimal.NewFromInt(wantBalances[i])) {
			t.Errorf("day %d: expected balance %d, got %s", i, wantBalances[i], p.Balance)
		}
		if p.HasTransactions != wantActivity[i] {
			t.Errorf("day %d: expected HasTransactions=%v", i, wantActivity[i])
		}
	}

	// Clean reads persist their points for the next reader.
	if _, ok := f.pointRepo.Point("acc-1", d.AddDate(0, 0, -5)); !ok {
		t.Error("expected computed points to be persisted")
	}
}

func TestTimelineUseCase_GetTimelineValidation(t *testing.T) {
	f := newTimelineFixture()
	f.seedAccount("acc-1", "owner-1", 0)

	d := today()

	t.Run("inverted range", func(t *testing.T) {
		_, err := f.uc.GetTimeline(context.Background(), usecase.GetTimelineInput{
			OwnerID: "owner-1", AccountID: "acc-1",
			Start: d, End: d.AddDate(0, 0, -1),
		})
		if !errors.Is(err, domain.ErrInvalidDateRange) {
			t.Errorf("expected ErrInvalidDateRange, got %v", err)
		}
	})

	t.Run("future end", func(t *testing.T) {
		_, err := f.uc.GetTimeline(context.Background(), usecase.GetTimelineInput{
			OwnerID: "owner-1", AccountID: "acc-1",
			Start: d, End: d.AddDate(0, 0, 3),
		})
		if !errors.Is(err, domain.ErrInvalidDateRange) {
			t.Errorf("expected ErrInvalidDateRange, got %v", err)
		}
	})

	t.Run("foreign owner", func(t *testing.T) {
		_, err := f.uc.GetTimeline(context.Background(), usecase.GetTimelineInput{
			OwnerID: "owner-2", AccountID: "acc-1",
			Start: d.AddDate(0, 0, -1), End: d,
		})
		if !errors.Is(err, domain.ErrOwnershipViolation) {
			t.Errorf("expected ErrOwnershipViolation, got %v", err)
		}
	})
}

func TestTimelineUseCase_GetTimelineCachesCleanReads(t *testing.T) {
	f := newTimelineFixture()
	f.seedAccount("acc-1", "owner-1", 100)

	d := today()
	f.seedEntry("acc-1", d.AddDate(0, 0, -1), 100)

	var mu sync.Mutex
	listCalls := 0
	entries := f.entryRepo.All()
	f.entryRepo.ListByAccountBetweenFunc = func(ctx context.Context, accountID string, start, end time.Time) ([]*domain.Transaction, error) {
		mu.Lock()
		listCalls++
		mu.Unlock()
		return entries, nil
	}

	input := usecase.GetTimelineInput{
		OwnerID: "owner-1", AccountID: "acc-1",
		Start: d.AddDate(0, 0, -1), End: d,
	}

	for i := 0; i < 2; i++ {
		if _, err := f.uc.GetTimeline(context.Background(), input); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
	}

	if listCalls != 1 {
		t.Errorf("expected 1 ledger scan, got %d", listCalls)
	}
}

func TestTimelineUseCase_GetTimelineWithPendingJob(t *testing.T) {
	f := newTimelineFixture()
	f.seedAccount("acc-1", "owner-1", 100)

	d := today()
	f.seedEntry("acc-1", d.AddDate(0, 0, -1), 100)
	_, _ = f.jobRepo.Upsert(context.Background(), nil, "acc-1", d.AddDate(0, 0, -1))

	result, err := f.uc.GetTimeline(context.Background(), usecase.GetTimelineInput{
		OwnerID: "owner-1", AccountID: "acc-1",
		Start: d.AddDate(0, 0, -1), End: d,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != domain.PointRecomputing {
		t.Errorf("expected status recomputing, got %s", result.Status)
	}

	// The series is still computed from the ledger, not stale snapshots.
	if !result.Points[0].Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected balance 100, got %s", result.Points[0].Balance)
	}

	// The pending job owns the snapshot rows.
	if _, ok := f.pointRepo.Point("acc-1", d.AddDate(0, 0, -1)); ok {
		t.Error("expected no persistence while a recompute is pending")
	}
}

func TestTimelineUseCase_GetBalanceAt(t *testing.T) {
	f := newTimelineFixture()
	f.seedAccount("acc-1", "owner-1", 70)

	d := today()
	f.seedEntry("acc-1", d.AddDate(0, 0, -5), 100)
	f.seedEntry("acc-1", d.AddDate(0, 0, -2), -30)

	balance, err := f.uc.GetBalanceAt(context.Background(), "owner-1", "acc-1", d.AddDate(0, 0, -3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected balance 100 before the expense, got %s", balance)
	}

	if _, err := f.uc.GetBalanceAt(context.Background(), "owner-1", "acc-1", d.AddDate(0, 0, 1)); !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Errorf("expected ErrInvalidDateRange for a future date, got %v", err)
	}
}

func TestTimelineUseCase_RecomputeRetiresJob(t *testing.T) {
	f := newTimelineFixture()
	f.seedAccount("acc-1", "owner-1", 170)

	d := today()
	f.seedEntry("acc-1", d.AddDate(0, 0, -5), 100)
	f.seedEntry("acc-1", d.AddDate(0, 0, -2), -30)

	// A stale snapshot from before the backdated insert landed.
	_ = f.pointRepo.UpsertRange(context.Background(), nil, []domain.BalancePoint{
		{AccountID: "acc-1", Day: d.AddDate(0, 0, -2), Balance: decimal.NewFromInt(999), Status: domain.PointRecomputing},
	})
	_, _ = f.jobRepo.Upsert(context.Background(), nil, "acc-1", d.AddDate(0, 0, -5))

	superseded, err := f.uc.Recompute(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if superseded {
		t.Error("expected recompute to complete, not be superseded")
	}

	job, _ := f.jobRepo.Get(context.Background(), "acc-1")
	if job != nil {
		t.Errorf("expected job retired, got %+v", job)
	}

	point, ok := f.pointRepo.Point("acc-1", d.AddDate(0, 0, -2))
	if !ok {
		t.Fatal("expected recomputed point to exist")
	}
	if !point.Balance.Equal(decimal.NewFromInt(70)) {
		t.Errorf("expected recomputed balance 70, got %s", point.Balance)
	}
	if point.Status != domain.PointCurrent {
		t.Errorf("expected status current, got %s", point.Status)
	}

	if f.pointRepo.LockCount("acc-1") == 0 {
		t.Error("expected the per-account lock to be taken during recompute")
	}
}

func TestTimelineUseCase_RecomputeSupersededByConcurrentInsert(t *testing.T) {
	f := newTimelineFixture()
	f.seedAccount("acc-1", "owner-1", 100)

	d := today()
	f.seedEntry("acc-1", d.AddDate(0, 0, -2), 100)
	_, _ = f.jobRepo.Upsert(context.Background(), nil, "acc-1", d.AddDate(0, 0, -2))

	// A backdated insert lands mid-replay and bumps the job's generation.
	entries := f.entryRepo.All()
	raced := false
	f.entryRepo.ListByAccountBetweenFunc = func(ctx context.Context, accountID string, start, end time.Time) ([]*domain.Transaction, error) {
		if !raced {
			raced = true
			_, _ = f.jobRepo.Upsert(ctx, nil, accountID, d.AddDate(0, 0, -4))
		}
		return entries, nil
	}

	superseded, err := f.uc.Recompute(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !superseded {
		t.Error("expected the run to report supersession")
	}

	job, _ := f.jobRepo.Get(context.Background(), "acc-1")
	if job == nil {
		t.Fatal("expected the extended job to survive")
	}
	if !job.EarliestDirtyDate.Equal(d.AddDate(0, 0, -4)) {
		t.Errorf("expected dirty date extended to %s, got %s", d.AddDate(0, 0, -4), job.EarliestDirtyDate)
	}
}

func TestTimelineUseCase_RecomputeNoJobIsNoop(t *testing.T) {
	f := newTimelineFixture()
	f.seedAccount("acc-1", "owner-1", 0)

	superseded, err := f.uc.Recompute(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if superseded {
		t.Error("expected no-op, got superseded")
	}
}

func TestTimelineUseCase_ForceRecompute(t *testing.T) {
	f := newTimelineFixture()
	f.seedAccount("acc-1", "owner-1", 100)

	d := today()
	f.seedEntry("acc-1", d.AddDate(0, 0, -3), 100)
	_, _ = f.jobRepo.Upsert(context.Background(), nil, "acc-1", d.AddDate(0, 0, -3))

	status, err := f.uc.ForceRecompute(context.Background(), "owner-1", "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != domain.PointCurrent {
		t.Errorf("expected status current, got %s", status)
	}

	job, _ := f.jobRepo.Get(context.Background(), "acc-1")
	if job != nil {
		t.Errorf("expected job drained, got %+v", job)
	}
}

func TestTimelineUseCase_ForceRecomputeOwnership(t *testing.T) {
	f := newTimelineFixture()
	f.seedAccount("acc-1", "owner-1", 0)

	_, err := f.uc.ForceRecompute(context.Background(), "owner-2", "acc-1")
	if !errors.Is(err, domain.ErrOwnershipViolation) {
		t.Fatalf("expected ownership violation, got %v", err)
	}
}

func TestTimelineUseCase_RecomputeFailureMarksPointsFailed(t *testing.T) {
	f := newTimelineFixture()
	f.seedAccount("acc-1", "owner-1", 100)

	d := today()
	_ = f.pointRepo.UpsertRange(context.Background(), nil, []domain.BalancePoint{
		{AccountID: "acc-1", Day: d.AddDate(0, 0, -1), Balance: decimal.NewFromInt(100), Status: domain.PointRecomputing},
	})
	_, _ = f.jobRepo.Upsert(context.Background(), nil, "acc-1", d.AddDate(0, 0, -1))

	scanErr := errors.New("ledger scan failed")
	f.entryRepo.ListByAccountBetweenFunc = func(ctx context.Context, accountID string, start, end time.Time) ([]*domain.Transaction, error) {
		return nil, scanErr
	}

	_, err := f.uc.Recompute(context.Background(), "acc-1")
	if !errors.Is(err, scanErr) {
		t.Fatalf("expected scan error, got %v", err)
	}

	point, ok := f.pointRepo.Point("acc-1", d.AddDate(0, 0, -1))
	if !ok || point.Status != domain.PointFailed {
		t.Errorf("expected point marked failed, got %+v", point)
	}

	// The job survives so the worker can retry.
	job, _ := f.jobRepo.Get(context.Background(), "acc-1")
	if job == nil {
		t.Error("expected the job to survive a failed run")
	}
}
