package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mariobrusarosco/better-call-buffet/internal/domain"
)

// ReconciliationUseCase verifies cached balances against an independent
// full-ledger sum and repairs confirmed discrepancies under an audit trail.
// It never reuses the incremental bookkeeping it is checking.
type ReconciliationUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	cardRepo    CreditCardRepository
	entryRepo   TransactionRepository
	pointRepo   BalancePointRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	tolerance   decimal.Decimal
}

// NewReconciliationUseCase creates a new ReconciliationUseCase. tolerance
// is the absolute discrepancy below which balances are considered equal;
// zero means exact matching.
func NewReconciliationUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	cardRepo CreditCardRepository,
	entryRepo TransactionRepository,
	pointRepo BalancePointRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	tolerance decimal.Decimal,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		cardRepo:    cardRepo,
		entryRepo:   entryRepo,
		pointRepo:   pointRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		tolerance:   tolerance,
	}
}

// ReconciliationResult reports one account's cached balance against the
// recalculated ledger sum.
type ReconciliationResult struct {
	AccountID         string          `json:"account_id"`
	CachedBalance     decimal.Decimal `json:"cached_balance"`
	CalculatedBalance decimal.Decimal `json:"calculated_balance"`
	Discrepancy       decimal.Decimal `json:"discrepancy"`
	IsBalanced        bool            `json:"is_balanced"`
	CheckedAt         time.Time       `json:"checked_at"`
}

// Reconcile recalculates the account's balance from every ledger entry and
// compares it to the cached value. Read-only; detection never mutates.
func (uc *ReconciliationUseCase) Reconcile(ctx context.Context, ownerID, accountID string) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if !account.OwnedBy(ownerID) {
		return nil, domain.ErrOwnershipViolation
	}

	calculated, err := uc.entryRepo.SumImpactsByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return uc.buildResult(accountID, account.Balance, calculated), nil
}

// ReconcileCard recalculates the card's outstanding debt from its ledger
// entries and compares it to the cached value.
func (uc *ReconciliationUseCase) ReconcileCard(ctx context.Context, ownerID, cardID string) (*ReconciliationResult, error) {
	card, err := uc.cardRepo.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if !card.OwnedBy(ownerID) {
		return nil, domain.ErrOwnershipViolation
	}

	calculated, err := uc.entryRepo.SumImpactsByCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	return uc.buildResult(cardID, card.Outstanding, calculated), nil
}

// ReconcileAll checks every account belonging to the owner and returns one
// result per account. Individual results carry their own discrepancy; the
// call only fails on infrastructure errors.
func (uc *ReconciliationUseCase) ReconcileAll(ctx context.Context, ownerID string) ([]*ReconciliationResult, error) {
	var results []*ReconciliationResult

	offset := 0
	for {
		accounts, err := uc.accountRepo.ListByOwner(ctx, ownerID, MaxListLimit, offset)
		if err != nil {
			return nil, err
		}

		for _, account := range accounts {
			calculated, err := uc.entryRepo.SumImpactsByAccount(ctx, account.ID)
			if err != nil {
				return nil, err
			}
			results = append(results, uc.buildResult(account.ID, account.Balance, calculated))
		}

		if len(accounts) < MaxListLimit {
			break
		}
		offset += MaxListLimit
	}

	return results, nil
}

// FixDiscrepancy overwrites the cached balance with the recalculated ledger
// sum, recording before and after states in the audit log. The account is
// locked and re-summed inside the transaction so the fix cannot clobber a
// concurrent write. Returns ErrDiscrepancyDetected-free result; when the
// balances already match the fix is a no-op but still audited.
func (uc *ReconciliationUseCase) FixDiscrepancy(ctx context.Context, ownerID, accountID string) (*ReconciliationResult, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Same advisory lock the recompute path takes, so a fix and a replay
	// cannot interleave on one account.
	if err := uc.pointRepo.LockAccount(ctx, tx, accountID); err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	if !account.OwnedBy(ownerID) {
		return nil, domain.ErrOwnershipViolation
	}

	calculated, err := uc.entryRepo.SumImpactsByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	// The repository may hand back a shared object that UpdateBalance
	// mutates, so the audited before-state is captured first.
	cachedBefore := account.Balance

	result := uc.buildResult(accountID, cachedBefore, calculated)

	now := time.Now().UTC()

	if !result.IsBalanced {
		lastID := ""
		if account.LastTransactionID != nil {
			lastID = *account.LastTransactionID
		}
		if err := uc.accountRepo.UpdateBalance(ctx, tx, accountID, calculated, lastID, now); err != nil {
			return nil, err
		}
	}

	before, err := domain.MarshalState(map[string]string{"balance": cachedBefore.String()})
	if err != nil {
		return nil, err
	}
	after, err := domain.MarshalState(map[string]string{"balance": calculated.String()})
	if err != nil {
		return nil, err
	}

	log := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		OwnerID:      ownerID,
		Action:       domain.AuditActionBalanceFix,
		ResourceType: "account",
		ResourceID:   accountID,
		BeforeState:  before,
		AfterState:   after,
		Status:       domain.AuditStatusSuccess,
		CreatedAt:    now,
	}

	if err := uc.auditRepo.CreateTx(ctx, tx, log); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	result.CachedBalance = calculated
	result.Discrepancy = decimal.Zero
	result.IsBalanced = true

	return result, nil
}

// VerifyTransferPair checks that both legs of a linked pair exist, reference
// each other, and carry impacts that cancel out.
func (uc *ReconciliationUseCase) VerifyTransferPair(ctx context.Context, ownerID, entryID string) error {
	entry, err := uc.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		return err
	}

	if entry.OwnerID != ownerID {
		return domain.ErrTransactionNotFound
	}

	if entry.RelatedTransactionID == nil {
		return fmt.Errorf("%w: entry %s has no pair reference", domain.ErrDiscrepancyDetected, entryID)
	}

	related, err := uc.entryRepo.GetByID(ctx, *entry.RelatedTransactionID)
	if err != nil {
		return fmt.Errorf("%w: pair leg missing for %s", domain.ErrDiscrepancyDetected, entryID)
	}

	if related.RelatedTransactionID == nil || *related.RelatedTransactionID != entry.ID {
		return fmt.Errorf("%w: pair legs do not reference each other", domain.ErrDiscrepancyDetected)
	}

	// Card payments shrink both sides, so the legs only cancel for
	// account-to-account transfers.
	if entry.MovementType == domain.MovementTransfer {
		if !entry.BalanceImpact.Add(related.BalanceImpact).IsZero() {
			return fmt.Errorf("%w: pair impacts do not cancel", domain.ErrDiscrepancyDetected)
		}
	}

	return nil
}

func (uc *ReconciliationUseCase) buildResult(id string, cached, calculated decimal.Decimal) *ReconciliationResult {
	discrepancy := cached.Sub(calculated)

	return &ReconciliationResult{
		AccountID:         id,
		CachedBalance:     cached,
		CalculatedBalance: calculated,
		Discrepancy:       discrepancy,
		IsBalanced:        discrepancy.Abs().LessThanOrEqual(uc.tolerance),
		CheckedAt:         time.Now().UTC(),
	}
}
