package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mariobrusarosco/better-call-buffet/internal/domain"
)

// MutatorConfig carries the balance mutator's policy knobs.
type MutatorConfig struct {
	// AllowNegativeBalance permits account balances to go below zero.
	AllowNegativeBalance bool
	// RetentionWindow is how far back a transaction may be dated.
	RetentionWindow time.Duration
	// Retrier, when set, re-runs the mutator's transaction on transient
	// database errors (deadlock, serialization failure).
	Retrier Retrier
}

// TransactionUseCase is the balance mutator: the single writer path for
// cached balances. It inserts ledger entries and applies their computed
// impacts to the affected account or credit card inside one database
// transaction, and marks balance points stale on backdated inserts.
type TransactionUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	cardRepo    CreditCardRepository
	entryRepo   TransactionRepository
	pointRepo   BalancePointRepository
	jobRepo     RecomputeJobRepository
	idGen       IDGenerator
	cfg         MutatorConfig
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	cardRepo CreditCardRepository,
	entryRepo TransactionRepository,
	pointRepo BalancePointRepository,
	jobRepo RecomputeJobRepository,
	idGen IDGenerator,
	cfg MutatorConfig,
) *TransactionUseCase {
	if cfg.RetentionWindow == 0 {
		cfg.RetentionWindow = DefaultRetentionWindow
	}

	return &TransactionUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		cardRepo:    cardRepo,
		entryRepo:   entryRepo,
		pointRepo:   pointRepo,
		jobRepo:     jobRepo,
		idGen:       idGen,
		cfg:         cfg,
	}
}

// CreateTransactionInput represents input for creating a ledger entry.
// Transfers are two-sided and go through TransferUseCase instead.
type CreateTransactionInput struct {
	OwnerID      string
	Amount       decimal.Decimal
	MovementType domain.MovementType
	AccountID    *string
	CreditCardID *string
	Description  string
	Category     string
	Date         time.Time
	IsPaid       bool
}

// CreateBulkInput represents input for creating multiple entries atomically.
type CreateBulkInput struct {
	Transactions []CreateTransactionInput
}

// Create applies a single transaction.
func (uc *TransactionUseCase) Create(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error) {
	entries, err := uc.CreateBulk(ctx, CreateBulkInput{Transactions: []CreateTransactionInput{input}})
	if err != nil {
		return nil, err
	}

	return entries[0], nil
}

// CreateBulk applies multiple transactions as one atomic unit: all entries
// and all balance updates succeed, or none do. Each affected account or
// card receives exactly one balance write regardless of how many entries
// target it.
func (uc *TransactionUseCase) CreateBulk(ctx context.Context, input CreateBulkInput) ([]*domain.Transaction, error) {
	if len(input.Transactions) == 0 {
		return nil, nil
	}

	// 0. Validate shapes before touching the database
	targets := make([]domain.TargetKind, len(input.Transactions))
	for i, ti := range input.Transactions {
		target, err := uc.validateInput(ti)
		if err != nil {
			return nil, err
		}
		targets[i] = target
	}

	// 1. Collect and sort unique entity IDs (deadlock prevention)
	accountIDs, cardIDs := collectTargetIDs(input.Transactions)
	sort.Strings(accountIDs)
	sort.Strings(cardIDs)

	// The transactional body re-reads all entity state, so a transient
	// failure can replay it from scratch.
	var entries []*domain.Transaction
	err := retryTransient(ctx, uc.cfg.Retrier, func() error {
		// 2. Begin transaction
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		// 3. Lock entities in sorted order, accounts before cards
		accounts, err := uc.lockAccounts(ctx, tx, accountIDs)
		if err != nil {
			return err
		}

		cards, err := uc.lockCards(ctx, tx, cardIDs)
		if err != nil {
			return err
		}

		// 4. Apply each entry against the locked running balances
		now := time.Now().UTC()

		entries = make([]*domain.Transaction, 0, len(input.Transactions))
		for i, ti := range input.Transactions {
			entry, err := uc.buildEntry(ti, targets[i], accounts, cards, now)
			if err != nil {
				return err
			}

			if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
				return err
			}

			entries = append(entries, entry)
		}

		// 5. One balance write per affected entity
		if err := uc.writeBalances(ctx, tx, accounts, cards, entries, now); err != nil {
			return err
		}

		// 6. Invalidate balance points for backdated inserts
		if err := uc.markStalePoints(ctx, tx, entries); err != nil {
			return err
		}

		// 7. Commit
		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// BulkRowResult reports the outcome of one row in skip-errors mode.
type BulkRowResult struct {
	Index       int
	Transaction *domain.Transaction
	Err         error
}

// BulkResult summarizes a skip-errors run.
type BulkResult struct {
	Succeeded int
	Failed    int
	Rows      []BulkRowResult
}

// CreateSkipErrors applies each transaction independently and reports
// per-row outcomes instead of aborting the whole run. Used by CSV import;
// each surviving row still goes through the full atomic pipeline.
func (uc *TransactionUseCase) CreateSkipErrors(ctx context.Context, inputs []CreateTransactionInput) *BulkResult {
	result := &BulkResult{Rows: make([]BulkRowResult, 0, len(inputs))}

	for i, input := range inputs {
		entry, err := uc.Create(ctx, input)
		if err != nil {
			result.Failed++
			result.Rows = append(result.Rows, BulkRowResult{Index: i, Err: err})
			continue
		}

		result.Succeeded++
		result.Rows = append(result.Rows, BulkRowResult{Index: i, Transaction: entry})
	}

	return result
}

// GetTransaction retrieves a ledger entry by ID, scoped to its owner.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, ownerID, id string) (*domain.Transaction, error) {
	entry, err := uc.entryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if entry.OwnerID != ownerID {
		return nil, domain.ErrTransactionNotFound
	}

	return entry, nil
}

// ListByAccountInput represents input for listing entries.
type ListByAccountInput struct {
	OwnerID   string
	AccountID string
	Limit     int
	Offset    int
}

// ListByAccount lists ledger entries for an account.
func (uc *TransactionUseCase) ListByAccount(ctx context.Context, input ListByAccountInput) ([]*domain.Transaction, error) {
	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if !account.OwnedBy(input.OwnerID) {
		return nil, domain.ErrOwnershipViolation
	}

	return uc.entryRepo.ListByAccount(ctx, input.AccountID, clampLimit(input.Limit), input.Offset)
}

func (uc *TransactionUseCase) validateInput(input CreateTransactionInput) (domain.TargetKind, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return "", err
	}

	if input.MovementType != domain.MovementIncome && input.MovementType != domain.MovementExpense {
		return "", domain.ErrInvalidTransactionShape
	}

	target, err := domain.ResolveTarget(input.AccountID, input.CreditCardID, nil, nil)
	if err != nil {
		return "", err
	}

	cutoff := domain.Day(time.Now().UTC().Add(-uc.cfg.RetentionWindow))
	if domain.Day(input.Date).Before(cutoff) {
		return "", fmt.Errorf("%w: dated %s, retention cutoff %s",
			domain.ErrTransactionTooOld, domain.Day(input.Date).Format("2006-01-02"), cutoff.Format("2006-01-02"))
	}

	return target, nil
}

func (uc *TransactionUseCase) lockAccounts(ctx context.Context, tx Transaction, ids []string) (map[string]*domain.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	if len(accounts) != len(ids) {
		return nil, domain.ErrAccountNotFound
	}

	m := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		m[a.ID] = a
	}

	return m, nil
}

func (uc *TransactionUseCase) lockCards(ctx context.Context, tx Transaction, ids []string) (map[string]*domain.CreditCard, error) {
	m := make(map[string]*domain.CreditCard, len(ids))
	for _, id := range ids {
		card, err := uc.cardRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		m[id] = card
	}

	return m, nil
}

// buildEntry computes the impact, validates policy against the running
// balance, applies the impact to the in-memory entity, and returns the
// ledger row to insert.
func (uc *TransactionUseCase) buildEntry(
	input CreateTransactionInput,
	target domain.TargetKind,
	accounts map[string]*domain.Account,
	cards map[string]*domain.CreditCard,
	now time.Time,
) (*domain.Transaction, error) {
	impact, err := domain.Impact(target, input.MovementType, input.Amount)
	if err != nil {
		return nil, err
	}

	switch target {
	case domain.TargetAccount:
		account := accounts[*input.AccountID]
		if !account.OwnedBy(input.OwnerID) {
			return nil, domain.ErrOwnershipViolation
		}
		if !account.Active {
			return nil, domain.ErrAccountInactive
		}
		if input.MovementType == domain.MovementExpense {
			if err := account.ValidateWithdrawal(input.Amount, uc.cfg.AllowNegativeBalance); err != nil {
				return nil, err
			}
		}
		account.Balance = account.Balance.Add(impact)

	case domain.TargetCreditCard:
		card := cards[*input.CreditCardID]
		if !card.OwnedBy(input.OwnerID) {
			return nil, domain.ErrOwnershipViolation
		}
		if input.MovementType == domain.MovementExpense {
			if err := card.ValidatePurchase(input.Amount); err != nil {
				return nil, err
			}
		}
		card.Outstanding = card.Outstanding.Add(impact)
	}

	entry := &domain.Transaction{
		ID:            uc.idGen.Generate(),
		OwnerID:       input.OwnerID,
		Amount:        input.Amount,
		MovementType:  input.MovementType,
		AccountID:     input.AccountID,
		CreditCardID:  input.CreditCardID,
		Description:   input.Description,
		Category:      input.Category,
		IsPaid:        input.IsPaid,
		Date:          domain.Day(input.Date),
		BalanceImpact: impact,
		CreatedAt:     now,
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// writeBalances flushes the accumulated running balances, one write per
// entity, recording the last entry that touched each.
func (uc *TransactionUseCase) writeBalances(
	ctx context.Context,
	tx Transaction,
	accounts map[string]*domain.Account,
	cards map[string]*domain.CreditCard,
	entries []*domain.Transaction,
	now time.Time,
) error {
	lastByAccount := make(map[string]string)
	lastByCard := make(map[string]string)
	for _, e := range entries {
		if e.AccountID != nil {
			lastByAccount[*e.AccountID] = e.ID
		}
		if e.CreditCardID != nil {
			lastByCard[*e.CreditCardID] = e.ID
		}
	}

	for id, lastTxID := range lastByAccount {
		if err := uc.accountRepo.UpdateBalance(ctx, tx, id, accounts[id].Balance, lastTxID, now); err != nil {
			return err
		}
	}

	for id, lastTxID := range lastByCard {
		if err := uc.cardRepo.UpdateOutstanding(ctx, tx, id, cards[id].Outstanding, lastTxID, now); err != nil {
			return err
		}
	}

	return nil
}

// markStalePoints invalidates balance points for accounts that received an
// entry dated at or before their latest snapshot day, and registers the
// recompute job. Recomputation itself is deferred to the worker.
func (uc *TransactionUseCase) markStalePoints(ctx context.Context, tx Transaction, entries []*domain.Transaction) error {
	earliestByAccount := make(map[string]time.Time)
	for _, e := range entries {
		if e.AccountID == nil {
			continue
		}
		if cur, ok := earliestByAccount[*e.AccountID]; !ok || e.Date.Before(cur) {
			earliestByAccount[*e.AccountID] = e.Date
		}
	}

	for accountID, earliest := range earliestByAccount {
		latest, ok, err := uc.pointRepo.GetLatestDay(ctx, accountID)
		if err != nil {
			return err
		}
		if !ok || earliest.After(latest) {
			continue
		}

		if err := uc.pointRepo.MarkStatusFrom(ctx, tx, accountID, earliest, domain.PointRecomputing); err != nil {
			return err
		}

		if _, err := uc.jobRepo.Upsert(ctx, tx, accountID, earliest); err != nil {
			return err
		}
	}

	return nil
}

func collectTargetIDs(inputs []CreateTransactionInput) (accountIDs, cardIDs []string) {
	seenAccounts := make(map[string]bool)
	seenCards := make(map[string]bool)

	for _, ti := range inputs {
		if ti.AccountID != nil && !seenAccounts[*ti.AccountID] {
			seenAccounts[*ti.AccountID] = true
			accountIDs = append(accountIDs, *ti.AccountID)
		}
		if ti.CreditCardID != nil && !seenCards[*ti.CreditCardID] {
			seenCards[*ti.CreditCardID] = true
			cardIDs = append(cardIDs, *ti.CreditCardID)
		}
	}

	return accountIDs, cardIDs
}
