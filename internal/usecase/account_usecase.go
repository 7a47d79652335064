package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mariobrusarosco/better-call-buffet/internal/domain"
)

// AccountUseCase handles account lifecycle. Opening balances are
// materialized as real ledger entries through the balance mutator, so the
// invariant cached == sum(impacts) holds exactly from day one.
type AccountUseCase struct {
	accountRepo AccountRepository
	entryUC     *TransactionUseCase
	auditRepo   AuditRepository
	idGen       IDGenerator
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	accountRepo AccountRepository,
	entryUC *TransactionUseCase,
	auditRepo AuditRepository,
	idGen IDGenerator,
) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		entryUC:     entryUC,
		auditRepo:   auditRepo,
		idGen:       idGen,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	OwnerID        string
	Name           string
	Kind           domain.AccountKind
	Currency       string
	OpeningBalance decimal.Decimal
}

// CreateAccount creates an account and, when an opening balance is given,
// records it as the account's first ledger entry.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateName(input.Name); err != nil {
		return nil, err
	}

	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	if !input.Kind.Valid() {
		return nil, domain.ErrInvalidTransactionShape
	}

	if input.OpeningBalance.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:               uc.idGen.Generate(),
		OwnerID:          input.OwnerID,
		Name:             input.Name,
		Kind:             input.Kind,
		Currency:         input.Currency,
		Balance:          decimal.Zero,
		Active:           true,
		BalanceUpdatedAt: now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	if input.OpeningBalance.IsPositive() {
		entry, err := uc.entryUC.Create(ctx, CreateTransactionInput{
			OwnerID:      input.OwnerID,
			Amount:       input.OpeningBalance,
			MovementType: domain.MovementIncome,
			AccountID:    &account.ID,
			Description:  "Opening balance",
			Category:     "opening balance",
			Date:         now,
			IsPaid:       true,
		})
		if err != nil {
			return nil, err
		}

		account.Balance = input.OpeningBalance
		account.LastTransactionID = &entry.ID
	}

	return account, nil
}

// GetAccount retrieves an account by ID, scoped to its owner.
func (uc *AccountUseCase) GetAccount(ctx context.Context, ownerID, id string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !account.OwnedBy(ownerID) {
		return nil, domain.ErrAccountNotFound
	}

	return account, nil
}

// ListAccounts lists the owner's accounts.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Account, error) {
	return uc.accountRepo.ListByOwner(ctx, ownerID, clampLimit(limit), offset)
}

// DeactivateAccount soft-deletes an account. Its ledger entries remain and
// keep contributing to historical timelines; new entries are rejected.
func (uc *AccountUseCase) DeactivateAccount(ctx context.Context, ownerID, id string) error {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !account.OwnedBy(ownerID) {
		return domain.ErrAccountNotFound
	}

	if !account.Active {
		return nil
	}

	now := time.Now().UTC()

	if err := uc.accountRepo.SetActive(ctx, id, false, now); err != nil {
		return err
	}

	before, err := domain.MarshalState(map[string]bool{"active": true})
	if err != nil {
		return err
	}
	after, err := domain.MarshalState(map[string]bool{"active": false})
	if err != nil {
		return err
	}

	return uc.auditRepo.Create(ctx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		OwnerID:      ownerID,
		Action:       domain.AuditActionAccountDeactivate,
		ResourceType: "account",
		ResourceID:   id,
		BeforeState:  before,
		AfterState:   after,
		Status:       domain.AuditStatusSuccess,
		CreatedAt:    now,
	})
}
