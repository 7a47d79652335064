package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mariobrusarosco/better-call-buffet/internal/domain"
)

// TransferUseCase coordinates linked ledger pairs: account-to-account
// transfers and credit-card payments. Both legs of a pair are written in
// one database transaction, each referencing the other.
type TransferUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	cardRepo    CreditCardRepository
	entryRepo   TransactionRepository
	pointRepo   BalancePointRepository
	jobRepo     RecomputeJobRepository
	idGen       IDGenerator
	cfg         MutatorConfig
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	cardRepo CreditCardRepository,
	entryRepo TransactionRepository,
	pointRepo BalancePointRepository,
	jobRepo RecomputeJobRepository,
	idGen IDGenerator,
	cfg MutatorConfig,
) *TransferUseCase {
	if cfg.RetentionWindow == 0 {
		cfg.RetentionWindow = DefaultRetentionWindow
	}

	return &TransferUseCase{
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

// CreateTransferInput represents input for an account-to-account transfer.
type CreateTransferInput struct {
	OwnerID       string
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Description   string
	Category      string
	Date          time.Time
}

// TransferResult holds the two linked legs of a completed pair.
type TransferResult struct {
	FromEntry *domain.Transaction
	ToEntry   *domain.Transaction
}

// CreateTransfer moves funds between two accounts as one atomic unit:
// a debit leg on the source, a credit leg on the destination, each carrying
// a reference to its pair.
func (uc *TransferUseCase) CreateTransfer(ctx context.Context, input CreateTransferInput) (*TransferResult, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if input.FromAccountID == input.ToAccountID {
		return nil, domain.ErrSelfTransfer
	}

	if err := uc.checkRetention(input.Date); err != nil {
		return nil, err
	}

	fromImpact, toImpact, err := domain.TransferImpacts(input.Amount)
	if err != nil {
		return nil, err
	}

	ids := []string{input.FromAccountID, input.ToAccountID}
	sort.Strings(ids)

	var result *TransferResult
	err = retryTransient(ctx, uc.cfg.Retrier, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
		if err != nil {
			return err
		}

		if len(accounts) != len(ids) {
			return domain.ErrAccountNotFound
		}

		var from, to *domain.Account
		for _, a := range accounts {
			switch a.ID {
			case input.FromAccountID:
				from = a
			case input.ToAccountID:
				to = a
			}
		}

		for _, a := range []*domain.Account{from, to} {
			if !a.OwnedBy(input.OwnerID) {
				return domain.ErrOwnershipViolation
			}
			if !a.Active {
				return domain.ErrAccountInactive
			}
		}

		if err := from.ValidateWithdrawal(input.Amount, uc.cfg.AllowNegativeBalance); err != nil {
			return err
		}

		now := time.Now().UTC()
		day := domain.Day(input.Date)

		// IDs are generated up front so each leg can reference its pair.
		fromID, toID := uc.idGen.Generate(), uc.idGen.Generate()

		fromEntry := &domain.Transaction{
			ID:                   fromID,
			OwnerID:              input.OwnerID,
			Amount:               input.Amount,
			MovementType:         domain.MovementTransfer,
			AccountID:            &input.FromAccountID,
			FromAccountID:        &input.FromAccountID,
			ToAccountID:          &input.ToAccountID,
			Description:          input.Description,
			Category:             input.Category,
			IsPaid:               true,
			Date:                 day,
			BalanceImpact:        fromImpact,
			RelatedTransactionID: &toID,
			CreatedAt:            now,
		}

		toEntry := &domain.Transaction{
			ID:                   toID,
			OwnerID:              input.OwnerID,
			Amount:               input.Amount,
			MovementType:         domain.MovementTransfer,
			AccountID:            &input.ToAccountID,
			FromAccountID:        &input.FromAccountID,
			ToAccountID:          &input.ToAccountID,
			Description:          input.Description,
			Category:             input.Category,
			IsPaid:               true,
			Date:                 day,
			BalanceImpact:        toImpact,
			RelatedTransactionID: &fromID,
			CreatedAt:            now,
		}

		for _, entry := range []*domain.Transaction{fromEntry, toEntry} {
			if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
				return err
			}
		}

		if err := uc.accountRepo.UpdateBalance(ctx, tx, from.ID, from.Balance.Add(fromImpact), fromID, now); err != nil {
			return err
		}

		if err := uc.accountRepo.UpdateBalance(ctx, tx, to.ID, to.Balance.Add(toImpact), toID, now); err != nil {
			return err
		}

		for _, accountID := range []string{from.ID, to.ID} {
			if err := uc.invalidatePoints(ctx, tx, accountID, day); err != nil {
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		result = &TransferResult{FromEntry: fromEntry, ToEntry: toEntry}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// PayCreditCardInput represents input for paying down a card from its
// linked account.
type PayCreditCardInput struct {
	OwnerID      string
	CreditCardID string
	Amount       decimal.Decimal
	Description  string
	Date         time.Time
}

// PayCreditCard writes the linked payment pair: the card's outstanding debt
// decreases and the linked account's cash balance decreases by the same
// amount. This is the only operation that moves funds between the two
// balance domains.
func (uc *TransferUseCase) PayCreditCard(ctx context.Context, input PayCreditCardInput) (*TransferResult, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := uc.checkRetention(input.Date); err != nil {
		return nil, err
	}

	var result *TransferResult
	err := retryTransient(ctx, uc.cfg.Retrier, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		card, err := uc.cardRepo.GetByIDForUpdate(ctx, tx, input.CreditCardID)
		if err != nil {
			return err
		}

		if !card.OwnedBy(input.OwnerID) {
			return domain.ErrOwnershipViolation
		}

		account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, card.AccountID)
		if err != nil {
			return err
		}

		if !account.Active {
			return domain.ErrAccountInactive
		}

		if err := account.ValidateWithdrawal(input.Amount, uc.cfg.AllowNegativeBalance); err != nil {
			return err
		}

		cardImpact, err := domain.Impact(domain.TargetCreditCard, domain.MovementIncome, input.Amount)
		if err != nil {
			return err
		}

		accountImpact, err := domain.Impact(domain.TargetAccount, domain.MovementExpense, input.Amount)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		day := domain.Day(input.Date)

		description := input.Description
		if description == "" {
			description = "Credit card payment: " + card.Name
		}

		cardID, accountEntryID := uc.idGen.Generate(), uc.idGen.Generate()

		cardEntry := &domain.Transaction{
			ID:                   cardID,
			OwnerID:              input.OwnerID,
			Amount:               input.Amount,
			MovementType:         domain.MovementIncome,
			CreditCardID:         &input.CreditCardID,
			Description:          description,
			Category:             "credit card payment",
			IsPaid:               true,
			Date:                 day,
			BalanceImpact:        cardImpact,
			RelatedTransactionID: &accountEntryID,
			CreatedAt:            now,
		}

		accountEntry := &domain.Transaction{
			ID:                   accountEntryID,
			OwnerID:              input.OwnerID,
			Amount:               input.Amount,
			MovementType:         domain.MovementExpense,
			AccountID:            &card.AccountID,
			Description:          description,
			Category:             "credit card payment",
			IsPaid:               true,
			Date:                 day,
			BalanceImpact:        accountImpact,
			RelatedTransactionID: &cardID,
			CreatedAt:            now,
		}

		for _, entry := range []*domain.Transaction{cardEntry, accountEntry} {
			if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
				return err
			}
		}

		if err := uc.cardRepo.UpdateOutstanding(ctx, tx, card.ID, card.Outstanding.Add(cardImpact), cardID, now); err != nil {
			return err
		}

		if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, account.Balance.Add(accountImpact), accountEntryID, now); err != nil {
			return err
		}

		if err := uc.invalidatePoints(ctx, tx, account.ID, day); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		result = &TransferResult{FromEntry: cardEntry, ToEntry: accountEntry}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetPair resolves the two legs of a linked pair by either leg's ID.
func (uc *TransferUseCase) GetPair(ctx context.Context, ownerID, entryID string) (*TransferResult, error) {
	entry, err := uc.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	if entry.OwnerID != ownerID {
		return nil, domain.ErrTransactionNotFound
	}

	if entry.RelatedTransactionID == nil {
		return nil, domain.ErrTransactionNotFound
	}

	related, err := uc.entryRepo.GetByID(ctx, *entry.RelatedTransactionID)
	if err != nil {
		return nil, err
	}

	if entry.BalanceImpact.IsNegative() {
		return &TransferResult{FromEntry: entry, ToEntry: related}, nil
	}

	return &TransferResult{FromEntry: related, ToEntry: entry}, nil
}

func (uc *TransferUseCase) checkRetention(date time.Time) error {
	cutoff := domain.Day(time.Now().UTC().Add(-uc.cfg.RetentionWindow))
	if domain.Day(date).Before(cutoff) {
		return domain.ErrTransactionTooOld
	}
	return nil
}

// invalidatePoints marks snapshots stale and registers a recompute job when
// an entry lands at or before the account's latest snapshot day.
func (uc *TransferUseCase) invalidatePoints(ctx context.Context, tx Transaction, accountID string, day time.Time) error {
	latest, ok, err := uc.pointRepo.GetLatestDay(ctx, accountID)
	if err != nil {
		return err
	}
	if !ok || day.After(latest) {
		return nil
	}

	if err := uc.pointRepo.MarkStatusFrom(ctx, tx, accountID, day, domain.PointRecomputing); err != nil {
		return err
	}

	_, err = uc.jobRepo.Upsert(ctx, tx, accountID, day)
	return err
}
