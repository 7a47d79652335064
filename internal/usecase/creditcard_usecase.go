package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mariobrusarosco/better-call-buffet/internal/domain"
)

// CreditCardUseCase handles credit card lifecycle. A card is always linked
// to one of the owner's accounts, the account its payments draw from.
type CreditCardUseCase struct {
	cardRepo    CreditCardRepository
	accountRepo AccountRepository
	idGen       IDGenerator
}

// NewCreditCardUseCase creates a new CreditCardUseCase.
func NewCreditCardUseCase(
	cardRepo CreditCardRepository,
	accountRepo AccountRepository,
	idGen IDGenerator,
) *CreditCardUseCase {
	return &CreditCardUseCase{
		cardRepo:    cardRepo,
		accountRepo: accountRepo,
		idGen:       idGen,
	}
}

// CreateCreditCardInput represents input for creating a credit card.
type CreateCreditCardInput struct {
	OwnerID     string
	AccountID   string
	Name        string
	CreditLimit decimal.Decimal
}

// CreateCreditCard creates a card linked to an existing account owned by
// the same owner.
func (uc *CreditCardUseCase) CreateCreditCard(ctx context.Context, input CreateCreditCardInput) (*domain.CreditCard, error) {
	if err := domain.ValidateName(input.Name); err != nil {
		return nil, err
	}

	if input.CreditLimit.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if !account.OwnedBy(input.OwnerID) {
		return nil, domain.ErrAccountNotFound
	}

	if !account.Active {
		return nil, domain.ErrAccountInactive
	}

	now := time.Now().UTC()

	card := &domain.CreditCard{
		ID:          uc.idGen.Generate(),
		OwnerID:     input.OwnerID,
		AccountID:   input.AccountID,
		Name:        input.Name,
		CreditLimit: input.CreditLimit,
		Outstanding: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.cardRepo.Create(ctx, card); err != nil {
		return nil, err
	}

	return card, nil
}

// GetCreditCard retrieves a card by ID, scoped to its owner.
func (uc *CreditCardUseCase) GetCreditCard(ctx context.Context, ownerID, id string) (*domain.CreditCard, error) {
	card, err := uc.cardRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !card.OwnedBy(ownerID) {
		return nil, domain.ErrCreditCardNotFound
	}

	return card, nil
}

// ListCreditCards lists the owner's cards.
func (uc *CreditCardUseCase) ListCreditCards(ctx context.Context, ownerID string, limit, offset int) ([]*domain.CreditCard, error) {
	return uc.cardRepo.ListByOwner(ctx, ownerID, clampLimit(limit), offset)
}
