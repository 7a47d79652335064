package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mariobrusarosco/better-call-buffet/internal/domain"
	"github.com/mariobrusarosco/better-call-buffet/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name           string          `json:"name"`
	Kind           string          `json:"kind"`
	Currency       string          `json:"currency"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput(ownerID string) usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		OwnerID:        ownerID,
		Name:           r.Name,
		Kind:           domain.AccountKind(r.Kind),
		Currency:       r.Currency,
		OpeningBalance: r.OpeningBalance,
	}
}

// CreateTransactionRequest represents a request to record a ledger entry.
// Exactly one of account_id or credit_card_id must be set; transfers go
// through the transfer endpoint.
type CreateTransactionRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	MovementType string          `json:"movement_type"`
	AccountID    *string         `json:"account_id,omitempty"`
	CreditCardID *string         `json:"credit_card_id,omitempty"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Date         time.Time       `json:"date"`
	IsPaid       bool            `json:"is_paid"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransactionRequest) ToUseCaseInput(ownerID string) usecase.CreateTransactionInput {
	return usecase.CreateTransactionInput{
		OwnerID:      ownerID,
		Amount:       r.Amount,
		MovementType: domain.MovementType(r.MovementType),
		AccountID:    r.AccountID,
		CreditCardID: r.CreditCardID,
		Description:  r.Description,
		Category:     r.Category,
		Date:         r.Date,
		IsPaid:       r.IsPaid,
	}
}

// CreateBulkTransactionsRequest represents a request to record multiple
// entries. With skip_errors the rows are applied independently and per-row
// outcomes reported; without it the whole batch is atomic.
type CreateBulkTransactionsRequest struct {
	Transactions []CreateTransactionRequest `json:"transactions"`
	SkipErrors   bool                       `json:"skip_errors"`
}

// ToUseCaseInputs converts to use case inputs.
func (r *CreateBulkTransactionsRequest) ToUseCaseInputs(ownerID string) []usecase.CreateTransactionInput {
	inputs := make([]usecase.CreateTransactionInput, len(r.Transactions))
	for i, t := range r.Transactions {
		inputs[i] = t.ToUseCaseInput(ownerID)
	}
	return inputs
}

// CreateTransferRequest represents a request to move funds between two
// accounts.
type CreateTransferRequest struct {
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Date          time.Time       `json:"date"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput(ownerID string) usecase.CreateTransferInput {
	return usecase.CreateTransferInput{
		OwnerID:       ownerID,
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		Amount:        r.Amount,
		Description:   r.Description,
		Category:      r.Category,
		Date:          r.Date,
	}
}

// CreateCreditCardRequest represents a request to register a credit card.
type CreateCreditCardRequest struct {
	AccountID   string          `json:"account_id"`
	Name        string          `json:"name"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateCreditCardRequest) ToUseCaseInput(ownerID string) usecase.CreateCreditCardInput {
	return usecase.CreateCreditCardInput{
		OwnerID:     ownerID,
		AccountID:   r.AccountID,
		Name:        r.Name,
		CreditLimit: r.CreditLimit,
	}
}

// PayCreditCardRequest represents a request to pay down a card from its
// linked account.
type PayCreditCardRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
}

// ToUseCaseInput converts to use case input.
func (r *PayCreditCardRequest) ToUseCaseInput(ownerID, cardID string) usecase.PayCreditCardInput {
	return usecase.PayCreditCardInput{
		OwnerID:      ownerID,
		CreditCardID: cardID,
		Amount:       r.Amount,
		Description:  r.Description,
		Date:         r.Date,
	}
}
