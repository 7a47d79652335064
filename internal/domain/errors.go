package domain

import "errors"

var (
	// Transaction errors
	ErrInvalidAmount           = errors.New("amount must be positive")
	ErrInvalidTransactionShape = errors.New("transaction must target exactly one of account, credit card, or transfer pair")
	ErrSelfTransfer            = errors.New("cannot transfer to same account")
	ErrTransactionTooOld       = errors.New("transaction predates retention window")
	ErrTransactionNotFound     = errors.New("transaction not found")

	// Balance errors
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrDiscrepancyDetected = errors.New("cached balance does not match ledger")
	ErrOwnershipViolation  = errors.New("actor does not own target entity")
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountInactive     = errors.New("account is deactivated")
	ErrCreditCardNotFound  = errors.New("credit card not found")
	ErrCreditLimitExceeded = errors.New("purchase exceeds available credit")
	ErrInvalidDateRange    = errors.New("invalid date range")
)

// Kind returns a stable machine-readable kind string for a domain error.
// The HTTP layer maps kinds to status codes; callers can rely on these
// strings staying stable across releases.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrAmountTooLarge):
		return "amount_too_large"
	case errors.Is(err, ErrInvalidName):
		return "invalid_name"
	case errors.Is(err, ErrInvalidCurrency):
		return "invalid_currency"
	case errors.Is(err, ErrInvalidTransactionShape), errors.Is(err, ErrSelfTransfer):
		return "invalid_transaction_shape"
	case errors.Is(err, ErrTransactionTooOld):
		return "transaction_too_old"
	case errors.Is(err, ErrTransactionNotFound):
		return "transaction_not_found"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrDiscrepancyDetected):
		return "discrepancy_detected"
	case errors.Is(err, ErrOwnershipViolation):
		return "ownership_violation"
	case errors.Is(err, ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, ErrAccountInactive):
		return "account_inactive"
	case errors.Is(err, ErrCreditCardNotFound):
		return "credit_card_not_found"
	case errors.Is(err, ErrCreditLimitExceeded):
		return "credit_limit_exceeded"
	case errors.Is(err, ErrInvalidDateRange):
		return "invalid_date_range"
	default:
		return "internal"
	}
}
