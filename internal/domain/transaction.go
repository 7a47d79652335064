package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType encodes the direction of a financial movement. Amounts are
// always positive; direction lives here, never in the sign of Amount.
type MovementType string

const (
	MovementIncome   MovementType = "income"
	MovementExpense  MovementType = "expense"
	MovementTransfer MovementType = "transfer"
)

// Valid reports whether m is a known movement type.
func (m MovementType) Valid() bool {
	switch m {
	case MovementIncome, MovementExpense, MovementTransfer:
		return true
	}
	return false
}

// TargetKind identifies which balance domain a transaction affects.
type TargetKind string

const (
	TargetAccount    TargetKind = "account"
	TargetCreditCard TargetKind = "credit_card"
	TargetTransfer   TargetKind = "transfer"
)

// Transaction is a ledger entry, the system's source of truth. A transfer
// is persisted as two linked rows, one per leg, each carrying its own
// signed BalanceImpact and a RelatedTransactionID pointing at its pair.
// Credit-card payments use the same pairing.
type Transaction struct {
	ID                   string
	OwnerID              string
	Amount               decimal.Decimal
	MovementType         MovementType
	AccountID            *string
	CreditCardID         *string
	FromAccountID        *string
	ToAccountID          *string
	Description          string
	Category             string
	IsPaid               bool
	Date                 time.Time
	BalanceImpact        decimal.Decimal
	RelatedTransactionID *string
	Sequence             int64
	CreatedAt            time.Time
}

// Target derives the target kind from which reference fields are set.
// Returns ErrInvalidTransactionShape unless exactly one of account,
// credit card, or (from, to) pair is present.
func (t *Transaction) Target() (TargetKind, error) {
	return ResolveTarget(t.AccountID, t.CreditCardID, t.FromAccountID, t.ToAccountID)
}

// Validate checks the invariants every persisted ledger entry must hold.
func (t *Transaction) Validate() error {
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !t.MovementType.Valid() {
		return ErrInvalidTransactionShape
	}

	target, err := t.Target()
	if err != nil {
		return err
	}

	// Transfer movement and transfer target imply each other.
	if (target == TargetTransfer) != (t.MovementType == MovementTransfer) {
		return ErrInvalidTransactionShape
	}

	return nil
}

// ResolveTarget enforces the XOR target constraint on a transaction shape:
// exactly one of {account, credit card, (from, to) pair} may be set.
// A transfer leg persisted with AccountID plus the pair provenance fields
// still resolves as a transfer.
func ResolveTarget(accountID, creditCardID, fromAccountID, toAccountID *string) (TargetKind, error) {
	hasPair := fromAccountID != nil || toAccountID != nil

	if hasPair {
		if creditCardID != nil {
			return "", ErrInvalidTransactionShape
		}
		if fromAccountID == nil || toAccountID == nil {
			return "", ErrInvalidTransactionShape
		}
		if *fromAccountID == *toAccountID {
			return "", ErrSelfTransfer
		}
		return TargetTransfer, nil
	}

	switch {
	case accountID != nil && creditCardID == nil:
		return TargetAccount, nil
	case creditCardID != nil && accountID == nil:
		return TargetCreditCard, nil
	default:
		return "", ErrInvalidTransactionShape
	}
}
