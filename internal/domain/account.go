package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind classifies what sort of holding an account represents.
type AccountKind string

const (
	AccountChecking   AccountKind = "checking"
	AccountSavings    AccountKind = "savings"
	AccountCredit     AccountKind = "credit"
	AccountCash       AccountKind = "cash"
	AccountInvestment AccountKind = "investment"
	AccountOther      AccountKind = "other"
)

// Valid reports whether k is a known account kind.
func (k AccountKind) Valid() bool {
	switch k {
	case AccountChecking, AccountSavings, AccountCredit,
		AccountCash, AccountInvestment, AccountOther:
		return true
	}
	return false
}

// Account is a holding of funds. Balance is a cached materialized view of
// the ledger: it must equal the signed sum of all ledger entries targeting
// this account, and is only ever written by the balance mutator.
type Account struct {
	ID                string
	OwnerID           string
	Name              string
	Kind              AccountKind
	Currency          string
	Balance           decimal.Decimal
	Active            bool
	LastTransactionID *string
	BalanceUpdatedAt  time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OwnedBy reports whether the account belongs to ownerID.
func (a *Account) OwnedBy(ownerID string) bool {
	return a.OwnerID == ownerID
}

// ValidateWithdrawal checks whether the account balance may be reduced by
// amount under the given negative-balance policy.
func (a *Account) ValidateWithdrawal(amount decimal.Decimal, allowNegative bool) error {
	if !allowNegative && a.Balance.Sub(amount).IsNegative() {
		return ErrInsufficientFunds
	}
	return nil
}
