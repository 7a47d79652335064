package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditCard is a revolving-debt facility linked to one owning account for
// payment purposes. Outstanding is its own balance domain (debt, grows on
// purchase, shrinks on payment) and is independent of the linked account's
// cash balance.
type CreditCard struct {
	ID                string
	OwnerID           string
	AccountID         string
	Name              string
	CreditLimit       decimal.Decimal
	Outstanding       decimal.Decimal
	LastTransactionID *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OwnedBy reports whether the card belongs to ownerID.
func (c *CreditCard) OwnedBy(ownerID string) bool {
	return c.OwnerID == ownerID
}

// AvailableCredit returns limit minus outstanding debt.
func (c *CreditCard) AvailableCredit() decimal.Decimal {
	return c.CreditLimit.Sub(c.Outstanding)
}

// ValidatePurchase checks whether a purchase of amount fits within the
// card's credit limit.
func (c *CreditCard) ValidatePurchase(amount decimal.Decimal) error {
	if c.Outstanding.Add(amount).GreaterThan(c.CreditLimit) {
		return ErrCreditLimitExceeded
	}
	return nil
}
