package domain

import "github.com/shopspring/decimal"

// Impact maps a transaction's (target kind, movement type, amount) to the
// signed delta it applies to the target's balance domain:
//
//	account     income   +amount
//	account     expense  -amount
//	credit card expense  +amount (debt grows on purchase)
//	credit card income   -amount (debt shrinks on payment)
//
// Transfers are two-sided; use TransferImpacts for the pair. Impact is a
// pure function: deterministic, no I/O, safe to call during ledger replay.
func Impact(target TargetKind, movement MovementType, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidAmount
	}

	switch target {
	case TargetAccount:
		switch movement {
		case MovementIncome:
			return amount, nil
		case MovementExpense:
			return amount.Neg(), nil
		}
	case TargetCreditCard:
		switch movement {
		case MovementExpense:
			return amount, nil
		case MovementIncome:
			return amount.Neg(), nil
		}
	}

	return decimal.Zero, ErrInvalidTransactionShape
}

// TransferImpacts returns the signed deltas for the two legs of a transfer:
// the source account loses amount, the destination gains it.
func TransferImpacts(amount decimal.Decimal) (from, to decimal.Decimal, err error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero, ErrInvalidAmount
	}
	return amount.Neg(), amount, nil
}
