package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mariobrusarosco/better-call-buffet/internal/domain"
	"github.com/mariobrusarosco/better-call-buffet/internal/usecase"
)

const transactionColumns = `id, owner_id, amount, movement_type, account_id,
	credit_card_id, from_account_id, to_account_id, description, category,
	is_paid, occurred_on, balance_impact, related_transaction_id, sequence,
	created_at`

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create inserts the ledger entry. The sequence column is assigned by the
// database and read back; it breaks ties between same-day entries.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Transaction) error {
	return txQuerier(tx).QueryRow(ctx, `
		INSERT INTO transactions (
			id, owner_id, amount, movement_type, account_id, credit_card_id,
			from_account_id, to_account_id, description, category, is_paid,
			occurred_on, balance_impact, related_transaction_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING sequence`,
		entry.ID,
		entry.OwnerID,
		decimalToNumeric(entry.Amount),
		string(entry.MovementType),
		entry.AccountID,
		entry.CreditCardID,
		entry.FromAccountID,
		entry.ToAccountID,
		entry.Description,
		entry.Category,
		entry.IsPaid,
		entry.Date,
		decimalToNumeric(entry.BalanceImpact),
		entry.RelatedTransactionID,
		entry.CreatedAt,
	).Scan(&entry.Sequence)
}

// GetByID retrieves a ledger entry by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)

	entry, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return entry, nil
}

// ListByAccount lists an account's entries, most recent first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	return r.list(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE account_id = $1
		ORDER BY occurred_on DESC, sequence DESC
		LIMIT $2 OFFSET $3`, accountID, limit, offset)
}

// ListByOwner lists all the owner's entries in insertion order.
func (r *TransactionRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Transaction, error) {
	return r.list(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE owner_id = $1
		ORDER BY sequence
		LIMIT $2 OFFSET $3`, ownerID, limit, offset)
}

// ListByAccountBetween returns the account's entries for [start, end] in
// replay order: (occurred_on, sequence) ascending.
func (r *TransactionRepository) ListByAccountBetween(ctx context.Context, accountID string, start, end time.Time) ([]*domain.Transaction, error) {
	return r.list(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE account_id = $1 AND occurred_on >= $2 AND occurred_on <= $3
		ORDER BY occurred_on, sequence`, accountID, start, end)
}

// SumImpactsByAccount totals every signed impact for the account from
// scratch, bypassing all cached state.
func (r *TransactionRepository) SumImpactsByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	return r.sum(ctx, `
		SELECT COALESCE(SUM(balance_impact), 0) FROM transactions
		WHERE account_id = $1`, accountID)
}

// SumImpactsByAccountThrough totals impacts dated on or before through.
func (r *TransactionRepository) SumImpactsByAccountThrough(ctx context.Context, accountID string, through time.Time) (decimal.Decimal, error) {
	return r.sum(ctx, `
		SELECT COALESCE(SUM(balance_impact), 0) FROM transactions
		WHERE account_id = $1 AND occurred_on <= $2`, accountID, through)
}

// SumImpactsByCard totals every signed debt impact for the card.
func (r *TransactionRepository) SumImpactsByCard(ctx context.Context, cardID string) (decimal.Decimal, error) {
	return r.sum(ctx, `
		SELECT COALESCE(SUM(balance_impact), 0) FROM transactions
		WHERE credit_card_id = $1`, cardID)
}

// Exists reports whether an entry with the natural key already exists.
// Used by CSV import to keep re-imports idempotent.
func (r *TransactionRepository) Exists(ctx context.Context, key usecase.TransactionKey) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE owner_id = $1
			  AND occurred_on = $2
			  AND amount = $3
			  AND movement_type = $4
			  AND description = $5
		)`,
		key.OwnerID, key.Date, decimalToNumeric(key.Amount),
		string(key.MovementType), key.Description,
	).Scan(&exists)
	return exists, err
}

func (r *TransactionRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.Transaction
	for rows.Next() {
		entry, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func (r *TransactionRepository) sum(ctx context.Context, query string, args ...any) (decimal.Decimal, error) {
	var total pgtype.Numeric
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return numericToDecimal(total), nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		entry    domain.Transaction
		amount   pgtype.Numeric
		movement string
		impact   pgtype.Numeric
	)

	err := row.Scan(
		&entry.ID,
		&entry.OwnerID,
		&amount,
		&movement,
		&entry.AccountID,
		&entry.CreditCardID,
		&entry.FromAccountID,
		&entry.ToAccountID,
		&entry.Description,
		&entry.Category,
		&entry.IsPaid,
		&entry.Date,
		&impact,
		&entry.RelatedTransactionID,
		&entry.Sequence,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Amount = numericToDecimal(amount)
	entry.MovementType = domain.MovementType(movement)
	entry.BalanceImpact = numericToDecimal(impact)
	entry.Date = entry.Date.UTC()

	return &entry, nil
}
