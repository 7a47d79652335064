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

const creditCardColumns = `id, owner_id, account_id, name, credit_limit,
	outstanding, last_transaction_id, created_at, updated_at`

// CreditCardRepository implements usecase.CreditCardRepository.
type CreditCardRepository struct {
	pool *pgxpool.Pool
}

// NewCreditCardRepository creates a new CreditCardRepository.
func NewCreditCardRepository(pool *pgxpool.Pool) *CreditCardRepository {
	return &CreditCardRepository{pool: pool}
}

// Create creates a new credit card.
func (r *CreditCardRepository) Create(ctx context.Context, card *domain.CreditCard) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO credit_cards (`+creditCardColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		card.ID,
		card.OwnerID,
		card.AccountID,
		card.Name,
		decimalToNumeric(card.CreditLimit),
		decimalToNumeric(card.Outstanding),
		card.LastTransactionID,
		card.CreatedAt,
		card.UpdatedAt,
	)
	return err
}

// GetByID retrieves a credit card by ID.
func (r *CreditCardRepository) GetByID(ctx context.Context, id string) (*domain.CreditCard, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+creditCardColumns+` FROM credit_cards WHERE id = $1`, id)
	return scanCreditCard(row)
}

// GetByName retrieves a credit card by its owner-scoped name.
func (r *CreditCardRepository) GetByName(ctx context.Context, ownerID, name string) (*domain.CreditCard, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+creditCardColumns+` FROM credit_cards WHERE owner_id = $1 AND name = $2`,
		ownerID, name)
	return scanCreditCard(row)
}

// GetByIDForUpdate retrieves a credit card by ID with a FOR UPDATE lock.
func (r *CreditCardRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.CreditCard, error) {
	row := txQuerier(tx).QueryRow(ctx, `
		SELECT `+creditCardColumns+` FROM credit_cards WHERE id = $1 FOR UPDATE`, id)
	return scanCreditCard(row)
}

// UpdateOutstanding writes the cached debt and the entry that produced it.
func (r *CreditCardRepository) UpdateOutstanding(ctx context.Context, tx usecase.Transaction, id string, outstanding decimal.Decimal, lastTransactionID string, updatedAt time.Time) error {
	_, err := txQuerier(tx).Exec(ctx, `
		UPDATE credit_cards
		SET outstanding = $2,
		    last_transaction_id = NULLIF($3, ''),
		    updated_at = $4
		WHERE id = $1`,
		id, decimalToNumeric(outstanding), lastTransactionID, updatedAt)
	return err
}

// ListByOwner lists the owner's credit cards.
func (r *CreditCardRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.CreditCard, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+creditCardColumns+` FROM credit_cards
		WHERE owner_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3`, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []*domain.CreditCard
	for rows.Next() {
		card, err := scanCreditCardRow(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}

	return cards, rows.Err()
}

func scanCreditCard(row pgx.Row) (*domain.CreditCard, error) {
	card, err := scanCreditCardRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCreditCardNotFound
		}
		return nil, err
	}
	return card, nil
}

func scanCreditCardRow(row pgx.Row) (*domain.CreditCard, error) {
	var (
		card        domain.CreditCard
		creditLimit pgtype.Numeric
		outstanding pgtype.Numeric
	)

	err := row.Scan(
		&card.ID,
		&card.OwnerID,
		&card.AccountID,
		&card.Name,
		&creditLimit,
		&outstanding,
		&card.LastTransactionID,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	card.CreditLimit = numericToDecimal(creditLimit)
	card.Outstanding = numericToDecimal(outstanding)

	return &card, nil
}
