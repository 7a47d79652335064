package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mariobrusarosco/better-call-buffet/internal/domain"
	"github.com/mariobrusarosco/better-call-buffet/internal/usecase"
)

// BalancePointRepository implements usecase.BalancePointRepository.
type BalancePointRepository struct {
	pool *pgxpool.Pool
}

// NewBalancePointRepository creates a new BalancePointRepository.
func NewBalancePointRepository(pool *pgxpool.Pool) *BalancePointRepository {
	return &BalancePointRepository{pool: pool}
}

// UpsertRange writes the points, overwriting any existing snapshot for the
// same (account, day).
func (r *BalancePointRepository) UpsertRange(ctx context.Context, tx usecase.Transaction, points []domain.BalancePoint) error {
	q := txQuerier(tx)
	for _, p := range points {
		_, err := q.Exec(ctx, `
			INSERT INTO balance_points (account_id, day, balance, has_transactions, status, updated_at)
			VALUES ($1, $2, $3, $4, $5, now())
			ON CONFLICT (account_id, day) DO UPDATE
			SET balance = EXCLUDED.balance,
			    has_transactions = EXCLUDED.has_transactions,
			    status = EXCLUDED.status,
			    updated_at = now()`,
			p.AccountID, p.Day, decimalToNumeric(p.Balance), p.HasTransactions, string(p.Status))
		if err != nil {
			return err
		}
	}
	return nil
}

// GetRange returns the stored points for [start, end] in day order.
func (r *BalancePointRepository) GetRange(ctx context.Context, accountID string, start, end time.Time) ([]domain.BalancePoint, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT account_id, day, balance, has_transactions, status, updated_at
		FROM balance_points
		WHERE account_id = $1 AND day >= $2 AND day <= $3
		ORDER BY day`, accountID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []domain.BalancePoint
	for rows.Next() {
		point, err := scanBalancePoint(rows)
		if err != nil {
			return nil, err
		}
		points = append(points, point)
	}

	return points, rows.Err()
}

// GetLatestBefore returns the most recent current-status snapshot strictly
// before day, or nil when none exists.
func (r *BalancePointRepository) GetLatestBefore(ctx context.Context, accountID string, day time.Time) (*domain.BalancePoint, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT account_id, day, balance, has_transactions, status, updated_at
		FROM balance_points
		WHERE account_id = $1 AND day < $2 AND status = 'current'
		ORDER BY day DESC
		LIMIT 1`, accountID, day)

	point, err := scanBalancePoint(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &point, nil
}

// GetLatestDay returns the most recent snapshot day regardless of status,
// or false when the account has no points yet.
func (r *BalancePointRepository) GetLatestDay(ctx context.Context, accountID string) (time.Time, bool, error) {
	var day *time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT MAX(day) FROM balance_points WHERE account_id = $1`, accountID).Scan(&day)
	if err != nil {
		return time.Time{}, false, err
	}
	if day == nil {
		return time.Time{}, false, nil
	}
	return day.UTC(), true, nil
}

// MarkStatusFrom sets the status of every snapshot dated on or after from.
func (r *BalancePointRepository) MarkStatusFrom(ctx context.Context, tx usecase.Transaction, accountID string, from time.Time, status domain.PointStatus) error {
	_, err := txQuerier(tx).Exec(ctx, `
		UPDATE balance_points
		SET status = $3, updated_at = now()
		WHERE account_id = $1 AND day >= $2`,
		accountID, from, string(status))
	return err
}

// LockAccount takes a per-account advisory lock scoped to the transaction.
// Recomputation and reconciliation fixes both take it, so they serialize
// against each other without blocking ordinary reads.
func (r *BalancePointRepository) LockAccount(ctx context.Context, tx usecase.Transaction, accountID string) error {
	_, err := txQuerier(tx).Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, accountID)
	return err
}

func scanBalancePoint(row pgx.Row) (domain.BalancePoint, error) {
	var (
		point   domain.BalancePoint
		balance pgtype.Numeric
		status  string
	)

	err := row.Scan(
		&point.AccountID,
		&point.Day,
		&balance,
		&point.HasTransactions,
		&status,
		&point.UpdatedAt,
	)
	if err != nil {
		return domain.BalancePoint{}, err
	}

	point.Balance = numericToDecimal(balance)
	point.Status = domain.PointStatus(status)
	point.Day = point.Day.UTC()

	return point, nil
}
