package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mariobrusarosco/better-call-buffet/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByName(ctx context.Context, ownerID, name string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, lastTransactionID string, updatedAt time.Time) error
	SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Account, error)
}

// CreditCardRepository defines data access for credit cards.
type CreditCardRepository interface {
	Create(ctx context.Context, card *domain.CreditCard) error
	GetByID(ctx context.Context, id string) (*domain.CreditCard, error)
	GetByName(ctx context.Context, ownerID, name string) (*domain.CreditCard, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.CreditCard, error)
	UpdateOutstanding(ctx context.Context, tx Transaction, id string, outstanding decimal.Decimal, lastTransactionID string, updatedAt time.Time) error
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.CreditCard, error)
}

// TransactionKey is the natural key used for import deduplication.
type TransactionKey struct {
	OwnerID      string
	Date         time.Time
	Amount       decimal.Decimal
	MovementType domain.MovementType
	Description  string
}

// TransactionRepository defines data access for ledger entries.
type TransactionRepository interface {
	// Create inserts the entry and fills in its persistence sequence,
	// the tie-breaker for same-day ordering.
	Create(ctx context.Context, tx Transaction, entry *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Transaction, error)
	// ListByAccountBetween returns entries for [start, end] ordered by
	// (date, sequence) ascending.
	ListByAccountBetween(ctx context.Context, accountID string, start, end time.Time) ([]*domain.Transaction, error)
	// SumImpactsByAccount totals every signed impact for the account from
	// scratch. The reconciliation audit path; never reads cached state.
	SumImpactsByAccount(ctx context.Context, accountID string) (decimal.Decimal, error)
	SumImpactsByAccountThrough(ctx context.Context, accountID string, through time.Time) (decimal.Decimal, error)
	SumImpactsByCard(ctx context.Context, cardID string) (decimal.Decimal, error)
	Exists(ctx context.Context, key TransactionKey) (bool, error)
}

// BalancePointRepository defines data access for daily balance snapshots.
type BalancePointRepository interface {
	UpsertRange(ctx context.Context, tx Transaction, points []domain.BalancePoint) error
	GetRange(ctx context.Context, accountID string, start, end time.Time) ([]domain.BalancePoint, error)
	// GetLatestBefore returns the most recent current-status snapshot
	// strictly before day, or nil when none exists.
	GetLatestBefore(ctx context.Context, accountID string, day time.Time) (*domain.BalancePoint, error)
	// GetLatestDay returns the most recent snapshot day, or false when the
	// account has no points yet.
	GetLatestDay(ctx context.Context, accountID string) (time.Time, bool, error)
	MarkStatusFrom(ctx context.Context, tx Transaction, accountID string, from time.Time, status domain.PointStatus) error
	// LockAccount takes the per-account advisory lock that serializes
	// recomputation against reconciliation fixes. Held until tx ends.
	LockAccount(ctx context.Context, tx Transaction, accountID string) error
}

// RecomputeJobRepository defines data access for per-account recompute jobs.
type RecomputeJobRepository interface {
	// Upsert registers dirtyDate for the account. The stored earliest
	// dirty date can only move earlier; the generation always increments.
	// Returns the job's new generation.
	Upsert(ctx context.Context, tx Transaction, accountID string, dirtyDate time.Time) (int64, error)
	Get(ctx context.Context, accountID string) (*domain.RecomputeJob, error)
	ListPending(ctx context.Context, limit int) ([]*domain.RecomputeJob, error)
	// Complete deletes the job if its generation still matches, and
	// reports whether the job had been superseded by a newer trigger.
	Complete(ctx context.Context, tx Transaction, accountID string, generation int64) (superseded bool, err error)
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation that failed with a transient database
// error (deadlock, serialization failure). Non-transient errors pass
// through untouched.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// retryTransient runs op through r when one is configured. The operation
// must be safe to re-run from scratch: it re-reads everything it needs
// inside its own transaction.
func retryTransient(ctx context.Context, r Retrier, op func() error) error {
	if r == nil {
		return op()
	}
	return r.Retry(ctx, op)
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
