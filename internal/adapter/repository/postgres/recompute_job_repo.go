package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mariobrusarosco/better-call-buffet/internal/domain"
	"github.com/mariobrusarosco/better-call-buffet/internal/usecase"
)

// RecomputeJobRepository implements usecase.RecomputeJobRepository.
// One row per dirty account: triggers are range-consolidated by keeping
// only the earliest dirty date, and the generation counter lets a finished
// run detect that a newer trigger extended its range.
type RecomputeJobRepository struct {
	pool *pgxpool.Pool
}

// NewRecomputeJobRepository creates a new RecomputeJobRepository.
func NewRecomputeJobRepository(pool *pgxpool.Pool) *RecomputeJobRepository {
	return &RecomputeJobRepository{pool: pool}
}

// Upsert registers dirtyDate for the account. The stored earliest dirty
// date only ever moves earlier; the generation always increments.
func (r *RecomputeJobRepository) Upsert(ctx context.Context, tx usecase.Transaction, accountID string, dirtyDate time.Time) (int64, error) {
	var generation int64
	err := txQuerier(tx).QueryRow(ctx, `
		INSERT INTO recompute_jobs (account_id, earliest_dirty_date, generation, updated_at)
		VALUES ($1, $2, 1, now())
		ON CONFLICT (account_id) DO UPDATE
		SET earliest_dirty_date = LEAST(recompute_jobs.earliest_dirty_date, EXCLUDED.earliest_dirty_date),
		    generation = recompute_jobs.generation + 1,
		    updated_at = now()
		RETURNING generation`,
		accountID, dirtyDate).Scan(&generation)
	return generation, err
}

// Get returns the account's pending job, or nil when there is none.
func (r *RecomputeJobRepository) Get(ctx context.Context, accountID string) (*domain.RecomputeJob, error) {
	var job domain.RecomputeJob
	err := r.pool.QueryRow(ctx, `
		SELECT account_id, earliest_dirty_date, generation, updated_at
		FROM recompute_jobs WHERE account_id = $1`, accountID).
		Scan(&job.AccountID, &job.EarliestDirtyDate, &job.Generation, &job.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	job.EarliestDirtyDate = job.EarliestDirtyDate.UTC()
	return &job, nil
}

// ListPending returns pending jobs, oldest trigger first.
func (r *RecomputeJobRepository) ListPending(ctx context.Context, limit int) ([]*domain.RecomputeJob, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT account_id, earliest_dirty_date, generation, updated_at
		FROM recompute_jobs
		ORDER BY updated_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*domain.RecomputeJob
	for rows.Next() {
		var job domain.RecomputeJob
		if err := rows.Scan(&job.AccountID, &job.EarliestDirtyDate, &job.Generation, &job.UpdatedAt); err != nil {
			return nil, err
		}
		job.EarliestDirtyDate = job.EarliestDirtyDate.UTC()
		jobs = append(jobs, &job)
	}

	return jobs, rows.Err()
}

// Complete deletes the job if its generation still matches. A mismatch
// means a newer trigger extended the range while the run was in flight;
// the job survives and superseded is reported.
func (r *RecomputeJobRepository) Complete(ctx context.Context, tx usecase.Transaction, accountID string, generation int64) (bool, error) {
	tag, err := txQuerier(tx).Exec(ctx, `
		DELETE FROM recompute_jobs
		WHERE account_id = $1 AND generation = $2`,
		accountID, generation)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	var exists bool
	err = txQuerier(tx).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM recompute_jobs WHERE account_id = $1)`,
		accountID).Scan(&exists)
	return exists, err
}
