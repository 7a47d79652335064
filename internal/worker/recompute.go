package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mariobrusarosco/better-call-buffet/internal/infrastructure/metrics"
	"github.com/mariobrusarosco/better-call-buffet/internal/usecase"
)

// Recomputer replays an account's balance points for its pending job.
type Recomputer interface {
	Recompute(ctx context.Context, accountID string) (superseded bool, err error)
}

// RecomputeWorker drains the recompute job queue in the background. Jobs
// are range-consolidated per account, so the queue stays small: one job
// per dirty account no matter how many backdated inserts landed.
type RecomputeWorker struct {
	jobRepo    usecase.RecomputeJobRepository
	recomputer Recomputer
	retrier    usecase.Retrier
	logger     zerolog.Logger
	metrics    *metrics.Metrics
	batchSize  int
	interval   time.Duration
	workers    int
}

// Config for RecomputeWorker.
type Config struct {
	JobRepo    usecase.RecomputeJobRepository
	Recomputer Recomputer
	Retrier    usecase.Retrier // Optional; re-runs a job on transient database errors
	Logger     zerolog.Logger
	Metrics    *metrics.Metrics
	BatchSize  int           // Jobs fetched per poll
	Interval   time.Duration // Polling interval
	Workers    int           // Concurrent recomputations
}

// NewRecomputeWorker creates a new RecomputeWorker.
func NewRecomputeWorker(cfg Config) *RecomputeWorker {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 50
	}
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}

	return &RecomputeWorker{
		jobRepo:    cfg.JobRepo,
		recomputer: cfg.Recomputer,
		retrier:    cfg.Retrier,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		batchSize:  cfg.BatchSize,
		interval:   cfg.Interval,
		workers:    cfg.Workers,
	}
}

// Start runs the worker until the context is cancelled.
func (w *RecomputeWorker) Start(ctx context.Context) error {
	w.logger.Info().
		Int("batch_size", w.batchSize).
		Dur("interval", w.interval).
		Int("workers", w.workers).
		Msg("recompute worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Drain immediately on start
	if err := w.ProcessBatch(ctx); err != nil {
		w.logger.Error().Err(err).Msg("error processing recompute jobs on start")
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("recompute worker shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessBatch(ctx); err != nil {
				w.logger.Error().Err(err).Msg("error processing recompute jobs")
			}
		}
	}
}

// ProcessBatch fetches pending jobs and recomputes them with bounded
// concurrency. A job that reports supersession is left for the next poll;
// its extended range will be picked up then.
func (w *RecomputeWorker) ProcessBatch(ctx context.Context) error {
	jobs, err := w.jobRepo.ListPending(ctx, w.batchSize)
	if err != nil {
		return err
	}

	if w.metrics != nil {
		w.metrics.RecomputeBacklog.Set(float64(len(jobs)))
	}

	if len(jobs) == 0 {
		return nil
	}

	w.logger.Info().Int("count", len(jobs)).Msg("processing recompute jobs")

	sem := make(chan struct{}, w.workers)
	var wg sync.WaitGroup

	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(accountID string) {
			defer wg.Done()
			defer func() { <-sem }()
			w.runOne(ctx, accountID)
		}(job.AccountID)
	}

	wg.Wait()
	return ctx.Err()
}

func (w *RecomputeWorker) runOne(ctx context.Context, accountID string) {
	started := time.Now()

	var superseded bool
	run := func() (err error) {
		superseded, err = w.recomputer.Recompute(ctx, accountID)
		return err
	}

	var err error
	if w.retrier != nil {
		err = w.retrier.Retry(ctx, run)
	} else {
		err = run()
	}

	if w.metrics != nil {
		w.metrics.RecomputeRuns.Inc()
		w.metrics.RecomputeDuration.Observe(time.Since(started).Seconds())
	}

	if err != nil {
		if w.metrics != nil {
			w.metrics.RecomputeFailures.Inc()
		}
		w.logger.Error().Err(err).Str("account_id", accountID).Msg("recompute failed")
		return
	}

	if superseded {
		if w.metrics != nil {
			w.metrics.RecomputeSuperseded.Inc()
		}
		w.logger.Debug().Str("account_id", accountID).Msg("recompute superseded, will retry")
		return
	}

	w.logger.Debug().
		Str("account_id", accountID).
		Dur("took", time.Since(started)).
		Msg("recompute completed")
}
