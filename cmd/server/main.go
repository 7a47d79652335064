package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	httpAdapter "github.com/mariobrusarosco/better-call-buffet/internal/adapter/http"
	"github.com/mariobrusarosco/better-call-buffet/internal/adapter/http/handler"
	postgresRepo "github.com/mariobrusarosco/better-call-buffet/internal/adapter/repository/postgres"
	redisRepo "github.com/mariobrusarosco/better-call-buffet/internal/adapter/repository/redis"
	"github.com/mariobrusarosco/better-call-buffet/internal/infrastructure/config"
	"github.com/mariobrusarosco/better-call-buffet/internal/infrastructure/logger"
	"github.com/mariobrusarosco/better-call-buffet/internal/infrastructure/metrics"
	"github.com/mariobrusarosco/better-call-buffet/internal/infrastructure/postgres"
	"github.com/mariobrusarosco/better-call-buffet/internal/infrastructure/redis"
	"github.com/mariobrusarosco/better-call-buffet/internal/usecase"
	"github.com/mariobrusarosco/better-call-buffet/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	cardRepo := postgresRepo.NewCreditCardRepository(pool)
	entryRepo := postgresRepo.NewTransactionRepository(pool)
	pointRepo := postgresRepo.NewBalancePointRepository(pool)
	jobRepo := postgresRepo.NewRecomputeJobRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	cache := redisRepo.NewCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	tolerance, err := decimal.NewFromString(cfg.ReconcileTolerance)
	if err != nil {
		log.Fatal().Err(err).Str("value", cfg.ReconcileTolerance).Msg("invalid reconcile tolerance")
	}

	retrier := postgresRepo.NewRetrier(log)

	mutatorCfg := usecase.MutatorConfig{
		AllowNegativeBalance: cfg.AllowNegativeBalance,
		RetentionWindow:      cfg.RetentionWindow,
		Retrier:              retrier,
	}

	// Use cases
	entryUC := usecase.NewTransactionUseCase(txManager, accountRepo, cardRepo, entryRepo, pointRepo, jobRepo, idGen, mutatorCfg)
	transferUC := usecase.NewTransferUseCase(txManager, accountRepo, cardRepo, entryRepo, pointRepo, jobRepo, idGen, mutatorCfg)
	accountUC := usecase.NewAccountUseCase(accountRepo, entryUC, auditRepo, idGen)
	cardUC := usecase.NewCreditCardUseCase(cardRepo, accountRepo, idGen)
	timelineUC := usecase.NewTimelineUseCase(txManager, accountRepo, entryRepo, pointRepo, jobRepo, cache, cfg.TimelineCacheTTL)
	reconcileUC := usecase.NewReconciliationUseCase(txManager, accountRepo, cardRepo, entryRepo, pointRepo, auditRepo, idGen, tolerance)
	csvUC := usecase.NewCSVUseCase(accountRepo, cardRepo, entryRepo, entryUC, transferUC, accountUC, cardUC, auditRepo, idGen)

	// Background recompute worker
	recomputeWorker := worker.NewRecomputeWorker(worker.Config{
		JobRepo:    jobRepo,
		Recomputer: timelineUC,
		Retrier:    retrier,
		Logger:     log,
		Metrics:    m,
		BatchSize:  cfg.RecomputeBatchSize,
		Interval:   cfg.RecomputeInterval,
		Workers:    cfg.RecomputeWorkers,
	})

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	go func() {
		if err := recomputeWorker.Start(workerCtx); err != nil && workerCtx.Err() == nil {
			log.Error().Err(err).Msg("recompute worker stopped")
		}
	}()

	// Router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:        handler.NewAccountHandler(accountUC),
		CreditCardHandler:     handler.NewCreditCardHandler(cardUC, transferUC),
		TransactionHandler:    handler.NewTransactionHandler(entryUC),
		TransferHandler:       handler.NewTransferHandler(transferUC),
		TimelineHandler:       handler.NewTimelineHandler(timelineUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconcileUC),
		CSVHandler:            handler.NewCSVHandler(csvUC),
		AuditHandler:          handler.NewAuditHandler(auditRepo),
		HealthHandler:         handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:      idempotencyStore,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
