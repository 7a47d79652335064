package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mariobrusarosco/better-call-buffet/internal/adapter/http/handler"
	"github.com/mariobrusarosco/better-call-buffet/internal/adapter/http/middleware"
	"github.com/mariobrusarosco/better-call-buffet/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler        *handler.AccountHandler
	CreditCardHandler     *handler.CreditCardHandler
	TransactionHandler    *handler.TransactionHandler
	TransferHandler       *handler.TransferHandler
	TimelineHandler       *handler.TimelineHandler
	ReconciliationHandler *handler.ReconciliationHandler
	CSVHandler            *handler.CSVHandler
	AuditHandler          *handler.AuditHandler
	HealthHandler         *handler.HealthHandler
	IdempotencyStore      usecase.IdempotencyStore
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	// Health and operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1; every route is scoped to the acting owner
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireOwner)

		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Post("/reconcile", cfg.ReconciliationHandler.ReconcileAll)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Delete("/{id}", cfg.AccountHandler.Deactivate)
			r.Get("/{id}/transactions", cfg.TransactionHandler.ListByAccount)
			r.Get("/{id}/timeline", cfg.TimelineHandler.GetTimeline)
			r.Post("/{id}/timeline/recompute", cfg.TimelineHandler.Recompute)
			r.Get("/{id}/balance", cfg.TimelineHandler.GetBalanceAt)
			r.Post("/{id}/reconcile", cfg.ReconciliationHandler.Reconcile)
			r.Post("/{id}/reconcile/fix", cfg.ReconciliationHandler.Fix)
		})

		// Credit cards
		r.Route("/credit-cards", func(r chi.Router) {
			r.Post("/", cfg.CreditCardHandler.Create)
			r.Get("/", cfg.CreditCardHandler.List)
			r.Get("/{id}", cfg.CreditCardHandler.Get)
			r.Post("/{id}/pay", cfg.CreditCardHandler.Pay)
			r.Post("/{id}/reconcile", cfg.ReconciliationHandler.ReconcileCard)
		})

		// Transactions
		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", cfg.TransactionHandler.Create)
			r.Post("/bulk", cfg.TransactionHandler.CreateBulk)
			r.Get("/{id}", cfg.TransactionHandler.Get)
		})

		// Transfers
		r.Route("/transfers", func(r chi.Router) {
			r.Post("/", cfg.TransferHandler.Create)
			r.Get("/{id}", cfg.TransferHandler.Get)
		})

		// CSV import/export
		r.Route("/csv", func(r chi.Router) {
			r.Get("/export", cfg.CSVHandler.Export)
			r.Post("/import", cfg.CSVHandler.Import)
		})

		// Audit trail
		r.Get("/audit-logs", cfg.AuditHandler.List)
	})

	return r
}
