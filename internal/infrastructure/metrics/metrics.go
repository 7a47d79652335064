package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transaction metrics
	TransactionsCreated *prometheus.CounterVec
	TransactionAmount   prometheus.Histogram
	TransactionErrors   *prometheus.CounterVec

	// Transfer metrics
	TransfersCreated    prometheus.Counter
	CardPaymentsCreated prometheus.Counter

	// Account metrics
	AccountsCreated  prometheus.Counter
	CreditCardsAdded prometheus.Counter

	// Recompute metrics
	RecomputeRuns       prometheus.Counter
	RecomputeSuperseded prometheus.Counter
	RecomputeFailures   prometheus.Counter
	RecomputeDuration   prometheus.Histogram
	RecomputeBacklog    prometheus.Gauge

	// Reconciliation metrics
	ReconciliationsRun    prometheus.Counter
	DiscrepanciesDetected prometheus.Counter
	DiscrepanciesFixed    prometheus.Counter

	// CSV metrics
	CSVRowsImported *prometheus.CounterVec
	CSVRowsExported prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		TransactionsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buffet_transactions_created_total",
				Help: "Total number of ledger entries created",
			},
			[]string{"movement_type", "target"},
		),
		TransactionAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "buffet_transaction_amount",
			Help:    "Transaction amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		TransactionErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buffet_transaction_errors_total",
				Help: "Total number of rejected transactions by error kind",
			},
			[]string{"kind"},
		),
		TransfersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "buffet_transfers_created_total",
			Help: "Total number of account-to-account transfers created",
		}),
		CardPaymentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "buffet_card_payments_created_total",
			Help: "Total number of credit card payments created",
		}),
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "buffet_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		CreditCardsAdded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "buffet_credit_cards_added_total",
			Help: "Total number of credit cards added",
		}),
		RecomputeRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "buffet_recompute_runs_total",
			Help: "Total number of balance point recomputation runs",
		}),
		RecomputeSuperseded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "buffet_recompute_superseded_total",
			Help: "Total number of recomputation runs superseded by newer triggers",
		}),
		RecomputeFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "buffet_recompute_failures_total",
			Help: "Total number of failed recomputation runs",
		}),
		RecomputeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "buffet_recompute_duration_seconds",
			Help:    "Duration of recomputation runs",
			Buckets: prometheus.DefBuckets,
		}),
		RecomputeBacklog: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "buffet_recompute_backlog",
			Help: "Number of accounts with pending recompute jobs",
		}),
		ReconciliationsRun: promauto.NewCounter(prometheus.CounterOpts{
			Name: "buffet_reconciliations_total",
			Help: "Total number of reconciliation checks run",
		}),
		DiscrepanciesDetected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "buffet_discrepancies_detected_total",
			Help: "Total number of balance discrepancies detected",
		}),
		DiscrepanciesFixed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "buffet_discrepancies_fixed_total",
			Help: "Total number of balance discrepancies fixed",
		}),
		CSVRowsImported: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buffet_csv_rows_imported_total",
				Help: "Total number of CSV rows processed by outcome",
			},
			[]string{"outcome"},
		),
		CSVRowsExported: promauto.NewCounter(prometheus.CounterOpts{
			Name: "buffet_csv_rows_exported_total",
			Help: "Total number of CSV rows exported",
		}),
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buffet_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "buffet_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buffet_db_queries_total",
				Help: "Total number of database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "buffet_db_query_duration_seconds",
				Help:    "Duration of database queries",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "buffet_db_connections",
			Help: "Number of active database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buffet_db_errors_total",
				Help: "Total number of database errors",
			},
			[]string{"operation"},
		),
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buffet_redis_operations_total",
				Help: "Total number of Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buffet_redis_errors_total",
				Help: "Total number of Redis errors",
			},
			[]string{"operation"},
		),
	}
}
