package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "onboarding_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"path", "method", "status"},
	)

	// ActiveConnections tracks active connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "onboarding_active_connections",
			Help: "Number of active connections",
		},
	)

	// TicksTotal counts scheduler tick cycles
	TicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "onboarding_ticks_total",
			Help: "Number of scheduler tick cycles run",
		},
	)

	// CandidatesProcessed counts per-candidate pipeline outcomes per tick
	CandidatesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_candidates_processed_total",
			Help: "Number of candidate pipelines run, by outcome",
		},
		[]string{"outcome"},
	)

	// ReconciliationChanges counts reconciliations that produced a delta
	ReconciliationChanges = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "onboarding_reconciliation_changes_total",
			Help: "Number of reconciliations that changed persisted document status",
		},
	)

	// Reminders counts reminder scheduler decisions
	Reminders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_reminders_total",
			Help: "Number of reminder claims, by result",
		},
		[]string{"result"},
	)

	// DispatchFailures counts failed communication dispatches
	DispatchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_dispatch_failures_total",
			Help: "Number of failed communication dispatches",
		},
		[]string{"kind"},
	)

	// DatabaseOperations tracks database operations
	DatabaseOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_database_operations_total",
			Help: "Number of database operations",
		},
		[]string{"operation", "status"},
	)
)
