package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestCounter counts HTTP requests by status code, method, and path
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hunt_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"status", "method", "path"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hunt_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status", "method", "path"},
	)

	// RequestInProgress counts HTTP requests currently being processed
	RequestInProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hunt_http_requests_in_progress",
			Help: "Number of HTTP requests currently being processed",
		},
		[]string{"method", "path"},
	)

	// RateLimiterRejections counts requests rejected by the rate limiter
	RateLimiterRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hunt_rate_limiter_rejections_total",
			Help: "Total number of requests rejected by rate limiter",
		},
		[]string{"client"},
	)

	// GuessesEvaluated counts accepted guesses by verdict
	GuessesEvaluated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hunt_guesses_evaluated_total",
			Help: "Accepted guess attempts by verdict",
		},
		[]string{"verdict"},
	)

	// GuessesSuppressed counts guesses that produced no guesslog row
	GuessesSuppressed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hunt_guesses_suppressed_total",
			Help: "Guess attempts suppressed as duplicates or on already-solved puzzles",
		},
		[]string{"reason"},
	)

	// TeamsCreated counts successful team registrations
	TeamsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hunt_teams_created_total",
			Help: "Teams created",
		},
	)

	// TeamsDeleted counts soft-deleted teams
	TeamsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hunt_teams_deleted_total",
			Help: "Teams soft-deleted by their captain",
		},
	)

	// HuntCompletions counts final-puzzle solves
	HuntCompletions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hunt_completions_total",
			Help: "Teams that solved the final puzzle",
		},
	)

	// DatabaseOperationDuration measures database operation duration
	DatabaseOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hunt_db_operation_duration_seconds",
			Help:    "Database operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	// MemoryStats tracks memory usage stats
	MemoryStats = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hunt_memory_stats_bytes",
			Help: "Memory statistics in bytes",
		},
		[]string{"type"},
	)

	// GoroutineCount tracks the number of goroutines
	GoroutineCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hunt_goroutine_count",
			Help: "Number of goroutines",
		},
	)
)

// RecordDBOperation records the duration of a database operation
func RecordDBOperation(operation string, table string, startTime time.Time) {
	duration := time.Since(startTime).Seconds()
	DatabaseOperationDuration.WithLabelValues(operation, table).Observe(duration)
}
