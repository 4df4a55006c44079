package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

var (
	// API request counter
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	// API request latency
	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// requests created
	requestsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "purchase_requests_created_total",
			Help: "Total number of purchase requests created",
		},
	)

	// committed phase transitions
	transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phase_transitions_total",
			Help: "Total number of committed phase transitions",
		},
		[]string{"target"},
	)

	// approval decisions per gate
	approvalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "approvals_total",
			Help: "Total number of approval decisions",
		},
		[]string{"gate", "result"}, // approve, reject
	)

	// reconciliation outcomes
	reconciliationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciliations_total",
			Help: "Total number of supplier selection reconciliations",
		},
		[]string{"outcome"}, // full, partial, none
	)

	// database connection pool
	databaseConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_active",
			Help: "Number of active database connections",
		},
	)

	databaseConnectionsIdle = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// request distribution across workflow phases
	requestsByPhase = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "purchase_requests_by_phase",
			Help: "Number of purchase requests by workflow phase",
		},
		[]string{"phase"},
	)
)

var once sync.Once

func init() {
	prometheus.MustRegister(apiRequestsTotal)
	prometheus.MustRegister(apiRequestDuration)
	prometheus.MustRegister(requestsCreatedTotal)
	prometheus.MustRegister(transitionsTotal)
	prometheus.MustRegister(approvalsTotal)
	prometheus.MustRegister(reconciliationsTotal)
	prometheus.MustRegister(databaseConnectionsActive)
	prometheus.MustRegister(databaseConnectionsIdle)
	prometheus.MustRegister(requestsByPhase)

	once.Do(func() {
		_ = prometheus.Register(prometheus.NewGoCollector())
		_ = prometheus.Register(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	})
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAPIRequest records one API request.
func RecordAPIRequest(method, path string, status int, duration float64) {
	statusText := http.StatusText(status)
	if statusText == "" {
		statusText = fmt.Sprintf("%d", status)
	}
	apiRequestsTotal.WithLabelValues(method, path, statusText).Inc()
	apiRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordRequestCreated records a new purchase request.
func RecordRequestCreated() {
	requestsCreatedTotal.Inc()
}

// RecordTransition records a committed phase transition.
func RecordTransition(target string) {
	transitionsTotal.WithLabelValues(target).Inc()
}

// RecordApproval records an approval decision.
func RecordApproval(gate, result string) {
	approvalsTotal.WithLabelValues(gate, result).Inc()
}

// RecordReconciliation records a supplier selection outcome.
func RecordReconciliation(orderCreated, requestDerived bool) {
	outcome := "none"
	switch {
	case orderCreated && requestDerived:
		outcome = "partial"
	case orderCreated:
		outcome = "full"
	}
	reconciliationsTotal.WithLabelValues(outcome).Inc()
}

// UpdateDatabaseConnections refreshes the pool gauges.
func UpdateDatabaseConnections(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	stats := sqlDB.Stats()
	databaseConnectionsActive.Set(float64(stats.OpenConnections - stats.Idle))
	databaseConnectionsIdle.Set(float64(stats.Idle))
	return nil
}

// UpdateRequestsByPhase refreshes the phase distribution gauge.
func UpdateRequestsByPhase(phase string, count float64) {
	requestsByPhase.WithLabelValues(phase).Set(count)
}
