package prometheus

import (
	"time"

	"dailydrop-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics
	AuthErrorsCounter prometheus.CounterVec

	// Tenant context metrics
	TenantContextMissingCounter prometheus.Counter

	// Authorization service metrics
	AccessCheckDuration prometheus.Histogram

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Drop metrics
	DropOperationsCounter prometheus.CounterVec
	DropsPerTenantGauge   prometheus.GaugeVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	AuthErrorsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"reason"},
	)

	TenantContextMissingCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_tenant_context_missing_total",
			Help: "Total number of requests without tenant context",
		},
	)

	AccessCheckDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    prefix + "_access_check_duration_seconds",
			Help:    "Duration of authorization service calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	DropOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_operations_total",
			Help: "Total number of drop operations",
		},
		[]string{"operation"},
	)

	DropsPerTenantGauge = *promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_drops_per_tenant",
			Help: "Number of drops per tenant",
		},
		[]string{"tenant_id"},
	)
}

// RecordDropOperation increments the operation counter for a drop operation
func RecordDropOperation(operation string) {
	DropOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordAuthError increments the auth error counter for a failure reason
func RecordAuthError(reason string) {
	AuthErrorsCounter.WithLabelValues(reason).Inc()
}

// TrackDBOperation returns a function that records the duration of a database
// operation when called. Use with defer:
//
//	defer prometheus.TrackDBOperation("query")(time.Now())
func TrackDBOperation(operationType string) func(time.Time) {
	return func(start time.Time) {
		DbOperationDuration.WithLabelValues(operationType).Observe(time.Since(start).Seconds())
	}
}

// UpdateDropsPerTenant sets the drops gauge for a tenant
func UpdateDropsPerTenant(tenantID string, count int) {
	DropsPerTenantGauge.WithLabelValues(tenantID).Set(float64(count))
}
