package prometheus

import (
	"time"

	"github.com/AR-Project/wpt-v3/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors stay nil until InitMetrics runs; the Record helpers are no-ops
// in that state so packages can be used without a registry.
var (
	// HTTP request metrics
	HttpRequestsTotal       *prometheus.CounterVec
	HttpRequestDuration     *prometheus.HistogramVec
	HttpStatusCategoryTotal *prometheus.CounterVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthErrorsCounter   prometheus.Counter

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// Domain operation metrics
	OperationsCounter *prometheus.CounterVec

	// Transaction metrics
	TxRetriesCounter *prometheus.CounterVec

	// Asset store metrics
	AssetCompensationsCounter *prometheus.CounterVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	InitMetricsWith(prometheus.DefaultRegisterer, config.Metrics.Prefix)
}

// InitMetricsWith registers every collector on reg using the given name prefix
func InitMetricsWith(reg prometheus.Registerer, prefix string) {
	factory := promauto.With(reg)

	HttpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	HttpStatusCategoryTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_status_category_total",
			Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
		},
		[]string{"category", "method", "path"},
	)

	AuthAttemptsCounter = factory.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthSuccessCounter = factory.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_success_total",
			Help: "Total number of successful authentications",
		},
	)

	AuthErrorsCounter = factory.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
	)

	DbOperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	OperationsCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_operations_total",
			Help: "Total number of domain operations by entity and outcome",
		},
		[]string{"entity", "operation", "outcome"},
	)

	TxRetriesCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_tx_retries_total",
			Help: "Total number of transactions retried after a serialization failure",
		},
		[]string{"sqlstate"},
	)

	AssetCompensationsCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_asset_compensations_total",
			Help: "Total number of image rows removed after a failed blob write",
		},
		[]string{"outcome"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if DbOperationDuration == nil {
			return
		}
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordOperation increments the counter for a domain operation
func RecordOperation(entity, operation string, err error) {
	if OperationsCounter == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	OperationsCounter.WithLabelValues(entity, operation, outcome).Inc()
}

// RecordHTTPRequest records one finished HTTP request
func RecordHTTPRequest(method, path string, status int, statusStr string, duration time.Duration) {
	if HttpRequestsTotal == nil {
		return
	}
	HttpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	HttpRequestDuration.WithLabelValues(method, path, statusStr).Observe(duration.Seconds())

	category := ""
	if status >= 200 && status < 300 {
		category = "2xx"
	} else if status >= 400 && status < 500 {
		category = "4xx"
	} else if status >= 500 && status < 600 {
		category = "5xx"
	}
	if category != "" {
		HttpStatusCategoryTotal.WithLabelValues(category, method, path).Inc()
	}
}

// RecordAuthAttempt counts a sign-in or token check and its result
func RecordAuthAttempt(err error) {
	if AuthAttemptsCounter == nil {
		return
	}
	AuthAttemptsCounter.Inc()
	if err != nil {
		AuthErrorsCounter.Inc()
		return
	}
	AuthSuccessCounter.Inc()
}

// RecordTxRetry counts a retried transaction
func RecordTxRetry(sqlState string) {
	if TxRetriesCounter == nil {
		return
	}
	TxRetriesCounter.WithLabelValues(sqlState).Inc()
}

// RecordAssetCompensation counts a compensating image row delete
func RecordAssetCompensation(err error) {
	if AssetCompensationsCounter == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	AssetCompensationsCounter.WithLabelValues(outcome).Inc()
}
