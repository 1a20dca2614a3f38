package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	apiRequestsTotal        *prometheus.CounterVec
	apiLatencySeconds       *prometheus.HistogramVec
	apiErrorsTotal          *prometheus.CounterVec
	assessmentUpsertsTotal  *prometheus.CounterVec
	backupOperationsTotal   *prometheus.CounterVec
	reportCacheLookupsTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sikori_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sikori_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sikori_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		assessmentUpsertsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sikori_assessment_upserts_total",
			Help: "Assessment upserts by assessment type.",
		}, []string{"type"})

		backupOperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sikori_backup_operations_total",
			Help: "Backup exports and restores by outcome.",
		}, []string{"operation", "outcome"})

		reportCacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sikori_report_cache_lookups_total",
			Help: "Report cache lookups by result.",
		}, []string{"report", "result"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			assessmentUpsertsTotal,
			backupOperationsTotal,
			reportCacheLookupsTotal,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// AssessmentUpserts counts stored assessments by type.
func AssessmentUpserts() *prometheus.CounterVec {
	RegisterMetrics()
	return assessmentUpsertsTotal
}

// BackupOperations counts exports and restores.
func BackupOperations() *prometheus.CounterVec {
	RegisterMetrics()
	return backupOperationsTotal
}

// ReportCacheLookups counts report cache hits and misses.
func ReportCacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return reportCacheLookupsTotal
}
