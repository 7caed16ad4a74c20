package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scheduler_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	shiftsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_shifts_generated_total",
		Help: "Shifts created by auto-generation runs",
	})

	coverageSkips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_coverage_skips_total",
		Help: "Coverage requirements skipped during auto-generation, by reason",
	}, []string{"reason"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scheduler_run_duration_seconds",
		Help:    "Duration of auto-generation runs",
		Buckets: prometheus.DefBuckets,
	})

	conflictRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_conflict_rejections_total",
		Help: "Manual shift writes rejected because of an overlap conflict",
	})

	sweepTransitions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_sweep_completed_total",
		Help: "Shifts marked completed by the status sweep",
	})
)

// ObserveHTTPRequest records an HTTP request metric.
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveRun records the outcome of one auto-generation run.
func ObserveRun(generated int, duration time.Duration) {
	shiftsGenerated.Add(float64(generated))
	runDuration.Observe(duration.Seconds())
}

// ObserveCoverageSkip counts a skipped coverage requirement.
func ObserveCoverageSkip(reason string) {
	coverageSkips.WithLabelValues(reason).Inc()
}

// ObserveConflictRejection counts a 409-rejected manual shift write.
func ObserveConflictRejection() {
	conflictRejections.Inc()
}

// ObserveSweep records shifts completed by the status sweep.
func ObserveSweep(count int) {
	sweepTransitions.Add(float64(count))
}
