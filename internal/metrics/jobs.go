package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingestion job and payload validator metrics.
var (
	JobsEnqueuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "recall",
			Name:      "jobs_enqueued_total",
			Help:      "Total number of embed_document jobs enqueued",
		},
	)

	JobsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recall",
			Name:      "jobs_processed_total",
			Help:      "Total number of processed jobs by outcome",
		},
		[]string{"status"}, // "success" / "error"
	)

	JobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "recall",
			Name:      "job_duration_seconds",
			Help:      "Job processing duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 300},
		},
		[]string{"status"},
	)

	JobsRequeuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "recall",
			Name:      "jobs_requeued_total",
			Help:      "Jobs returned to the queue after a worker crash",
		},
	)

	ValidatorCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recall",
			Name:      "validator_cache_total",
			Help:      "Compiled payload validator cache hits and misses",
		},
		[]string{"result"},
	)
)

var jobMetricsRegistered bool

// RegisterJobMetrics registers job and validator metrics. Must be called once from main.
func RegisterJobMetrics() {
	if jobMetricsRegistered {
		return
	}
	prometheus.MustRegister(JobsEnqueuedTotal)
	prometheus.MustRegister(JobsProcessedTotal)
	prometheus.MustRegister(JobDuration)
	prometheus.MustRegister(JobsRequeuedTotal)
	prometheus.MustRegister(ValidatorCacheTotal)
	jobMetricsRegistered = true
}

// ObserveValidatorCache records one validator cache lookup.
func ObserveValidatorCache(hit bool) {
	if hit {
		ValidatorCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	ValidatorCacheTotal.WithLabelValues("miss").Inc()
}
