// Package metrics provides Prometheus metrics for monitoring the
// prompt search and render paths.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// searchesTotal records search pipeline invocations.
	// Labels:
	//   - mode: "query" (ranked by score) or "browse" (recency only)
	searchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prompt_searches_total",
			Help: "Total number of prompt searches",
		},
		[]string{"mode"},
	)

	// searchDuration records how long one search takes, including the
	// snapshot load.
	searchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prompt_search_duration_seconds",
			Help:    "Duration of prompt searches in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	// rendersTotal records template renders.
	// Labels:
	//   - status: "ok" or "validation_errors"
	rendersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prompt_renders_total",
			Help: "Total number of prompt renders",
		},
		[]string{"status"},
	)

	// snapshotSize tracks how many prompts the last store load returned.
	snapshotSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "prompt_snapshot_size",
			Help: "Number of prompts in the most recently loaded snapshot",
		},
	)
)

func init() {
	prometheus.MustRegister(searchesTotal)
	prometheus.MustRegister(searchDuration)
	prometheus.MustRegister(rendersTotal)
	prometheus.MustRegister(snapshotSize)
}

// RecordSearch records one search invocation. mode is "query" when
// free-text ranking ran, "browse" otherwise.
func RecordSearch(mode string, durationSeconds float64) {
	searchesTotal.WithLabelValues(mode).Inc()
	searchDuration.Observe(durationSeconds)
}

// RecordRender records one render and whether validation errors were
// reported alongside the output.
func RecordRender(hadValidationErrors bool) {
	status := "ok"
	if hadValidationErrors {
		status = "validation_errors"
	}
	rendersTotal.WithLabelValues(status).Inc()
}

// SetSnapshotSize records the size of the latest loaded snapshot.
func SetSnapshotSize(n int) {
	snapshotSize.Set(float64(n))
}
