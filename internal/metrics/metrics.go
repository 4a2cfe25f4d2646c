package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency (seconds)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Summaries served, by where the text came from
	SummaryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "project_summary_count",
			Help: "Total number of project summaries served",
		},
		[]string{"source"}, // source: generated, fallback, cached, empty
	)

	// Upstream text-generation failures
	SummaryUpstreamFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "project_summary_upstream_failures",
			Help: "Total number of failed text-generation calls",
		},
		[]string{"kind"},
	)

	// Heuristic suggestions served
	SuggestionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_suggestion_count",
			Help: "Total number of task suggestions served",
		},
		[]string{"kind"}, // kind: effort, priority, combined, default
	)

	// Rows removed by cascading deletes
	CascadeDeletedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cascade_deleted_rows",
			Help: "Total number of rows removed by cascading deletes",
		},
		[]string{"kind"}, // kind: project, section, task
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func IncrementSummary(source string) {
	SummaryCount.WithLabelValues(source).Inc()
}

func IncrementSummaryUpstreamFailure(kind string) {
	SummaryUpstreamFailures.WithLabelValues(kind).Inc()
}

func IncrementSuggestion(kind string) {
	SuggestionCount.WithLabelValues(kind).Inc()
}

// RecordCascade counts one deleted parent plus its removed descendants.
func RecordCascade(parent string, sections, tasks int64) {
	CascadeDeletedCount.WithLabelValues(parent).Inc()
	if sections > 0 {
		CascadeDeletedCount.WithLabelValues("section").Add(float64(sections))
	}
	if tasks > 0 {
		CascadeDeletedCount.WithLabelValues("task").Add(float64(tasks))
	}
}
