package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/gema-progress-api/internal/progress"
)

var (
	registerOnce           sync.Once
	progressRequestsTotal  *prometheus.CounterVec
	progressLatencySeconds *prometheus.HistogramVec
	progressErrorsTotal    *prometheus.CounterVec
	evaluationsTotal       *prometheus.CounterVec
	viewCacheTotal         *prometheus.CounterVec
	summarySeconds         prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors of the progress service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		progressRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progress_requests_total",
			Help: "Total number of progress API requests served.",
		}, []string{"method", "route", "status"})

		progressLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "progress_latency_seconds",
			Help:    "Latency distribution for progress API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		progressErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progress_errors_total",
			Help: "Total number of error responses returned by progress endpoints.",
		}, []string{"method", "route", "status"})

		evaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progress_evaluations_total",
			Help: "Completion evaluations by action kind and resulting status.",
		}, []string{"action_kind", "status"})

		viewCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progress_view_cache_total",
			Help: "Viewed-action cache lookups by result.",
		}, []string{"result"})

		summarySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "progress_summary_seconds",
			Help:    "Time spent computing a single user's progress.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		})

		prometheus.MustRegister(
			progressRequestsTotal,
			progressLatencySeconds,
			progressErrorsTotal,
			evaluationsTotal,
			viewCacheTotal,
			summarySeconds,
		)
	})
}

// ProgressRequests exposes the counter for progress requests.
func ProgressRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return progressRequestsTotal
}

// ProgressLatency exposes the latency histogram for progress requests.
func ProgressLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return progressLatencySeconds
}

// ProgressErrors exposes the counter for progress error responses.
func ProgressErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return progressErrorsTotal
}

// SummaryDuration exposes the per-user computation histogram.
func SummaryDuration() prometheus.Histogram {
	RegisterMetrics()
	return summarySeconds
}

// EvaluationRecorder feeds evaluator events into Prometheus.
type EvaluationRecorder struct{}

// NewEvaluationRecorder registers the collectors and returns a recorder.
func NewEvaluationRecorder() EvaluationRecorder {
	RegisterMetrics()
	return EvaluationRecorder{}
}

func (EvaluationRecorder) Evaluation(kind progress.ActionKind, status progress.Status) {
	evaluationsTotal.WithLabelValues(kind.String(), status.String()).Inc()
}

func (EvaluationRecorder) ViewCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	viewCacheTotal.WithLabelValues(result).Inc()
}

// MetricsHandler serves the default Prometheus registry through Fiber.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
}
