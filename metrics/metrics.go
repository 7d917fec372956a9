// Package metrics defines the Prometheus instruments for the question
// answering pipeline. All collectors register with the default registry and
// are exposed on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lexcase"

var (
	// ExtractionsTotal counts text extractions.
	// Labels: kind (pdf, docx, image, text, unsupported), outcome (ok, empty, error)
	ExtractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "extract",
		Name:      "total",
		Help:      "Text extractions by content kind and outcome.",
	}, []string{"kind", "outcome"})

	// IndexOperationsTotal counts calls into the document index.
	// Labels: op (create_namespace, index, delete, delete_namespace, query), outcome (ok, error)
	IndexOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "index",
		Name:      "operations_total",
		Help:      "Document index operations by type and outcome.",
	}, []string{"op", "outcome"})

	// QuestionsTotal counts questions by final state.
	// Labels: outcome (answered, fallback, failed)
	QuestionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "questions",
		Name:      "total",
		Help:      "Questions by outcome.",
	}, []string{"outcome"})

	// GenerationFallbacksTotal counts apology answers returned instead of model output.
	GenerationFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "generation",
		Name:      "fallbacks_total",
		Help:      "Model failures answered with the fixed apology.",
	})

	// StageDurationSeconds measures pipeline stage latency.
	// Labels: stage (retrieve, generate, rebuild)
	StageDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "stage_duration_seconds",
		Help:      "Latency of question pipeline stages.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"stage"})
)

// Outcome maps an error to the ok/error label value
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveStage records the time elapsed since start for a stage
func ObserveStage(stage string, start time.Time) {
	StageDurationSeconds.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
