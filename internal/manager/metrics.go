package manager

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"flamed/internal/llm"
)

var (
	generationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flamed",
			Subsystem: "generation",
			Name:      "requests_total",
			Help:      "Total generation requests by outcome",
		},
		[]string{"model", "outcome"},
	)

	generationTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flamed",
			Subsystem: "generation",
			Name:      "tokens_total",
			Help:      "Tokens generated over all successful candidates",
		},
		[]string{"model"},
	)

	generationFinishTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flamed",
			Subsystem: "generation",
			Name:      "finish_total",
			Help:      "Completed generations by finish reason",
		},
		[]string{"model", "reason"},
	)

	generationCandidateFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flamed",
			Subsystem: "generation",
			Name:      "candidate_failures_total",
			Help:      "best_of candidates that failed while their request succeeded",
		},
		[]string{"model"},
	)

	generationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "flamed",
			Subsystem: "generation",
			Name:      "duration_seconds",
			Help:      "Duration of successful generations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"model"},
	)
)

func init() {
	prometheus.MustRegister(
		generationRequestsTotal,
		generationTokensTotal,
		generationFinishTotal,
		generationCandidateFailures,
		generationDuration,
	)
}

// observer returns the llm summary hook recording metrics for modelID.
func observer(modelID string) func(llm.Summary) {
	return func(s llm.Summary) {
		generationTokensTotal.WithLabelValues(modelID).Add(float64(s.GeneratedTokens))
		generationFinishTotal.WithLabelValues(modelID, string(s.FinishReason)).Inc()
		if s.Failed > 0 {
			generationCandidateFailures.WithLabelValues(modelID).Add(float64(s.Failed))
		}
		generationDuration.WithLabelValues(modelID).Observe(s.Duration.Seconds())
	}
}

// outcome maps a generation error to a low-cardinality label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case llm.IsValidation(err):
		return "validation"
	case IsTooBusy(err):
		return "too_busy"
	case llm.IsCancelled(err):
		return "cancelled"
	case llm.IsModelError(err):
		return "model_error"
	case IsModelNotFound(err):
		return "not_found"
	case IsDependencyUnavailable(err):
		return "unavailable"
	case errors.Is(err, llm.ErrInvalidState):
		return "invalid_state"
	default:
		return "error"
	}
}
