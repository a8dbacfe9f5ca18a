package recipe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ggrecipe_run_duration_seconds",
			Help:    "Duration of a single recipe run in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	stepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ggrecipe_steps_total",
			Help: "Total number of recipe steps by outcome",
		},
		[]string{"outcome"},
	)

	artifactsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ggrecipe_artifacts_total",
			Help: "Total number of artifacts produced by kind",
		},
		[]string{"kind"},
	)

	warningsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ggrecipe_warnings_total",
			Help: "Total number of recoverable run warnings by code",
		},
		[]string{"code"},
	)
)

// Step outcomes.
const (
	outcomeApplied  = "applied"
	outcomeDisabled = "disabled"
	outcomeSkipped  = "skipped"
	outcomeControl  = "control"
	outcomeUnknown  = "unknown"
	outcomeFailed   = "failed"
)
