// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RankingPassesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_passes_completed_total",
			Help: "Total number of ranking passes completed",
		},
		[]string{"rerank_mode"},
	)

	RankingPassesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_passes_failed_total",
			Help: "Total number of ranking passes that aborted",
		},
		[]string{"error_code"},
	)

	RankingPassDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "ranking_pass_duration_seconds",
			Help: "Duration of a full ranking pass in seconds",
		},
		[]string{"rerank_mode"},
	)

	CandidatesScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_candidates_scored_total",
			Help: "Total number of candidates scored",
		},
		[]string{"rerank_mode"},
	)

	SignalAbsent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_signal_absent_total",
			Help: "Candidates for which a signal could not be computed",
		},
		[]string{"signal"},
	)

	ModelCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "ranking_model_call_duration_seconds",
			Help: "Duration of external model service calls in seconds",
		},
		[]string{"service"},
	)

	ModelCallFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_model_call_failures_total",
			Help: "External model service calls that failed or timed out",
		},
		[]string{"service"},
	)
)
