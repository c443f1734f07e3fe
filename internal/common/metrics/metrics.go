// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_requests_total",
			Help: "Total number of matching requests by operation",
		},
		[]string{"operation"},
	)

	MatchRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "matching_request_duration_seconds",
			Help: "Duration of matching requests in seconds",
		},
		[]string{"operation"},
	)

	CandidatesFiltered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_candidates_filtered_total",
			Help: "Candidates excluded by the pre-filter, by reason",
		},
		[]string{"reason"},
	)

	CandidatesScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_candidates_scored_total",
			Help: "Total number of candidates scored",
		},
	)

	ScoringErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_scoring_errors_total",
			Help: "Candidates excluded due to unexpected scoring failures",
		},
	)

	FallbackEscalations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_fallback_escalations_total",
			Help: "Fallback stage escalations, by stage entered",
		},
		[]string{"stage"},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_cache_hits_total",
			Help: "Result cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_cache_misses_total",
			Help: "Result cache misses",
		},
	)

	PredictorTimeouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_predictor_timeouts_total",
			Help: "Predictor calls that timed out and fell back to deterministic scoring",
		},
	)
)
