// Package metrics exposes Prometheus collectors for the trust-scoring
// pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the trust service.
type Metrics struct {
	// Scoring metrics
	ScoreRequestsTotal *prometheus.CounterVec
	ScoreDuration      prometheus.Histogram
	ScoreValues        prometheus.Histogram

	// Payment metrics
	PaymentsSuccessTotal *prometheus.CounterVec
	PaymentsFailedTotal  *prometheus.CounterVec
	PaymentDuration      *prometheus.HistogramVec

	// Reputation metrics
	ReputationComputeDuration prometheus.Histogram
	ReputationCacheTotal      *prometheus.CounterVec

	// Screener metrics
	ScreenerVerdictsTotal *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHitsTotal *prometheus.CounterVec
}

// New creates and registers all collectors.
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		ScoreRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trust_score_requests_total",
				Help: "Total scoring requests by outcome",
			},
			[]string{"outcome"},
		),
		ScoreDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "trust_score_duration_seconds",
				Help:    "End-to-end scoring request duration",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		),
		ScoreValues: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "trust_score_values",
				Help:    "Distribution of returned composite trust scores",
				Buckets: prometheus.LinearBuckets(0, 0.1, 11),
			},
		),
		PaymentsSuccessTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trust_payments_success_total",
				Help: "Settled payments by rail",
			},
			[]string{"rail"},
		),
		PaymentsFailedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trust_payments_failed_total",
				Help: "Failed payments by rail and stage",
			},
			[]string{"rail", "stage"},
		),
		PaymentDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trust_payment_duration_seconds",
				Help:    "Verify-plus-settle duration by rail",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"rail"},
		),
		ReputationComputeDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "trust_reputation_compute_duration_seconds",
				Help:    "Damped-propagation compute duration on cache miss",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
		ReputationCacheTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trust_reputation_cache_total",
				Help: "Reputation cache lookups by result",
			},
			[]string{"result"},
		),
		ScreenerVerdictsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trust_screener_verdicts_total",
				Help: "Context screener verdicts",
			},
			[]string{"verdict"},
		),
		RateLimitHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trust_ratelimit_hits_total",
				Help: "Requests rejected by the hourly quota",
			},
			[]string{"limit"},
		),
	}
}

// ObserveScore records one completed scoring request.
func (m *Metrics) ObserveScore(outcome string, score float64, duration time.Duration) {
	m.ScoreRequestsTotal.WithLabelValues(outcome).Inc()
	m.ScoreDuration.Observe(duration.Seconds())
	if outcome == "success" {
		m.ScoreValues.Observe(score)
	}
}

// ObservePaymentSuccess records a settled payment.
func (m *Metrics) ObservePaymentSuccess(rail string, duration time.Duration) {
	m.PaymentsSuccessTotal.WithLabelValues(rail).Inc()
	m.PaymentDuration.WithLabelValues(rail).Observe(duration.Seconds())
}

// ObservePaymentFailure records a failed payment attempt.
func (m *Metrics) ObservePaymentFailure(rail, stage string) {
	m.PaymentsFailedTotal.WithLabelValues(rail, stage).Inc()
}

// ObserveReputationCache records a cache lookup result ("hit"/"miss").
func (m *Metrics) ObserveReputationCache(result string) {
	m.ReputationCacheTotal.WithLabelValues(result).Inc()
}

// ObserveReputationCompute records one compute on cache miss.
func (m *Metrics) ObserveReputationCompute(duration time.Duration) {
	m.ReputationComputeDuration.Observe(duration.Seconds())
}

// ObserveScreenerVerdict records a classifier verdict.
func (m *Metrics) ObserveScreenerVerdict(verdict string) {
	m.ScreenerVerdictsTotal.WithLabelValues(verdict).Inc()
}

// ObserveRateLimit records a rejected request.
func (m *Metrics) ObserveRateLimit(limit string) {
	m.RateLimitHitsTotal.WithLabelValues(limit).Inc()
}
