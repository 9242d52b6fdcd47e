package metrics

import "github.com/prometheus/client_golang/prometheus"

// RepricingMetrics tracks what the repricing engine does per tick.
type RepricingMetrics struct {
	evaluations  *prometheus.CounterVec
	priceUpdates *prometheus.CounterVec
	creditSkips  *prometheus.CounterVec
}

// NewRepricingMetrics registers the engine metrics on the provided registerer.
func NewRepricingMetrics(reg prometheus.Registerer) *RepricingMetrics {
	if reg == nil {
		return &RepricingMetrics{}
	}
	evaluations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "repricing_evaluations_total",
		Help: "Rule evaluations grouped by strategy and outcome.",
	}, []string{"strategy", "outcome"})
	priceUpdates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "repricing_price_updates_total",
		Help: "Submitted price updates grouped by marketplace and result.",
	}, []string{"marketplace", "result"})
	creditSkips := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "repricing_credit_skips_total",
		Help: "Organizations skipped for insufficient credits.",
	}, []string{"org"})
	reg.MustRegister(evaluations, priceUpdates, creditSkips)
	return &RepricingMetrics{
		evaluations:  evaluations,
		priceUpdates: priceUpdates,
		creditSkips:  creditSkips,
	}
}

// IncEvaluation counts one strategy evaluation with its outcome (update/no_change).
func (r *RepricingMetrics) IncEvaluation(strategy, outcome string) {
	if r == nil || r.evaluations == nil {
		return
	}
	r.evaluations.WithLabelValues(normalizeLabel(strategy), normalizeLabel(outcome)).Inc()
}

// IncPriceUpdate counts one submitted price change with its result (success/failure).
func (r *RepricingMetrics) IncPriceUpdate(marketplace, result string) {
	if r == nil || r.priceUpdates == nil {
		return
	}
	r.priceUpdates.WithLabelValues(normalizeLabel(marketplace), normalizeLabel(result)).Inc()
}

// IncCreditSkip counts an organization-wide skip due to insufficient credits.
func (r *RepricingMetrics) IncCreditSkip(orgID string) {
	if r == nil || r.creditSkips == nil {
		return
	}
	r.creditSkips.WithLabelValues(normalizeLabel(orgID)).Inc()
}
