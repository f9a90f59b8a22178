package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the routing module.
type Metrics struct {
	// Routing outcomes by decision
	DecisionOutcome *prometheus.CounterVec

	Emergencies prometheus.Counter

	// Consent gate denials by validation reason
	ConsentDenials *prometheus.CounterVec

	EvaluateLatency prometheus.Histogram
}

// New creates a new Metrics instance registered on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers routing metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DecisionOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "naijacare_routing_decisions_total",
			Help: "Total routing decisions by outcome",
		}, []string{"outcome"}),

		Emergencies: factory.NewCounter(prometheus.CounterOpts{
			Name: "naijacare_routing_emergencies_total",
			Help: "Total messages escalated on a red flag",
		}),

		ConsentDenials: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "naijacare_routing_consent_denials_total",
			Help: "Messages downgraded to NON_CLINICAL by the consent gate, by reason",
		}, []string{"reason"}),

		EvaluateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "naijacare_routing_evaluate_duration_seconds",
			Help:    "Duration of consent lookup, classification and audit append",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementOutcome records a routing outcome.
func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.DecisionOutcome.WithLabelValues(outcome).Inc()
	}
}

// IncrementEmergency records an escalation.
func (m *Metrics) IncrementEmergency() {
	if m != nil {
		m.Emergencies.Inc()
	}
}

// IncrementConsentDenial records a gate denial.
func (m *Metrics) IncrementConsentDenial(reason string) {
	if m != nil {
		m.ConsentDenials.WithLabelValues(reason).Inc()
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}
