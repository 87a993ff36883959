// Package metrics exposes Prometheus counters for admission, engagement and
// moderation outcomes. A nil *Metrics records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ewm"

type Metrics struct {
	requestsCreated  *prometheus.CounterVec
	requestBatches   *prometheus.CounterVec
	reactions        *prometheus.CounterVec
	eventTransitions *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requestsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_created_total",
			Help:      "Participation requests created, by initial status.",
		}, []string{"status"}),
		requestBatches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_batches_total",
			Help:      "Batch request decisions, by target status and outcome.",
		}, []string{"target", "outcome"}),
		reactions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reactions_total",
			Help:      "Reaction changes, by reaction type and operation.",
		}, []string{"reaction", "op"}),
		eventTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_transitions_total",
			Help:      "Applied event state actions.",
		}, []string{"action"}),
	}
}

func (m *Metrics) RequestCreated(status string) {
	if m == nil {
		return
	}
	m.requestsCreated.WithLabelValues(status).Inc()
}

// RequestBatch records a batch decision. err is the decision's result.
func (m *Metrics) RequestBatch(target string, err error) {
	if m == nil {
		return
	}
	m.requestBatches.WithLabelValues(target, outcome(err)).Inc()
}

// Reaction records an applied reaction change; op is "add" or "remove".
func (m *Metrics) Reaction(reaction, op string) {
	if m == nil {
		return
	}
	m.reactions.WithLabelValues(reaction, op).Inc()
}

func (m *Metrics) EventTransition(action string) {
	if m == nil {
		return
	}
	m.eventTransitions.WithLabelValues(action).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "rejected"
	}
	return "applied"
}
