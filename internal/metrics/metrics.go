// Package metrics holds the Prometheus collectors for the selection engine.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fight_timeline"

type Metrics struct {
	transitions    *prometheus.CounterVec
	staleResponses *prometheus.CounterVec
	labelFallbacks prometheus.Counter
	activeSessions prometheus.Gauge
}

func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Selection state transitions by name and outcome.",
		}, []string{"transition", "outcome"}),
		staleResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_responses_total",
			Help:      "Fetch responses dropped because a newer transition superseded them.",
		}, []string{"slot"}),
		labelFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "label_fallbacks_total",
			Help:      "Labels anchored to the first fight because every candidate collided.",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Interactive chart sessions currently held in memory.",
		}),
	}

	for _, c := range []prometheus.Collector{m.transitions, m.staleResponses, m.labelFallbacks, m.activeSessions} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) Transition(name, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(name, outcome).Inc()
}

func (m *Metrics) Stale(slot string) {
	if m == nil {
		return
	}
	m.staleResponses.WithLabelValues(slot).Inc()
}

func (m *Metrics) LabelFallbacks(n int) {
	if m == nil || n == 0 {
		return
	}
	m.labelFallbacks.Add(float64(n))
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}
