// Package metrics exposes Prometheus metrics for the bridge: message
// throughput per operation, response outcomes, budget denials, and relay
// traffic.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the bridge's Prometheus collectors. A nil *Metrics is valid
// and records nothing, which keeps unit tests free of registry plumbing.
type Metrics struct {
	MessagesTotal  *prometheus.CounterVec
	ResponsesTotal *prometheus.CounterVec
	BudgetDenials  prometheus.Counter
	Connections    prometheus.Gauge
	RelayCalls     *prometheus.CounterVec
}

// New creates and registers the bridge metrics. A nil registerer uses the
// default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		MessagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_messages_total",
				Help: "Inbound bridge messages by operation kind",
			},
			[]string{"kind"},
		),
		ResponsesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_responses_total",
				Help: "Responses delivered to embedded apps by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		BudgetDenials: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bridge_budget_denials_total",
				Help: "Spend requests denied by the budget guard",
			},
		),
		Connections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bridge_connections",
				Help: "Active webview bridge connections",
			},
		),
		RelayCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_relay_calls_total",
				Help: "Relay API calls by method and status",
			},
			[]string{"method", "status"},
		),
	}
}

// RecordMessage counts an inbound message.
func (m *Metrics) RecordMessage(kind string) {
	if m == nil {
		return
	}
	m.MessagesTotal.WithLabelValues(kind).Inc()
}

// RecordResponse counts a delivered response. Outcome is "success",
// "failure", or "none" for responses that carry no outcome at all.
func (m *Metrics) RecordResponse(kind, outcome string) {
	if m == nil {
		return
	}
	m.ResponsesTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordDenial counts a budget guard denial.
func (m *Metrics) RecordDenial() {
	if m == nil {
		return
	}
	m.BudgetDenials.Inc()
}

// ConnectionOpened increments the connection gauge.
func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.Connections.Inc()
}

// ConnectionClosed decrements the connection gauge.
func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.Connections.Dec()
}

// RecordRelayCall counts a relay API call.
func (m *Metrics) RecordRelayCall(method, status string) {
	if m == nil {
		return
	}
	m.RelayCalls.WithLabelValues(method, status).Inc()
}
