// Package metrics provides Prometheus metrics for the node RPC client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the node RPC client metrics.
type Metrics struct {
	// Calls by operation and outcome ("ok" or an error category)
	RPCCallsTotal *prometheus.CounterVec

	// Round-trip latency by operation
	RPCDurationSeconds *prometheus.HistogramVec

	// Session logins performed against the node
	SessionLoginsTotal prometheus.Counter

	// Flows started and not yet resolved by this process
	FlowsInFlight prometheus.Gauge

	// 1 while consecutive node failures hold the breaker open
	NodeCircuitOpen prometheus.Gauge
}

// New registers the metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RPCCallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledgergate_node_rpc_calls_total",
			Help: "Total node RPC calls by operation and outcome",
		}, []string{"op", "outcome"}),

		RPCDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledgergate_node_rpc_duration_seconds",
			Help:    "Node RPC round-trip latency by operation",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"op"}),

		SessionLoginsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledgergate_node_rpc_session_logins_total",
			Help: "Total RPC session logins performed against the node",
		}),

		FlowsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledgergate_node_flows_in_flight",
			Help: "Flows started by this process whose result is still awaited",
		}),

		NodeCircuitOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledgergate_node_circuit_open",
			Help: "Whether recent node RPC calls keep failing (1) or not (0)",
		}),
	}
}

// ObserveCall records one RPC round trip.
func (m *Metrics) ObserveCall(op, outcome string, durationSeconds float64) {
	m.RPCCallsTotal.WithLabelValues(op, outcome).Inc()
	m.RPCDurationSeconds.WithLabelValues(op).Observe(durationSeconds)
}

func (m *Metrics) IncrementLogins() {
	m.SessionLoginsTotal.Inc()
}

func (m *Metrics) FlowStarted() {
	m.FlowsInFlight.Inc()
}

func (m *Metrics) FlowResolved() {
	m.FlowsInFlight.Dec()
}

func (m *Metrics) SetCircuitOpen(open bool) {
	if open {
		m.NodeCircuitOpen.Set(1)
		return
	}
	m.NodeCircuitOpen.Set(0)
}
