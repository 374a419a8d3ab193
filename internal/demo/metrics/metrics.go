// Package metrics provides Prometheus metrics for the demo gateways.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the gateway outcome metrics.
type Metrics struct {
	PagedQueriesTotal   *prometheus.CounterVec // found, invalid_page, past_end, error
	StatesReturnedTotal prometheus.Counter
	WorkflowsTotal      *prometheus.CounterVec // completed, no_counterparty, error
	WorkflowWaitSeconds prometheus.Histogram
	PeersListed         prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PagedQueriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledgergate_paged_queries_total",
			Help: "Paged hello-state queries by outcome",
		}, []string{"outcome"}),

		StatesReturnedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledgergate_states_returned_total",
			Help: "Hello states returned to clients",
		}),

		WorkflowsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledgergate_workflows_total",
			Help: "Triggered workflows by terminal outcome",
		}, []string{"outcome"}),

		WorkflowWaitSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledgergate_workflow_wait_seconds",
			Help:    "Time from starting a workflow to its terminal outcome",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),

		PeersListed: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledgergate_peers_listed",
			Help: "Number of peers returned by the last node listing",
		}),
	}
}

func (m *Metrics) RecordPagedQuery(outcome string, states int) {
	m.PagedQueriesTotal.WithLabelValues(outcome).Inc()
	m.StatesReturnedTotal.Add(float64(states))
}

func (m *Metrics) RecordWorkflow(outcome string, waitSeconds float64) {
	m.WorkflowsTotal.WithLabelValues(outcome).Inc()
	m.WorkflowWaitSeconds.Observe(waitSeconds)
}

func (m *Metrics) SetPeersListed(n int) {
	m.PeersListed.Set(float64(n))
}
