// Package metrics exposes Prometheus collectors for event ingestion,
// automation firings, action dispatch, flow-run transitions and worker
// submissions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "flowops"

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	EventsIngested     *prometheus.CounterVec
	AutomationsFired   *prometheus.CounterVec
	ActionsDispatched  *prometheus.CounterVec
	FlowRunTransitions *prometheus.CounterVec
	WorkerSubmissions  *prometheus.CounterVec
	WorkerInFlight     *prometheus.GaugeVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		EventsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "events_ingested_total", Help: "Events accepted by ingestion.",
		}, []string{"workspace"}),
		AutomationsFired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "automations_fired_total", Help: "Automation trigger firings.",
		}, []string{"posture"}),
		ActionsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "actions_dispatched_total", Help: "Automation actions dispatched.",
		}, []string{"type", "result"}),
		FlowRunTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "flow_run_state_transitions_total", Help: "Flow run state transitions.",
		}, []string{"state"}),
		WorkerSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "worker_submissions_total", Help: "Flow runs submitted to infrastructure.",
		}, []string{"pool", "result"}),
		WorkerInFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "worker_in_flight", Help: "Flow runs currently submitted by a worker.",
		}, []string{"pool"}),
	}
	m.registry.MustRegister(
		m.EventsIngested, m.AutomationsFired, m.ActionsDispatched,
		m.FlowRunTransitions, m.WorkerSubmissions, m.WorkerInFlight,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) EventIngested(workspace string) {
	if m != nil {
		m.EventsIngested.WithLabelValues(workspace).Inc()
	}
}

func (m *Metrics) AutomationFired(posture string) {
	if m != nil {
		m.AutomationsFired.WithLabelValues(posture).Inc()
	}
}

func (m *Metrics) ActionDispatched(actionType string, err error) {
	if m != nil {
		m.ActionsDispatched.WithLabelValues(actionType, result(err)).Inc()
	}
}

func (m *Metrics) FlowRunTransition(state string) {
	if m != nil {
		m.FlowRunTransitions.WithLabelValues(state).Inc()
	}
}

func (m *Metrics) WorkerSubmitted(pool string, err error) {
	if m != nil {
		m.WorkerSubmissions.WithLabelValues(pool, result(err)).Inc()
	}
}

// WorkerTrack increments the in-flight gauge and returns its decrement.
func (m *Metrics) WorkerTrack(pool string) func() {
	if m == nil {
		return func() {}
	}
	g := m.WorkerInFlight.WithLabelValues(pool)
	g.Inc()
	return g.Dec
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
