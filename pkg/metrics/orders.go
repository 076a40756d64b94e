package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records order lifecycle and dispatch publish outcomes.
type OrderMetrics struct {
	created  *prometheus.CounterVec
	rejected *prometheus.CounterVec
	status   *prometheus.CounterVec
	dispatch *prometheus.CounterVec
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders accepted and committed.",
	}, []string{"machine"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_rejected_total",
		Help: "Orders refused before commit, by error code.",
	}, []string{"code"})
	status := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Applied order status transitions.",
	}, []string{"to"})
	dispatch := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_publish_total",
		Help: "Dispatch instruction publish attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(created, rejected, status, dispatch)
	return &OrderMetrics{
		created:  created,
		rejected: rejected,
		status:   status,
		dispatch: dispatch,
	}
}

// IncCreated increments the created counter for the machine.
func (o *OrderMetrics) IncCreated(machine string) {
	if o == nil || o.created == nil {
		return
	}
	o.created.WithLabelValues(normalizeLabel(machine)).Inc()
}

// IncRejected increments the rejected counter for the error code.
func (o *OrderMetrics) IncRejected(code string) {
	if o == nil || o.rejected == nil {
		return
	}
	o.rejected.WithLabelValues(normalizeLabel(code)).Inc()
}

// IncTransition increments the transition counter for the target status.
func (o *OrderMetrics) IncTransition(to string) {
	if o == nil || o.status == nil {
		return
	}
	o.status.WithLabelValues(normalizeLabel(to)).Inc()
}

// IncDispatch increments the dispatch counter for the outcome (ok/error).
func (o *OrderMetrics) IncDispatch(outcome string) {
	if o == nil || o.dispatch == nil {
		return
	}
	o.dispatch.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
