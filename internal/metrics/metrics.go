// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sharedpot"

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	rpcTotal    *prometheus.CounterVec
	rpcDuration *prometheus.HistogramVec
	debts       prometheus.Histogram
	shortfall   *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rpcTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPCs handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency, by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		debts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settlement_debts",
			Help:      "Number of debts produced per settlement.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
		shortfall: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciliation_shortfall_cents_total",
			Help:      "Cents distributed to reconcile transactions, by the side topped up.",
		}, []string{"side"}),
	}
	reg.MustRegister(m.rpcTotal, m.rpcDuration, m.debts, m.shortfall)
	return m
}

// ObserveRPC records one finished RPC. code is "ok" or a connect code name.
func (m *Metrics) ObserveRPC(procedure, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.rpcTotal.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(d.Seconds())
}

// ObserveSettlement records the size of a computed debt list.
func (m *Metrics) ObserveSettlement(debts int) {
	if m == nil {
		return
	}
	m.debts.Observe(float64(debts))
}

// AddShortfall records cents added to side ("items" or "payments").
func (m *Metrics) AddShortfall(side string, cents int64) {
	if m == nil || cents <= 0 {
		return
	}
	m.shortfall.WithLabelValues(side).Add(float64(cents))
}
