// Package metrics provides instrumentation for the async decorator, backed
// by github.com/prometheus/client_golang. No HTTP endpoint is served here;
// this registry only backs the pending/dropped gauge and counter the
// async decorator already tracks internally, mirroring
// _examples/mdzesseis-log_capturer_go/internal/metrics/metrics.go's
// registration shape. cmd/logpipe-demo registers it against a private
// prometheus registry and does not serve it over HTTP.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry exposes the gauge and counter the async decorator updates. It
// implements decorator.Instrumentation.
type Registry struct {
	Pending *prometheus.GaugeVec
	Dropped *prometheus.CounterVec
}

// NewRegistry constructs a Registry and registers its collectors with reg.
// Pass prometheus.NewRegistry() for test isolation, or nil to use the
// default global registry.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		Pending: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "logpipe",
			Subsystem: "async",
			Name:      "pending_records",
			Help:      "Number of records currently queued in an async decorator.",
		}, []string{"writer"}),
		Dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "logpipe",
			Subsystem: "async",
			Name:      "dropped_records_total",
			Help:      "Cumulative records discarded by an async decorator's overflow policy.",
		}, []string{"writer"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(r.Pending, r.Dropped)
	return r
}

// SetPending implements decorator.Instrumentation.
func (r *Registry) SetPending(writerName string, n int64) {
	r.Pending.WithLabelValues(writerName).Set(float64(n))
}

// AddDropped implements decorator.Instrumentation.
func (r *Registry) AddDropped(writerName string, n int64) {
	r.Dropped.WithLabelValues(writerName).Add(float64(n))
}
