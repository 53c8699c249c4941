// Package prom exports cache hook events as Prometheus counters.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/unicache"
	c "github.com/unkn0wn-root/unicache/codec"
)

// Hooks counts hook events. Keys are never used as label values.
type Hooks struct {
	SetRejected    prometheus.Counter
	ProviderErrors *prometheus.CounterVec
	DecodeFailures *prometheus.CounterVec
	Flushes        *prometheus.CounterVec
	CounterResets  prometheus.Counter
}

var _ unicache.Hooks = (*Hooks)(nil)

// New creates and registers the collectors with reg. An empty namespace
// defaults to "unicache".
func New(reg prometheus.Registerer, namespace string) *Hooks {
	if namespace == "" {
		namespace = "unicache"
	}
	h := &Hooks{
		SetRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_set_rejected_total",
			Help:      "Writes the provider declined to store.",
		}),

		ProviderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Provider calls that returned an error.",
		}, []string{"op"}),

		DecodeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_failures_total",
			Help:      "Stored values that could not be decoded.",
		}, []string{"serializer"}),

		Flushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flushes_total",
			Help:      "Successful provider flushes.",
		}, []string{"prefix"}),

		CounterResets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "counter_resets_total",
			Help:      "Counters that held a non-numeric value and restarted from zero.",
		}),
	}

	reg.MustRegister(
		h.SetRejected,
		h.ProviderErrors,
		h.DecodeFailures,
		h.Flushes,
		h.CounterResets,
	)
	return h
}

func (h *Hooks) ProviderSetRejected(string) { h.SetRejected.Inc() }
func (h *Hooks) ProviderError(op, _ string, _ error) {
	h.ProviderErrors.WithLabelValues(op).Inc()
}
func (h *Hooks) DecodeFailed(_ string, tag c.Tag, _ error) {
	h.DecodeFailures.WithLabelValues(string(tag)).Inc()
}
func (h *Hooks) Flushed(prefix string) { h.Flushes.WithLabelValues(prefix).Inc() }
func (h *Hooks) CounterReset(string)   { h.CounterResets.Inc() }
