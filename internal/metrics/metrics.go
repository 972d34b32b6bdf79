// Package metrics exposes Prometheus instrumentation for the resolution
// pipeline. Recording before Init is a no-op.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type collectors struct {
	tierAttempts     *prometheus.CounterVec
	recordsDropped   *prometheus.CounterVec
	overrideFallback *prometheus.CounterVec
	breakerOpen      *prometheus.GaugeVec
	resolveDuration  prometheus.Histogram
}

var (
	active   *collectors
	initOnce sync.Once
)

func newCollectors() *collectors {
	return &collectors{
		tierAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leads_tier_attempts_total",
			Help: "Retrieval tier attempts by source, tier and outcome",
		}, []string{"source", "tier", "outcome"}),
		recordsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leads_records_dropped_total",
			Help: "Raw records dropped by the normalizer",
		}, []string{"source"}),
		overrideFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leads_override_fallback_total",
			Help: "Override store operations served by the secondary store",
		}, []string{"op"}),
		breakerOpen: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "leads_tier_breaker_open",
			Help: "1 while a tier's circuit breaker is skipping it",
		}, []string{"source", "tier"}),
		resolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "leads_resolve_duration_seconds",
			Help:    "Wall time of a full resolution run",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Init registers the collectors with reg (prometheus.DefaultRegisterer when
// nil). Must be called once at startup; later calls are ignored.
func Init(reg prometheus.Registerer) {
	initOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		c := newCollectors()
		reg.MustRegister(c.tierAttempts, c.recordsDropped, c.overrideFallback, c.breakerOpen, c.resolveDuration)
		active = c
	})
}

// RecordTierAttempt counts one tier attempt.
func RecordTierAttempt(source, tier, outcome string) {
	if active == nil {
		return
	}
	active.tierAttempts.WithLabelValues(source, tier, outcome).Inc()
}

// RecordDropped counts records dropped during normalization.
func RecordDropped(source string, n int) {
	if active == nil || n <= 0 {
		return
	}
	active.recordsDropped.WithLabelValues(source).Add(float64(n))
}

// RecordOverrideFallback counts a read or write served by the secondary store.
func RecordOverrideFallback(op string) {
	if active == nil {
		return
	}
	active.overrideFallback.WithLabelValues(op).Inc()
}

// SetBreakerOpen records whether a tier's breaker is open. Half-open counts
// as open: only a single trial call reaches the tier.
func SetBreakerOpen(source, tier string, open bool) {
	if active == nil {
		return
	}
	v := 0.0
	if open {
		v = 1
	}
	active.breakerOpen.WithLabelValues(source, tier).Set(v)
}

// ObserveResolve records the duration of a resolution run.
func ObserveResolve(d time.Duration) {
	if active == nil {
		return
	}
	active.resolveDuration.Observe(d.Seconds())
}
