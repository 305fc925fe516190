package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pscheid92/founderswall/internal/cache"
)

// CacheMetrics holds Prometheus metrics for the read caches, labelled by cache name.
type CacheMetrics struct {
	Hits          *prometheus.CounterVec
	Misses        *prometheus.CounterVec
	Invalidations *prometheus.CounterVec
}

var _ cache.Recorder = (*CacheMetrics)(nil)

// NewCacheMetrics creates and registers cache metrics on the given registry.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		Hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of read cache hits, by cache.",
		}, []string{"cache"}),
		Misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of read cache misses, by cache.",
		}, []string{"cache"}),
		Invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Total number of read cache invalidations, by cache.",
		}, []string{"cache"}),
	}

	reg.MustRegister(m.Hits, m.Misses, m.Invalidations)
	return m
}

func (m *CacheMetrics) CacheHit(name string)         { m.Hits.WithLabelValues(name).Inc() }
func (m *CacheMetrics) CacheMiss(name string)        { m.Misses.WithLabelValues(name).Inc() }
func (m *CacheMetrics) CacheInvalidated(name string) { m.Invalidations.WithLabelValues(name).Inc() }
