package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pscheid92/founderswall/internal/app"
	"github.com/pscheid92/founderswall/internal/domain"
)

// ToggleMetrics counts applied choice toggles and aggregate recounts.
type ToggleMetrics struct {
	Applied   *prometheus.CounterVec
	Recounted *prometheus.CounterVec
}

var _ app.ToggleRecorder = (*ToggleMetrics)(nil)

func NewToggleMetrics(reg prometheus.Registerer) *ToggleMetrics {
	m := &ToggleMetrics{
		Applied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "toggle",
			Name:      "applied_total",
			Help:      "Total number of applied toggles, by kind and mutation.",
		}, []string{"kind", "mutation"}),
		Recounted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "toggle",
			Name:      "aggregate_recounts_total",
			Help:      "Total number of aggregates recounted after a consistency mismatch, by kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(m.Applied, m.Recounted)
	return m
}

func (m *ToggleMetrics) ToggleApplied(kind domain.ChoiceKind, mutation string) {
	m.Applied.WithLabelValues(string(kind), mutation).Inc()
}

func (m *ToggleMetrics) AggregateRecounted(kind domain.ChoiceKind) {
	m.Recounted.WithLabelValues(string(kind)).Inc()
}
