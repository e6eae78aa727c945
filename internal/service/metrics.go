package service

import (
	"github.com/alimikegami/point-of-sales/storefront-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	reconciliations *prometheus.CounterVec
	posFailures     prometheus.Counter
}

func CreateMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		reconciliations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_reconciliations_total",
			Help: "Payment reconciliations by signal source and outcome.",
		}, []string{"source", "outcome"}),
		posFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_pos_recording_failures_total",
			Help: "Paid orders whose sale could not be recorded at the point of sale.",
		}),
	}
}

func (m *Metrics) observeReconciliation(source string, outcome domain.ReconciliationOutcome) {
	m.reconciliations.WithLabelValues(source, string(outcome)).Inc()
}

func (m *Metrics) posRecordingFailed() {
	m.posFailures.Inc()
}
