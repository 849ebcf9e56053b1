package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SettlementMetrics records aggregation latency and outcomes.
type SettlementMetrics struct {
	duration *prometheus.HistogramVec
	failure  *prometheus.CounterVec
	invoices prometheus.Counter
}

// NewSettlementMetrics registers the settlement metrics on the provided registerer.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ocl_settlement_query_duration_seconds",
		Help:    "Duration of settlement aggregations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ocl_settlement_failures_total",
		Help: "Settlement aggregations that failed on a dependency.",
	}, []string{"kind"})
	invoices := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ocl_invoices_issued_total",
		Help: "Corporate invoices persisted.",
	})
	reg.MustRegister(duration, failure, invoices)
	return &SettlementMetrics{
		duration: duration,
		failure:  failure,
		invoices: invoices,
	}
}

// ObserveDuration records the duration for the named aggregation.
func (m *SettlementMetrics) ObserveDuration(kind string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(kind, "unknown")).Observe(d.Seconds())
}

// IncFailure increments the failure counter for the named aggregation.
func (m *SettlementMetrics) IncFailure(kind string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(kind, "unknown")).Inc()
}

// IncInvoiceIssued counts a persisted invoice.
func (m *SettlementMetrics) IncInvoiceIssued() {
	if m == nil || m.invoices == nil {
		return
	}
	m.invoices.Inc()
}
