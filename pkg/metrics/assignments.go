package metrics

import "github.com/prometheus/client_golang/prometheus"

// AssignmentMetrics records assignment lifecycle activity.
type AssignmentMetrics struct {
	transitions *prometheus.CounterVec
	conflicts   *prometheus.CounterVec
}

// NewAssignmentMetrics registers the assignment metrics on the provided registerer.
func NewAssignmentMetrics(reg prometheus.Registerer) *AssignmentMetrics {
	if reg == nil {
		return &AssignmentMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ocl_assignment_transitions_total",
		Help: "Persisted assignment status transitions.",
	}, []string{"from", "to"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ocl_assignment_rejections_total",
		Help: "Assignment updates rejected by the transition guard or version check.",
	}, []string{"reason"})
	reg.MustRegister(transitions, conflicts)
	return &AssignmentMetrics{
		transitions: transitions,
		conflicts:   conflicts,
	}
}

// IncTransition counts a persisted transition. Creation uses an empty from.
func (m *AssignmentMetrics) IncTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from, "none"), normalizeLabel(to, "unknown")).Inc()
}

// IncRejected counts a refused update.
func (m *AssignmentMetrics) IncRejected(reason string) {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.WithLabelValues(normalizeLabel(reason, "unknown")).Inc()
}

func normalizeLabel(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
