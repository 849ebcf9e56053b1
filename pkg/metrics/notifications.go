package metrics

import "github.com/prometheus/client_golang/prometheus"

// NotificationMetrics tracks the in-process status event bus.
type NotificationMetrics struct {
	dropped     prometheus.Counter
	subscribers prometheus.Gauge
}

// NewNotificationMetrics registers the bus metrics on the provided registerer.
func NewNotificationMetrics(reg prometheus.Registerer) *NotificationMetrics {
	if reg == nil {
		return &NotificationMetrics{}
	}
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ocl_status_events_dropped_total",
		Help: "Status events dropped because a subscriber buffer was full.",
	})
	subscribers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ocl_status_event_subscribers",
		Help: "Currently attached status event subscribers.",
	})
	reg.MustRegister(dropped, subscribers)
	return &NotificationMetrics{dropped: dropped, subscribers: subscribers}
}

// IncDropped counts one undelivered event.
func (m *NotificationMetrics) IncDropped() {
	if m == nil || m.dropped == nil {
		return
	}
	m.dropped.Inc()
}

// SetSubscribers reports the current subscriber count.
func (m *NotificationMetrics) SetSubscribers(n int) {
	if m == nil || m.subscribers == nil {
		return
	}
	m.subscribers.Set(float64(n))
}
