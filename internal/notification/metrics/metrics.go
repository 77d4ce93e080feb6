package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for notification delivery.
type Metrics struct {
	Enqueued       *prometheus.CounterVec
	Dropped        prometheus.Counter
	Delivered      *prometheus.CounterVec
	Failed         *prometheus.CounterVec
	QueueDepth     prometheus.Gauge
	BreakerOpen    prometheus.Gauge
	DeliverLatency prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Enqueued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "estudios_notifications_enqueued_total",
			Help: "Notifications accepted into the delivery queue by kind",
		}, []string{"kind"}),
		Dropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "estudios_notifications_dropped_total",
			Help: "Notifications dropped because the delivery queue was full",
		}),
		Delivered: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "estudios_notifications_delivered_total",
			Help: "Notifications delivered by sink",
		}, []string{"sink"}),
		Failed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "estudios_notifications_failed_total",
			Help: "Notification delivery failures by sink",
		}, []string{"sink"}),
		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "estudios_notifications_queue_depth",
			Help: "Jobs waiting in the notification queue",
		}),
		BreakerOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "estudios_notifications_email_breaker_open",
			Help: "Email sink circuit state (0=closed, 1=open)",
		}),
		DeliverLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "estudios_notifications_deliver_seconds",
			Help:    "Time to deliver one notification job to every sink",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

func (m *Metrics) IncEnqueued(kind string) {
	if m == nil {
		return
	}
	m.Enqueued.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncDropped() {
	if m == nil {
		return
	}
	m.Dropped.Inc()
}

func (m *Metrics) IncDelivered(sink string) {
	if m == nil {
		return
	}
	m.Delivered.WithLabelValues(sink).Inc()
}

func (m *Metrics) IncFailed(sink string) {
	if m == nil {
		return
	}
	m.Failed.WithLabelValues(sink).Inc()
}

func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(n))
}

func (m *Metrics) SetBreakerOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerOpen.Set(1)
		return
	}
	m.BreakerOpen.Set(0)
}

func (m *Metrics) ObserveDeliver(seconds float64) {
	if m == nil {
		return
	}
	m.DeliverLatency.Observe(seconds)
}
