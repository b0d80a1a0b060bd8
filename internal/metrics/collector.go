// Package metrics exposes the Prometheus collectors of the case engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the engine's Prometheus metrics. A nil *Collector records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	casesSubmitted     *prometheus.CounterVec
	statusTransitions  *prometheus.CounterVec
	messagesSent       *prometheus.CounterVec
	messagesMarkedRead prometheus.Counter

	notificationsDelivered *prometheus.CounterVec
	notificationsDropped   *prometheus.CounterVec
	notificationQueueDepth prometheus.Gauge

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewCollector registers every metric on reg. Pass prometheus.NewRegistry() in tests.
func NewCollector(reg *prometheus.Registry) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		gatherer: reg,

		casesSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crimereport_cases_submitted_total",
			Help: "Cases created, by routed department.",
		}, []string{"department"}),
		statusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crimereport_status_transitions_total",
			Help: "Status transitions applied, by target status.",
		}, []string{"status"}),
		messagesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crimereport_messages_sent_total",
			Help: "Thread messages sent, by side of the case.",
		}, []string{"side"}),
		messagesMarkedRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "crimereport_messages_marked_read_total",
			Help: "Thread messages flipped to read.",
		}),

		notificationsDelivered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crimereport_notifications_delivered_total",
			Help: "Notifications persisted to an inbox, by kind.",
		}, []string{"kind"}),
		notificationsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crimereport_notifications_dropped_total",
			Help: "Notifications discarded, by reason.",
		}, []string{"reason"}),
		notificationQueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "crimereport_notification_queue_depth",
			Help: "Notifications waiting for a dispatcher worker.",
		}),

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crimereport_http_requests_total",
			Help: "HTTP requests served.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crimereport_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (c *Collector) CaseSubmitted(department string) {
	if c == nil {
		return
	}
	c.casesSubmitted.WithLabelValues(department).Inc()
}

func (c *Collector) StatusChanged(status string) {
	if c == nil {
		return
	}
	c.statusTransitions.WithLabelValues(status).Inc()
}

// MessageSent counts a message; side is "citizen" or "official".
func (c *Collector) MessageSent(side string) {
	if c == nil {
		return
	}
	c.messagesSent.WithLabelValues(side).Inc()
}

func (c *Collector) MessagesMarkedRead(n int64) {
	if c == nil || n <= 0 {
		return
	}
	c.messagesMarkedRead.Add(float64(n))
}

func (c *Collector) NotificationDelivered(kind string) {
	if c == nil {
		return
	}
	c.notificationsDelivered.WithLabelValues(kind).Inc()
}

// NotificationDropped counts a lost notification; reason is "queue_full" or "store_failed".
func (c *Collector) NotificationDropped(reason string) {
	if c == nil {
		return
	}
	c.notificationsDropped.WithLabelValues(reason).Inc()
}

func (c *Collector) SetQueueDepth(n int) {
	if c == nil {
		return
	}
	c.notificationQueueDepth.Set(float64(n))
}

func (c *Collector) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
