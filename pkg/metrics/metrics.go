package metrics

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "staydesk"

// Metrics owns a private registry so several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	reservationEvents *prometheus.CounterVec
	overlapConflicts  *prometheus.CounterVec
	holdsExpired      *prometheus.CounterVec

	kafkaMessages *prometheus.CounterVec
	kafkaDuration *prometheus.HistogramVec
}

func New(service string) *Metrics {
	constLabels := prometheus.Labels{"service": service}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "requests_total",
			Help:        "HTTP requests by method, route and status code.",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "request_duration_seconds",
			Help:        "HTTP request latency.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		reservationEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "reservations",
			Name:        "events_total",
			Help:        "Reservation lifecycle events by unit kind and event type.",
			ConstLabels: constLabels,
		}, []string{"kind", "event"}),
		overlapConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "reservations",
			Name:        "overlap_conflicts_total",
			Help:        "Hold and reservation attempts rejected because the period was taken.",
			ConstLabels: constLabels,
		}, []string{"kind"}),
		holdsExpired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "reservations",
			Name:        "hold_confirm_expired_total",
			Help:        "Hold confirmations that arrived after the hold window.",
			ConstLabels: constLabels,
		}, []string{"kind"}),
		kafkaMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "kafka",
			Name:        "messages_total",
			Help:        "Kafka messages by direction (publish, consume) and result.",
			ConstLabels: constLabels,
		}, []string{"direction", "result"}),
		kafkaDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "kafka",
			Name:        "message_duration_seconds",
			Help:        "Kafka publish and handler latency.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"direction"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.reservationEvents,
		m.overlapConflicts,
		m.holdsExpired,
		m.kafkaMessages,
		m.kafkaDuration,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveHTTP(method, path string, status int, duration time.Duration) {
	route := RouteLabel(path)
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) ReservationEvent(kind, event string) {
	m.reservationEvents.WithLabelValues(kind, event).Inc()
}

func (m *Metrics) OverlapConflict(kind string) {
	m.overlapConflicts.WithLabelValues(kind).Inc()
}

func (m *Metrics) HoldConfirmExpired(kind string) {
	m.holdsExpired.WithLabelValues(kind).Inc()
}

func (m *Metrics) KafkaMessage(direction string, err error, duration time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.kafkaMessages.WithLabelValues(direction, result).Inc()
	m.kafkaDuration.WithLabelValues(direction).Observe(duration.Seconds())
}

var objectIDSegment = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// RouteLabel collapses ObjectID path segments to ":id" so label cardinality stays bounded.
func RouteLabel(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if objectIDSegment.MatchString(s) {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}
