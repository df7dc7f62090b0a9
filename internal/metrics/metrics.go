package metrics

import (
	"net/http"
	"strconv"
	"sync"

	"campus_scheduler/internal/events"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "campus_scheduler"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		},
		[]string{"route", "code"},
	)

	bookingOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_operations_total",
			Help:      "Booking store operations by outcome.",
		},
		[]string{"op", "result"},
	)

	bookingConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Requests rejected because the slot overlaps an approved booking.",
		},
		[]string{"op"},
	)

	bookingEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_events_total",
			Help:      "Booking lifecycle events published.",
		},
		[]string{"type"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingOperations, bookingConflicts, bookingEvents)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func IncHTTP(route string, code int) {
	httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

func IncOperation(op, result string) {
	bookingOperations.WithLabelValues(op, result).Inc()
}

func IncConflict(op string) {
	bookingConflicts.WithLabelValues(op).Inc()
}

// SubscribeEvents counts every booking event published on bus.
func SubscribeEvents(bus *events.EventBus) {
	bus.Subscribe(func(e *events.Event) error {
		bookingEvents.WithLabelValues(e.Type).Inc()
		return nil
	}, events.AllBookingEvents...)
}
