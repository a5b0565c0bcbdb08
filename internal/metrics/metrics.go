package metrics

import (
	"strconv"
	"sync"
	"time"

	"touragency/internal/events"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tour_agency"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		},
		[]string{"route", "method", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	activityTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_total",
			Help:      "Recorded user actions by action code.",
		},
		[]string{"action"},
	)

	accountEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "account_events_total",
			Help:      "Registrations, logins and logouts by event type.",
		},
		[]string{"event"},
	)

	bookingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Bookings created, by initial status.",
		},
		[]string{"status"},
	)

	throttled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "throttled_requests_total",
			Help:      "Requests rejected by attempt or rate limits.",
		},
		[]string{"scope"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, activityTotal, accountEvents, bookingsTotal, throttled)
	})
}

// ObserveHTTP records one finished request.
func ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func IncActivity(action string) {
	activityTotal.WithLabelValues(action).Inc()
}

// IncThrottled counts a rejection; scope is "login", "register" or "api".
func IncThrottled(scope string) {
	throttled.WithLabelValues(scope).Inc()
}

// CountActivity is an event bus handler feeding activity_total.
func CountActivity(event *events.Event) error {
	var payload events.ActivityPayload
	if err := event.Decode(&payload); err != nil {
		return err
	}
	IncActivity(payload.Action)
	return nil
}

// CountAccountEvent counts user_registered, user_logged_in and user_logged_out.
func CountAccountEvent(event *events.Event) error {
	accountEvents.WithLabelValues(event.Type).Inc()
	return nil
}

// CountBooking is an event bus handler feeding bookings_total.
func CountBooking(event *events.Event) error {
	var payload events.BookingPayload
	if err := event.Decode(&payload); err != nil {
		return err
	}
	bookingsTotal.WithLabelValues(payload.Status).Inc()
	return nil
}

// Subscribe attaches the metric handlers to bus.
func Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventActivity, CountActivity)
	bus.Subscribe(events.EventTourBooked, CountBooking)
	for _, t := range []string{events.EventUserRegistered, events.EventUserLoggedIn, events.EventUserLoggedOut} {
		bus.Subscribe(t, CountAccountEvent)
	}
}
