// Package metrics owns the Prometheus registry for the club service.
// Every recording method is safe to call on a nil *Metrics so components can
// be constructed without metrics in tests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pickleclub"

type Metrics struct {
	registry *prometheus.Registry

	walletTransactions *prometheus.CounterVec
	bookings           *prometheus.CounterVec
	registrations      *prometheus.CounterVec
	sweepSteps         *prometheus.CounterVec
	sweptBookings      prometheus.Counter
	httpRequests       *prometheus.HistogramVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		walletTransactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "transactions_total",
			Help:      "Wallet transactions written, by type and status.",
		}, []string{"type", "status"}),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "attempts_total",
			Help:      "Booking create attempts, by outcome.",
		}, []string{"outcome"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tournament",
			Name:      "registrations_total",
			Help:      "Tournament registration changes, by action.",
		}, []string{"action"}),
		sweepSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweeper",
			Name:      "steps_total",
			Help:      "Sweeper steps run, by step and result.",
		}, []string{"step", "result"}),
		sweptBookings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweeper",
			Name:      "cancelled_bookings_total",
			Help:      "Stale pending bookings cancelled by the sweeper.",
		}),
		httpRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency, by method and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "code"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.walletTransactions,
		m.bookings,
		m.registrations,
		m.sweepSteps,
		m.sweptBookings,
		m.httpRequests,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) WalletTransaction(txType, status string) {
	if m == nil {
		return
	}
	m.walletTransactions.WithLabelValues(txType, status).Inc()
}

func (m *Metrics) BookingAttempt(outcome string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Registration(action string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(action).Inc()
}

func (m *Metrics) SweepStep(step string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.sweepSteps.WithLabelValues(step, result).Inc()
}

func (m *Metrics) BookingsSwept(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sweptBookings.Add(float64(n))
}

func (m *Metrics) ObserveRequest(method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(code)).Observe(elapsed.Seconds())
}
