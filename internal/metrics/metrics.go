// Package metrics exposes Prometheus collectors for the HTTP API, the chat
// bot and the appointment lifecycle.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
)

type ClinicMetrics struct {
	gatherer     prometheus.Gatherer
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	botUpdates   *prometheus.CounterVec
	appointments *prometheus.CounterVec
	transitions  *prometheus.CounterVec
}

// New registers the collectors on reg. A nil reg uses a private registry so
// tests can build several instances.
func New(reg *prometheus.Registry) *ClinicMetrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &ClinicMetrics{
		gatherer: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		botUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "bot",
			Name:      "updates_total",
			Help:      "Chat updates by kind and outcome",
		}, []string{"kind", "outcome"}),
		appointments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "appointments",
			Name:      "created_total",
			Help:      "Appointments created by channel",
		}, []string{"channel"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "appointments",
			Name:      "status_changes_total",
			Help:      "Appointment status changes",
		}, []string{"from", "to"}),
	}
	reg.MustRegister(m.httpRequests, m.httpLatency, m.botUpdates, m.appointments, m.transitions)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *ClinicMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records every request against its chi route pattern, so ids in
// paths do not explode the label set.
func (m *ClinicMetrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.httpLatency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (m *ClinicMetrics) ObserveBotUpdate(kind, outcome string) {
	if m == nil {
		return
	}
	m.botUpdates.WithLabelValues(kind, outcome).Inc()
}

func (m *ClinicMetrics) AppointmentCreated(a models.Appointment) {
	if m == nil {
		return
	}
	m.appointments.WithLabelValues(a.Channel).Inc()
}

func (m *ClinicMetrics) AppointmentStatusChanged(a models.Appointment, from string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, a.Status).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
