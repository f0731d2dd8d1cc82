package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New(prometheus.NewRegistry())
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/doctors/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/doctors/"+id, nil))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/doctors/{id}", "404")))
}

func TestAppointmentHooks(t *testing.T) {
	m := New(nil)
	m.AppointmentCreated(models.Appointment{Channel: models.ChannelChat})
	m.AppointmentCreated(models.Appointment{Channel: models.ChannelChat})
	m.AppointmentStatusChanged(models.Appointment{Status: models.AppointmentStatusCancelled}, models.AppointmentStatusConfirmed)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.appointments.WithLabelValues(models.ChannelChat)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("confirmed", "cancelled")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New(nil)
	m.ObserveBotUpdate("callback", "ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `clinic_bot_updates_total{kind="callback",outcome="ok"} 1`))
}

func TestNilSafe(t *testing.T) {
	var m *ClinicMetrics
	m.ObserveBotUpdate("message", "ok")
	m.AppointmentCreated(models.Appointment{})
	m.AppointmentStatusChanged(models.Appointment{}, "pending")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	assert.NotNil(t, m.Middleware(next))
}
