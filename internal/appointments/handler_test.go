package appointments

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/logging"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/validation"
)

func newTestRouter(t *testing.T) (*fixture, http.Handler) {
	t.Helper()
	f := newFixture(t)
	h := NewHandler(f.svc, validation.New(), logging.Discard())

	r := chi.NewRouter()
	r.Post("/api/appointments", h.Create)
	r.Get("/api/appointments/token/{token}", h.GetByToken)
	r.Post("/api/bot/appointments", h.CreateFromBot)
	r.Get("/api/bot/appointments/{telegramID}", h.ListByTelegram)
	r.Get("/api/admin/appointments", h.AdminList)
	r.Get("/api/admin/appointments/{id}", h.AdminGet)
	r.Patch("/api/admin/appointments/{id}/status", h.AdminUpdateStatus)
	r.Patch("/api/admin/appointments/{id}/reschedule", h.AdminReschedule)
	r.Delete("/api/admin/appointments/{id}", h.AdminCancel)
	return f, r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const webBody = `{"name":"Jane Doe","email":"jane@example.com","phone":"9876543210",
	"specialization":"General Dentistry","doctor_id":1,"date":"2025-03-10","time":"09:00"}`

func TestHandlerCreateWeb(t *testing.T) {
	_, router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/appointments", webBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created Created
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.Success)
	assert.Regexp(t, `^APT-[A-Z0-9]{16}$`, created.Token)
	assert.Equal(t, models.AppointmentStatusPending, created.Appointment.Status)

	rec = do(t, router, http.MethodPost, "/api/appointments", webBody)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/appointments/token/"+strings.ToLower(created.Token), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodGet, "/api/appointments/token/APT-AAAAAAAAAAAAAAAA", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerTokenIsNotTheRowID(t *testing.T) {
	_, router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/appointments", webBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created Created
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, int64(1), created.Appointment.ID)

	for _, guess := range []string{"APT000001", "apt000001", "APT-0000000000000001"} {
		rec = do(t, router, http.MethodGet, "/api/appointments/token/"+guess, "")
		assert.NotEqual(t, http.StatusOK, rec.Code, guess)
		assert.NotContains(t, rec.Body.String(), "Jane Doe", guess)
	}
}

func TestHandlerCreateErrors(t *testing.T) {
	_, router := newTestRouter(t)
	tests := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{"invalid json", `{"name":`, http.StatusBadRequest, ""},
		{"missing phone", `{"name":"Jane","specialization":"X","date":"2025-03-10","time":"09:00"}`, http.StatusBadRequest, "patientPhone"},
		{"bad age", `{"name":"Jane","age":"old"}`, http.StatusBadRequest, "patientAge"},
		{"unknown doctor", `{"name":"Jane","phone":"9","specialization":"X","doctorId":99,"date":"2025-03-10","time":"09:00"}`, http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/appointments", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			if tt.field != "" {
				var body struct {
					Details map[string]string `json:"details"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Contains(t, body.Details, tt.field)
			}
		})
	}
}

func TestHandlerBotFlow(t *testing.T) {
	_, router := newTestRouter(t)

	body := `{"patient_data":{"name":"Ravi","phone":"9000000000"},"telegram_id":"77",
		"service":"Orthodontics","doctor":"Dr. Vijayapriya K","appointment_datetime":"2025-03-10T10:00:00"}`
	rec := do(t, router, http.MethodPost, "/api/bot/appointments", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created Created
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, models.AppointmentStatusConfirmed, created.Appointment.Status)
	assert.Equal(t, models.ChannelChat, created.Appointment.Channel)

	rec = do(t, router, http.MethodGet, "/api/bot/appointments/77", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var items []models.Appointment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "10:00", items[0].Time)
}

func TestHandlerAdminLifecycle(t *testing.T) {
	_, router := newTestRouter(t)
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/appointments", webBody).Code)

	rec := do(t, router, http.MethodPatch, "/api/admin/appointments/1/status", `{"status":"completed"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "pending cannot jump to completed")

	rec = do(t, router, http.MethodPatch, "/api/admin/appointments/1/status?override=true", `{"status":"completed"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPatch, "/api/admin/appointments/1/status", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPatch, "/api/admin/appointments/1/status", `{"status":"pending","override":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPatch, "/api/admin/appointments/1/reschedule", `{"appointmentDate":"2025-03-11","appointmentTime":"10:00"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var moved models.Appointment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &moved))
	assert.Equal(t, "2025-03-11", moved.Date)

	rec = do(t, router, http.MethodDelete, "/api/admin/appointments/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/admin/appointments?status=cancelled", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items []models.Appointment `json:"items"`
		Total int64                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Total)

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/admin/appointments?doctor_id=x", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/admin/appointments/abc", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/admin/appointments/42", "").Code)
}
