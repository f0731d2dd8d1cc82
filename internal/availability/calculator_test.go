package availability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/apperr"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/logging"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
)

type fakeDoctors map[int64]models.Doctor

func (f fakeDoctors) Get(ctx context.Context, id int64) (models.Doctor, error) {
	d, ok := f[id]
	if !ok {
		return models.Doctor{}, apperr.NotFound("doctor", "")
	}
	return d, nil
}

type fakeBookings []models.Appointment

func (f fakeBookings) live(doctorID int64, date string) []models.Appointment {
	out := []models.Appointment{}
	for _, a := range f {
		if a.DoctorID != nil && *a.DoctorID == doctorID && a.Date == date && a.Status != models.AppointmentStatusCancelled {
			out = append(out, a)
		}
	}
	return out
}

func (f fakeBookings) ActiveTimes(ctx context.Context, doctorID int64, date string) ([]string, error) {
	times := []string{}
	for _, a := range f.live(doctorID, date) {
		times = append(times, a.Time)
	}
	return times, nil
}

func (f fakeBookings) IsTaken(ctx context.Context, doctorID int64, date, clock string, excludeID int64) (bool, error) {
	for _, a := range f.live(doctorID, date) {
		if a.Time == clock && a.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func ptr(v int64) *int64 { return &v }

func booking(id, doctorID int64, date, clock, status string) models.Appointment {
	return models.Appointment{ID: id, DoctorID: ptr(doctorID), Date: date, Time: clock, Status: status}
}

var clinicDoctors = fakeDoctors{1: {ID: 1, Name: "Kannan S"}, 2: {ID: 2, Name: "Vijayapriya K"}}

func TestSlotsClosedDayIsEmptyForEveryDoctor(t *testing.T) {
	calc := NewCalculator(clinicDoctors, fakeBookings{}, time.UTC)
	for _, date := range []string{"2025-03-09", "2025-03-16", "2026-01-04"} {
		for id := range clinicDoctors {
			slots, err := calc.Slots(context.Background(), id, date)
			require.NoError(t, err)
			assert.NotNil(t, slots)
			assert.Empty(t, slots, "date %s doctor %d", date, id)
		}
	}
}

func TestSlotsTemplateLength(t *testing.T) {
	calc := NewCalculator(clinicDoctors, fakeBookings{}, time.UTC)
	tests := []struct {
		date string
		want int
	}{
		{"2025-03-10", 12}, // Monday
		{"2025-03-12", 12},
		{"2025-03-14", 12}, // Friday
		{"2025-03-15", 8},  // Saturday
		{"2025-03-22", 8},
	}
	for _, tt := range tests {
		slots, err := calc.Slots(context.Background(), 1, tt.date)
		require.NoError(t, err)
		assert.Len(t, slots, tt.want, tt.date)
		for _, s := range slots {
			assert.True(t, s.Available)
		}
	}
}

func TestSlotsMarksExactlyTheLiveBookings(t *testing.T) {
	bookings := fakeBookings{
		booking(1, 1, "2025-03-10", "09:00", models.AppointmentStatusPending),
		booking(2, 1, "2025-03-10", "11:00", models.AppointmentStatusConfirmed),
		booking(3, 1, "2025-03-10", "15:00", models.AppointmentStatusCompleted),
		booking(4, 1, "2025-03-10", "16:00", models.AppointmentStatusCancelled),
		booking(5, 2, "2025-03-10", "10:00", models.AppointmentStatusConfirmed),
		booking(6, 1, "2025-03-11", "10:00", models.AppointmentStatusConfirmed),
	}
	calc := NewCalculator(clinicDoctors, bookings, time.UTC)

	slots, err := calc.Slots(context.Background(), 1, "2025-03-10")
	require.NoError(t, err)
	require.Len(t, slots, 12)

	unavailable := []string{}
	for _, s := range slots {
		if !s.Available {
			unavailable = append(unavailable, s.Time)
		}
	}
	assert.Equal(t, []string{"09:00", "11:00", "15:00"}, unavailable)

	free, err := calc.Available(context.Background(), 1, "2025-03-10")
	require.NoError(t, err)
	assert.Len(t, free, 9)
	assert.Contains(t, free, "16:00", "cancelled bookings never hold a slot")
}

func TestSlotsHasNoDateRangeLimit(t *testing.T) {
	now := time.Now().UTC()
	far := now.AddDate(0, 0, 400)
	for far.Weekday() == time.Sunday {
		far = far.AddDate(0, 0, 1)
	}
	calc := NewCalculator(clinicDoctors, fakeBookings{}, time.UTC)

	slots, err := calc.Slots(context.Background(), 1, far.Format("2006-01-02"))
	require.NoError(t, err)
	assert.NotEmpty(t, slots)
}

func TestSlotsErrors(t *testing.T) {
	calc := NewCalculator(clinicDoctors, fakeBookings{}, time.UTC)

	for _, bad := range []string{"", "10-03-2025", "2025-02-30", "tomorrow"} {
		_, err := calc.Slots(context.Background(), 1, bad)
		assert.True(t, apperr.IsValidation(err), bad)
	}

	_, err := calc.Slots(context.Background(), 99, "2025-03-10")
	assert.True(t, apperr.IsNotFound(err))

	_, err = calc.Slots(context.Background(), 99, "2025-03-09")
	assert.True(t, apperr.IsNotFound(err), "unknown doctor is reported even on the closed day")
}

func TestIsFree(t *testing.T) {
	bookings := fakeBookings{booking(7, 1, "2025-03-10", "09:00", models.AppointmentStatusConfirmed)}
	calc := NewCalculator(clinicDoctors, bookings, time.UTC)
	ctx := context.Background()

	free, err := calc.IsFree(ctx, 1, "2025-03-10", "09:00", 0)
	require.NoError(t, err)
	assert.False(t, free)

	free, err = calc.IsFree(ctx, 1, "2025-03-10", "09:00", 7)
	require.NoError(t, err)
	assert.True(t, free, "an appointment never collides with itself")

	free, err = calc.IsFree(ctx, 2, "2025-03-10", "09:00", 0)
	require.NoError(t, err)
	assert.True(t, free)

	_, err = calc.IsFree(ctx, 1, "2025-03-10", "13:00", 0)
	assert.True(t, apperr.IsValidation(err), "lunch break is not a slot")

	_, err = calc.IsFree(ctx, 1, "2025-03-15", "19:00", 0)
	assert.True(t, apperr.IsValidation(err), "saturday closes early")

	_, err = calc.IsFree(ctx, 1, "2025-03-09", "09:00", 0)
	assert.True(t, apperr.IsValidation(err))
}

func TestHandler(t *testing.T) {
	bookings := fakeBookings{booking(1, 1, "2025-03-10", "09:00", models.AppointmentStatusConfirmed)}
	h := NewHandler(NewCalculator(clinicDoctors, bookings, time.UTC), logging.Discard())
	r := chi.NewRouter()
	r.Get("/availability", h.Get)
	r.Get("/bot/availability/{doctorID}/{date}", h.ByPath)

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/availability?doctor_id=1&date=2025-03-10", http.StatusOK, `"availableSlots":["08:00","10:00"`},
		{"/availability?date=2025-03-10", http.StatusBadRequest, "doctor_id"},
		{"/availability?doctor_id=1&date=2025-13-01", http.StatusBadRequest, "date"},
		{"/availability?doctor_id=42&date=2025-03-10", http.StatusNotFound, "doctor not found"},
		{"/bot/availability/1/2025-03-09", http.StatusOK, `"closed":true`},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		assert.Equal(t, tt.status, rec.Code, tt.path)
		assert.Contains(t, rec.Body.String(), tt.body, tt.path)
	}
}
