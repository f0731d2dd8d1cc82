package booking

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/apperr"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/appointments"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/doctors"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
)

// clinicDoctors applies the real visibility policy to an in-memory roster.
type clinicDoctors struct {
	roster []models.Doctor
	policy doctors.VisibilityPolicy
}

func (c clinicDoctors) Get(ctx context.Context, id int64) (models.Doctor, error) {
	for _, d := range c.roster {
		if d.ID == id {
			return d, nil
		}
	}
	return models.Doctor{}, apperr.NotFound("doctor", "")
}

func (c clinicDoctors) ListActive(ctx context.Context) ([]models.Doctor, error) {
	out := []models.Doctor{}
	for _, d := range c.roster {
		if d.IsActive {
			out = append(out, d)
		}
	}
	return out, nil
}

func (c clinicDoctors) ListBySpecialization(ctx context.Context, specialization string) ([]models.Doctor, error) {
	active, _ := c.ListActive(ctx)
	matches := []models.Doctor{}
	for _, d := range active {
		if strings.EqualFold(d.Specialization, specialization) {
			matches = append(matches, d)
		}
	}
	if onCall := c.policy.OnCall(matches); len(onCall) > 0 {
		return onCall, nil
	}
	for _, d := range active {
		if c.policy.FallbackKeyword != "" && strings.Contains(strings.ToLower(d.Name), c.policy.FallbackKeyword) {
			return []models.Doctor{d}, nil
		}
	}
	return []models.Doctor{}, nil
}

// store is an in-memory appointment book that enforces the live-slot rule.
type store struct {
	mu      sync.Mutex
	items   []models.Appointment
	doctors clinicDoctors
}

func (st *store) collides(doctorID int64, date, clock string, excludeID int64) bool {
	for _, a := range st.items {
		if a.ID == excludeID || a.DoctorID == nil || a.Status == models.AppointmentStatusCancelled {
			continue
		}
		if *a.DoctorID == doctorID && a.Date == date && a.Time == clock {
			return true
		}
	}
	return false
}

func (st *store) ActiveTimes(ctx context.Context, doctorID int64, date string) ([]string, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := []string{}
	for _, a := range st.items {
		if a.DoctorID != nil && *a.DoctorID == doctorID && a.Date == date && a.Status != models.AppointmentStatusCancelled {
			out = append(out, a.Time)
		}
	}
	return out, nil
}

func (st *store) IsTaken(ctx context.Context, doctorID int64, date, clock string, excludeID int64) (bool, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.collides(doctorID, date, clock, excludeID), nil
}

func (st *store) Create(ctx context.Context, in appointments.CreateInput, channel string) (models.Appointment, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	status := models.AppointmentStatusPending
	if channel == models.ChannelChat {
		status = models.AppointmentStatusConfirmed
	}
	a := models.Appointment{
		ID:             int64(len(st.items) + 1),
		PatientName:    in.PatientName,
		PatientPhone:   in.PatientPhone,
		PatientAge:     in.PatientAge,
		PatientGender:  in.PatientGender,
		TelegramID:     in.TelegramID,
		Specialization: in.Specialization,
		Date:           in.Date,
		Time:           in.Time,
		Status:         status,
		Notes:          in.Notes,
		Channel:        channel,
		CreatedAt:      time.Now(),
	}
	if in.DoctorID != nil {
		if st.collides(*in.DoctorID, in.Date, in.Time, 0) {
			return models.Appointment{}, apperr.Conflict("time slot is already booked")
		}
		d, err := st.doctors.Get(ctx, *in.DoctorID)
		if err != nil {
			return models.Appointment{}, err
		}
		id := d.ID
		a.DoctorID, a.DoctorName = &id, d.Name
	}
	a.Token = fmt.Sprintf("APT-TESTREF%06d", a.ID)
	st.items = append(st.items, a)
	return a, nil
}

func (st *store) GetByToken(ctx context.Context, token string) (models.Appointment, error) {
	if !strings.HasPrefix(strings.ToUpper(token), "APT-") {
		return models.Appointment{}, apperr.Validation("token", "is not a valid booking reference")
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, a := range st.items {
		if strings.EqualFold(a.Token, token) {
			return a, nil
		}
	}
	return models.Appointment{}, apperr.NotFound("appointment", token)
}

func (st *store) ListByTelegramID(ctx context.Context, telegramID string) ([]models.Appointment, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := []models.Appointment{}
	for _, a := range st.items {
		if a.TelegramID == telegramID && a.Status != models.AppointmentStatusCancelled {
			out = append(out, a)
		}
	}
	return out, nil
}

func (st *store) Reschedule(ctx context.Context, id int64, date, clock string) (models.Appointment, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for i, a := range st.items {
		if a.ID != id {
			continue
		}
		if appointments.IsTerminal(a.Status) {
			return models.Appointment{}, apperr.Validation("status", "cannot reschedule")
		}
		if a.DoctorID != nil && st.collides(*a.DoctorID, date, clock, id) {
			return models.Appointment{}, apperr.Conflict("time slot is already booked")
		}
		a.Date, a.Time = date, clock
		st.items[i] = a
		return a, nil
	}
	return models.Appointment{}, apperr.NotFound("appointment", "")
}

func (st *store) Cancel(ctx context.Context, id int64) (models.Appointment, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for i, a := range st.items {
		if a.ID != id {
			continue
		}
		if appointments.IsTerminal(a.Status) {
			return models.Appointment{}, apperr.Validation("status", "cannot cancel")
		}
		a.Status = models.AppointmentStatusCancelled
		st.items[i] = a
		return a, nil
	}
	return models.Appointment{}, apperr.NotFound("appointment", "")
}

// seed books an appointment directly, bypassing the flow.
func (st *store) seed(doctorID int64, date, clock, telegramID string) models.Appointment {
	a, err := st.Create(context.Background(), appointments.CreateInput{
		PatientName:    "Seeded Patient",
		PatientPhone:   "9000000000",
		TelegramID:     telegramID,
		Specialization: models.DefaultSpecialization,
		DoctorID:       &doctorID,
		Date:           date,
		Time:           clock,
	}, models.ChannelWeb)
	if err != nil {
		panic(err)
	}
	return a
}

type reminderCall struct {
	chatID string
	delay  time.Duration
	text   string
}

type recordingReminders struct {
	calls []reminderCall
}

func (r *recordingReminders) Schedule(chatID string, delay time.Duration, text string) bool {
	r.calls = append(r.calls, reminderCall{chatID, delay, text})
	return true
}

type staticClinic models.HospitalSettings

func (c staticClinic) Settings(ctx context.Context) (models.HospitalSettings, error) {
	return models.HospitalSettings(c), nil
}

type brokenAvailability struct{}

func (brokenAvailability) Slots(ctx context.Context, doctorID int64, date string) ([]models.Slot, error) {
	return nil, apperr.Storage("availability slots", context.DeadlineExceeded)
}
