package appointments

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/apperr"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/patients"
)

// memRepo mirrors the partial unique index on live (doctor, date, time).
type memRepo struct {
	mu    sync.Mutex
	items []models.Appointment
}

func (m *memRepo) collides(a models.Appointment, excludeID int64) bool {
	if a.DoctorID == nil || a.Status == models.AppointmentStatusCancelled {
		return false
	}
	for _, cur := range m.items {
		if cur.ID == excludeID || cur.DoctorID == nil || cur.Status == models.AppointmentStatusCancelled {
			continue
		}
		if *cur.DoctorID == *a.DoctorID && cur.Date == a.Date && cur.Time == a.Time {
			return true
		}
	}
	return false
}

func (m *memRepo) Insert(ctx context.Context, a models.Appointment) (models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.collides(a, 0) {
		return models.Appointment{}, ErrSlotTaken
	}
	for _, cur := range m.items {
		if cur.Token == a.Token {
			return models.Appointment{}, ErrTokenTaken
		}
	}
	a.ID = int64(len(m.items) + 1)
	a.CreatedAt = time.Now()
	m.items = append(m.items, a)
	return a, nil
}

func (m *memRepo) GetByID(ctx context.Context, id int64) (models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.items {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Appointment{}, ErrNotFound
}

func (m *memRepo) GetByToken(ctx context.Context, token string) (models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.items {
		if a.Token == token {
			return a, nil
		}
	}
	return models.Appointment{}, ErrNotFound
}

func (m *memRepo) List(ctx context.Context, filter ListFilter) ([]models.Appointment, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Appointment{}
	for _, a := range m.items {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.Date != "" && a.Date != filter.Date {
			continue
		}
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

func (m *memRepo) ListByTelegramID(ctx context.Context, telegramID string) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Appointment{}
	for _, a := range m.items {
		if a.TelegramID == telegramID && a.Status != models.AppointmentStatusCancelled {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date+out[i].Time < out[j].Date+out[j].Time })
	return out, nil
}

func (m *memRepo) ListByPatient(ctx context.Context, patientID int64) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Appointment{}
	for _, a := range m.items {
		if a.PatientID != nil && *a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memRepo) ActiveTimes(ctx context.Context, doctorID int64, date string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []string{}
	for _, a := range m.items {
		if a.DoctorID != nil && *a.DoctorID == doctorID && a.Date == date && a.Status != models.AppointmentStatusCancelled {
			out = append(out, a.Time)
		}
	}
	return out, nil
}

func (m *memRepo) IsTaken(ctx context.Context, doctorID int64, date, clock string, excludeID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := models.Appointment{DoctorID: &doctorID, Date: date, Time: clock, Status: models.AppointmentStatusPending}
	return m.collides(want, excludeID), nil
}

func (m *memRepo) UpdateStatus(ctx context.Context, id int64, status string) (models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range m.items {
		if a.ID != id {
			continue
		}
		a.Status = status
		if m.collides(a, id) {
			return models.Appointment{}, ErrSlotTaken
		}
		m.items[i] = a
		return a, nil
	}
	return models.Appointment{}, ErrNotFound
}

func (m *memRepo) Reschedule(ctx context.Context, id int64, date, clock string) (models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range m.items {
		if a.ID != id {
			continue
		}
		a.Date, a.Time = date, clock
		if m.collides(a, id) {
			return models.Appointment{}, ErrSlotTaken
		}
		m.items[i] = a
		return a, nil
	}
	return models.Appointment{}, ErrNotFound
}

type fakePatients struct {
	mu     sync.Mutex
	byKey  map[string]models.Patient
	nextID int64
	linked []int64
}

func newFakePatients() *fakePatients {
	return &fakePatients{byKey: map[string]models.Patient{}}
}

func (f *fakePatients) Match(ctx context.Context, who patients.Identity) (models.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range []string{"e:" + who.Email, "p:" + who.Phone, "t:" + who.TelegramID} {
		if strings.HasSuffix(key, ":") {
			continue
		}
		if p, ok := f.byKey[key]; ok {
			return p, nil
		}
	}
	f.nextID++
	p := models.Patient{ID: f.nextID, Name: who.Name, Email: who.Email, Phone: who.Phone, TelegramID: who.TelegramID}
	for _, key := range []string{"e:" + who.Email, "p:" + who.Phone, "t:" + who.TelegramID} {
		if !strings.HasSuffix(key, ":") {
			f.byKey[key] = p
		}
	}
	return p, nil
}

// Link records which patients were refreshed; the web and chat keys are not
// merged.
func (f *fakePatients) Link(ctx context.Context, p models.Patient, who patients.Identity) (models.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.linked = append(f.linked, p.ID)
	p.Name = who.Name
	return p, nil
}

type fakeDoctors []models.Doctor

func (f fakeDoctors) Get(ctx context.Context, id int64) (models.Doctor, error) {
	for _, d := range f {
		if d.ID == id {
			return d, nil
		}
	}
	return models.Doctor{}, apperr.NotFound("doctor", "")
}

func (f fakeDoctors) FindByName(ctx context.Context, name string) (models.Doctor, error) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "Dr. ")
	for _, d := range f {
		if strings.EqualFold(d.Name, name) {
			return d, nil
		}
	}
	return models.Doctor{}, apperr.NotFound("doctor", name)
}

type recordingHook struct {
	created []models.Appointment
	changed []string
}

func (r *recordingHook) AppointmentCreated(a models.Appointment) {
	r.created = append(r.created, a)
}

func (r *recordingHook) AppointmentStatusChanged(a models.Appointment, from string) {
	r.changed = append(r.changed, from+"->"+a.Status)
}
