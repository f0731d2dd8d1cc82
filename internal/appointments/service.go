package appointments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/apperr"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/patients"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/schedule"
)

// PatientResolver finds or creates the patient behind a booking. Link
// refreshes the matched patient's contact details once the booking is stored.
type PatientResolver interface {
	Match(ctx context.Context, who patients.Identity) (models.Patient, error)
	Link(ctx context.Context, p models.Patient, who patients.Identity) (models.Patient, error)
}

type DoctorDirectory interface {
	Get(ctx context.Context, id int64) (models.Doctor, error)
	FindByName(ctx context.Context, name string) (models.Doctor, error)
}

// SlotChecker reports whether a doctor's template slot is free, ignoring the
// appointment excludeID.
type SlotChecker interface {
	IsFree(ctx context.Context, doctorID int64, date, clock string, excludeID int64) (bool, error)
}

// Hook observes lifecycle events. Hooks must not block.
type Hook interface {
	AppointmentCreated(a models.Appointment)
	AppointmentStatusChanged(a models.Appointment, from string)
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithHooks(hooks ...Hook) Option {
	return func(s *Service) { s.hooks = append(s.hooks, hooks...) }
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// tokenAttempts bounds retries on the vanishingly rare token collision.
const tokenAttempts = 3

type Service struct {
	repo     Repository
	patients PatientResolver
	doctors  DoctorDirectory
	slots    SlotChecker
	loc      *time.Location
	now      func() time.Time
	hooks    []Hook
	log      *slog.Logger
	newToken func() (string, error)
}

func NewService(repo Repository, patients PatientResolver, doctors DoctorDirectory, slots SlotChecker, loc *time.Location, opts ...Option) *Service {
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{repo: repo, patients: patients, doctors: doctors, slots: slots, loc: loc, now: time.Now, log: slog.Default(), newToken: NewToken}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func translate(op string, id int64, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		ref := ""
		if id > 0 {
			ref = strconv.FormatInt(id, 10)
		}
		return apperr.NotFound("appointment", ref)
	case errors.Is(err, ErrSlotTaken):
		return apperr.Conflict("time slot is already booked")
	default:
		return apperr.Storage("appointments "+op, err)
	}
}

func validateRequired(in CreateInput) error {
	required := []struct {
		field string
		value string
	}{
		{"patientName", in.PatientName},
		{"patientPhone", in.PatientPhone},
		{"specialization", in.Specialization},
		{"appointmentDate", in.Date},
		{"appointmentTime", in.Time},
	}
	for _, r := range required {
		if r.value == "" {
			return apperr.Required(r.field)
		}
	}
	return nil
}

func (s *Service) validateWhen(date, clock string) error {
	past, err := schedule.IsDatePast(date, s.loc, s.now())
	if err != nil {
		return apperr.Validation("appointmentDate", "must be YYYY-MM-DD")
	}
	if !schedule.ValidClock(clock) {
		return apperr.Validation("appointmentTime", "must be HH:MM")
	}
	if past {
		return apperr.Validation("appointmentDate", "is in the past")
	}
	return nil
}

// checkSlot applies the collision check. Without a doctor there is no slot
// to collide with.
func (s *Service) checkSlot(ctx context.Context, doctorID *int64, date, clock string, excludeID int64) error {
	if doctorID == nil || s.slots == nil {
		return nil
	}
	free, err := s.slots.IsFree(ctx, *doctorID, date, clock, excludeID)
	if err != nil {
		return err
	}
	if !free {
		return apperr.Conflict("time slot is already booked")
	}
	return nil
}

func statusFor(channel string) (string, error) {
	switch channel {
	case models.ChannelWeb:
		return models.AppointmentStatusPending, nil
	case models.ChannelChat:
		return models.AppointmentStatusConfirmed, nil
	default:
		return "", apperr.Validation("channel", "must be web or chat")
	}
}

// Create books an appointment. Web bookings start pending, chat bookings
// start confirmed. The returned appointment carries its token.
func (s *Service) Create(ctx context.Context, in CreateInput, channel string) (models.Appointment, error) {
	in.trim()
	status, err := statusFor(channel)
	if err != nil {
		return models.Appointment{}, err
	}
	if err := validateRequired(in); err != nil {
		return models.Appointment{}, err
	}
	if err := s.validateWhen(in.Date, in.Time); err != nil {
		return models.Appointment{}, err
	}

	doctor, err := s.resolveDoctor(ctx, in)
	if err != nil {
		return models.Appointment{}, err
	}
	var doctorID *int64
	if doctor != nil {
		doctorID = &doctor.ID
	}
	if err := s.checkSlot(ctx, doctorID, in.Date, in.Time, 0); err != nil {
		return models.Appointment{}, err
	}

	who := patients.Identity{
		Name:       in.PatientName,
		Email:      in.PatientEmail,
		Phone:      in.PatientPhone,
		TelegramID: in.TelegramID,
		Age:        in.PatientAge,
		Gender:     in.PatientGender,
	}
	// Match only reads or inserts; the existing patient is not touched until
	// the appointment row is in.
	patient, err := s.patients.Match(ctx, who)
	if err != nil {
		return models.Appointment{}, err
	}

	row := models.Appointment{
		PatientID:      &patient.ID,
		DoctorID:       doctorID,
		PatientName:    in.PatientName,
		PatientEmail:   in.PatientEmail,
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
	}
	a, err := s.insert(ctx, row)
	if err != nil {
		return models.Appointment{}, err
	}
	if _, err := s.patients.Link(ctx, patient, who); err != nil {
		s.log.Warn("appointments: patient contact refresh failed",
			slog.Int64("patient_id", patient.ID),
			slog.String("token", a.Token),
			slog.String("error", err.Error()),
		)
	}
	for _, h := range s.hooks {
		h.AppointmentCreated(a)
	}
	return a, nil
}

// insert stores the row under a fresh token, drawing again if the token is
// already in use.
func (s *Service) insert(ctx context.Context, row models.Appointment) (models.Appointment, error) {
	for attempt := 1; ; attempt++ {
		token, err := s.newToken()
		if err != nil {
			return models.Appointment{}, apperr.Storage("appointments token", err)
		}
		row.Token = token
		a, err := s.repo.Insert(ctx, row)
		if errors.Is(err, ErrTokenTaken) && attempt < tokenAttempts {
			continue
		}
		if err != nil {
			return models.Appointment{}, translate("create", 0, err)
		}
		return a, nil
	}
}

func (s *Service) resolveDoctor(ctx context.Context, in CreateInput) (*models.Doctor, error) {
	switch {
	case in.DoctorID != nil:
		d, err := s.doctors.Get(ctx, *in.DoctorID)
		if err != nil {
			return nil, err
		}
		return &d, nil
	case in.DoctorName != "":
		d, err := s.doctors.FindByName(ctx, in.DoctorName)
		if err != nil {
			return nil, err
		}
		return &d, nil
	default:
		return nil, nil
	}
}

// UpdateStatus moves an appointment along the transition table. override
// lets an admin make any move; bringing a cancelled appointment back still
// requires its slot to be free.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string, override bool) (models.Appointment, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !models.IsValidStatus(status) {
		return models.Appointment{}, apperr.Validation("status", "must be one of "+strings.Join(models.AppointmentStatuses, ", "))
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.Appointment{}, translate("get", id, err)
	}
	if current.Status == status {
		return current, nil
	}
	if !override && !CanTransition(current.Status, status) {
		return models.Appointment{}, apperr.Validation("status", fmt.Sprintf("cannot change from %s to %s", current.Status, status))
	}
	if current.Status == models.AppointmentStatusCancelled {
		if err := s.checkSlot(ctx, current.DoctorID, current.Date, current.Time, id); err != nil {
			return models.Appointment{}, err
		}
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return models.Appointment{}, translate("update status", id, err)
	}
	for _, h := range s.hooks {
		h.AppointmentStatusChanged(updated, current.Status)
	}
	return updated, nil
}

// Cancel frees the slot for later bookings.
func (s *Service) Cancel(ctx context.Context, id int64) (models.Appointment, error) {
	return s.UpdateStatus(ctx, id, models.AppointmentStatusCancelled, false)
}

// Reschedule moves a live appointment to a new date and time after the same
// collision check used at creation.
func (s *Service) Reschedule(ctx context.Context, id int64, date, clock string) (models.Appointment, error) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if date == "" {
		return models.Appointment{}, apperr.Required("appointmentDate")
	}
	if clock == "" {
		return models.Appointment{}, apperr.Required("appointmentTime")
	}
	if err := s.validateWhen(date, clock); err != nil {
		return models.Appointment{}, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.Appointment{}, translate("get", id, err)
	}
	if IsTerminal(current.Status) {
		return models.Appointment{}, apperr.Validation("status", "cannot reschedule a "+current.Status+" appointment")
	}
	if current.Date == date && current.Time == clock {
		return current, nil
	}
	if err := s.checkSlot(ctx, current.DoctorID, date, clock, id); err != nil {
		return models.Appointment{}, err
	}

	updated, err := s.repo.Reschedule(ctx, id, date, clock)
	return updated, translate("reschedule", id, err)
}

func (s *Service) Get(ctx context.Context, id int64) (models.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	return a, translate("get", id, err)
}

func (s *Service) GetByToken(ctx context.Context, token string) (models.Appointment, error) {
	norm, err := NormalizeToken(token)
	if err != nil {
		return models.Appointment{}, apperr.Validation("token", "is not a valid booking reference")
	}
	a, err := s.repo.GetByToken(ctx, norm)
	if errors.Is(err, ErrNotFound) {
		return models.Appointment{}, apperr.NotFound("appointment", norm)
	}
	return a, translate("get", 0, err)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]models.Appointment, int64, error) {
	filter.Status = strings.ToLower(strings.TrimSpace(filter.Status))
	if filter.Status != "" && !models.IsValidStatus(filter.Status) {
		return nil, 0, apperr.Validation("status", "is not a known status")
	}
	if filter.Date != "" {
		if _, err := schedule.ParseDate(filter.Date, s.loc); err != nil {
			return nil, 0, apperr.Validation("date", "must be YYYY-MM-DD")
		}
	}
	filter.Search = strings.TrimSpace(filter.Search)
	items, total, err := s.repo.List(ctx, filter)
	return items, total, translate("list", 0, err)
}

func (s *Service) ListByTelegramID(ctx context.Context, telegramID string) ([]models.Appointment, error) {
	telegramID = strings.TrimSpace(telegramID)
	if telegramID == "" {
		return nil, apperr.Required("telegramId")
	}
	items, err := s.repo.ListByTelegramID(ctx, telegramID)
	return items, translate("list", 0, err)
}

func (s *Service) ListByPatient(ctx context.Context, patientID int64) ([]models.Appointment, error) {
	items, err := s.repo.ListByPatient(ctx, patientID)
	return items, translate("list", 0, err)
}
