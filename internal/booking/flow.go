// Package booking is the chat booking conversation: a state machine over a
// per-chat Session that collects patient details, picks a doctor and a slot,
// and commits the appointment. It knows nothing about the chat transport.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/apperr"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/appointments"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/schedule"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/validation"
)

type Doctors interface {
	ListBySpecialization(ctx context.Context, specialization string) ([]models.Doctor, error)
	ListActive(ctx context.Context) ([]models.Doctor, error)
}

type Availability interface {
	Slots(ctx context.Context, doctorID int64, date string) ([]models.Slot, error)
}

type Appointments interface {
	Create(ctx context.Context, in appointments.CreateInput, channel string) (models.Appointment, error)
	GetByToken(ctx context.Context, token string) (models.Appointment, error)
	ListByTelegramID(ctx context.Context, telegramID string) ([]models.Appointment, error)
	Reschedule(ctx context.Context, id int64, date, clock string) (models.Appointment, error)
	Cancel(ctx context.Context, id int64) (models.Appointment, error)
}

type Classifier interface {
	Classify(text string) string
}

type ClinicInfo interface {
	Settings(ctx context.Context) (models.HospitalSettings, error)
}

type Reminders interface {
	Schedule(chatID string, delay time.Duration, text string) bool
}

// Deps are the collaborators of a Flow. Reminders may be nil.
type Deps struct {
	Doctors      Doctors
	Availability Availability
	Appointments Appointments
	Classifier   Classifier
	Clinic       ClinicInfo
	Reminders    Reminders
}

type Option func(*Flow)

func WithClock(now func() time.Time) Option {
	return func(f *Flow) { f.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(f *Flow) {
		if loc != nil {
			f.loc = loc
		}
	}
}

// WithWindowDays sets how far ahead the calendar offers dates.
func WithWindowDays(days int) Option {
	return func(f *Flow) { f.windowDays = days }
}

// WithReminderDelay ignores non-positive delays.
func WithReminderDelay(d time.Duration) Option {
	return func(f *Flow) {
		if d > 0 {
			f.reminderDelay = d
		}
	}
}

type Flow struct {
	deps          Deps
	loc           *time.Location
	now           func() time.Time
	windowDays    int
	reminderDelay time.Duration
}

func NewFlow(deps Deps, opts ...Option) *Flow {
	f := &Flow{
		deps:          deps,
		loc:           time.UTC,
		now:           time.Now,
		windowDays:    schedule.DefaultBookingWindowDays,
		reminderDelay: time.Hour,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Flow) window() schedule.Window {
	return schedule.NewWindow(f.now(), f.loc, f.windowDays)
}

// Handle applies one event to the session and returns the reply to render.
// Validation problems re-prompt the current step. Any other failure resets
// the session to the main menu; the reply already says so and the error is
// returned for logging.
func (f *Flow) Handle(ctx context.Context, s *Session, ev Event) (Reply, error) {
	if s.State == "" {
		s.State = StateMainMenu
	}
	switch ev.Action.Kind {
	case KindNoop:
		return Reply{}, nil
	case KindStart:
		reply, err := f.start(ctx, s, ev.Action.Value)
		return f.fail(ctx, s, reply, err)
	case KindCancel:
		s.Reset()
		return f.mainMenu("Booking cancelled. Nothing was saved."), nil
	case KindHome:
		s.Reset()
		return f.mainMenu(""), nil
	case KindBack:
		s.State = Previous(s.State)
		s.AwaitingConcern = false
		reply, err := f.prompt(ctx, s)
		return f.fail(ctx, s, reply, err)
	}

	reply, err := f.step(ctx, s, ev)
	return f.fail(ctx, s, reply, err)
}

// fail maps a step error onto a reply.
func (f *Flow) fail(ctx context.Context, s *Session, reply Reply, err error) (Reply, error) {
	if err == nil {
		return reply, nil
	}
	var ve *apperr.ValidationError
	if errors.As(err, &ve) || apperr.IsConflict(err) {
		again, perr := f.prompt(ctx, s)
		if perr != nil {
			return f.abort(s, perr)
		}
		again.Text = problem(err) + "\n\n" + again.Text
		return again, nil
	}
	return f.abort(s, err)
}

func (f *Flow) abort(s *Session, err error) (Reply, error) {
	s.Reset()
	if apperr.IsNotFound(err) {
		return f.mainMenu("We could not find that. Please start again from the menu."), err
	}
	return f.mainMenu("Something went wrong on our side. Please try again later."), err
}

func problem(err error) string {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		return "⚠ " + ve.Message
	}
	var ce *apperr.ConflictError
	if errors.As(err, &ce) {
		return "⚠ That slot was just taken. Please pick another time."
	}
	return "⚠ " + err.Error()
}

func (f *Flow) step(ctx context.Context, s *Session, ev Event) (Reply, error) {
	switch s.State {
	case StateMainMenu, StateComplete:
		return f.menuStep(ctx, s, ev)
	case StateCollectingName:
		return f.nameStep(ctx, s, ev)
	case StateCollectingPhone:
		return f.phoneStep(ctx, s, ev)
	case StateCollectingAge:
		return f.ageStep(ctx, s, ev)
	case StateCollectingGender:
		return f.genderStep(ctx, s, ev)
	case StateCollectingConcern:
		return f.concernStep(ctx, s, ev)
	case StateChoosingDoctor:
		return f.doctorStep(ctx, s, ev)
	case StateChoosingDate:
		return f.dateStep(ctx, s, ev, s.Booking.DoctorID, StateChoosingTime, s.setDate)
	case StateChoosingTime:
		return f.timeStep(ctx, s, ev)
	case StateConfirming:
		return f.confirmStep(ctx, s, ev)
	case StateViewAppointment:
		return f.viewStep(ctx, s, ev)
	case StateReschedulingDate:
		return f.dateStep(ctx, s, ev, s.Managed.DoctorID, StateReschedulingTime, func(d string) { s.Managed.Date = d })
	case StateReschedulingTime:
		return f.rescheduleTimeStep(ctx, s, ev)
	default:
		s.Reset()
		return f.mainMenu(""), nil
	}
}

// advance moves to next and renders its prompt.
func (f *Flow) advance(ctx context.Context, s *Session, next State) (Reply, error) {
	s.State = next
	return f.prompt(ctx, s)
}

func (f *Flow) start(ctx context.Context, s *Session, payload string) (Reply, error) {
	s.Reset()
	if token, ok := strings.CutPrefix(payload, deepLinkMark); ok && token != "" {
		return f.openAppointment(ctx, s, token, true)
	}
	return f.mainMenu("Welcome to " + f.clinicName(ctx) + "!"), nil
}

func (f *Flow) nameStep(ctx context.Context, s *Session, ev Event) (Reply, error) {
	name := strings.Join(strings.Fields(ev.Text), " ")
	if ev.isPress() || len([]rune(name)) < 2 {
		return Reply{}, apperr.Validation("name", "Please enter a valid name (at least 2 characters).")
	}
	s.Booking.Name = name
	return f.advance(ctx, s, StateCollectingPhone)
}

func (f *Flow) phoneStep(ctx context.Context, s *Session, ev Event) (Reply, error) {
	phone := strings.TrimSpace(ev.Text)
	if ev.isPress() || len(validation.Digits(phone)) < 10 {
		return Reply{}, apperr.Validation("phone", "Please enter a valid phone number (at least 10 digits).")
	}
	s.Booking.Phone = phone
	return f.advance(ctx, s, StateCollectingAge)
}

func (f *Flow) ageStep(ctx context.Context, s *Session, ev Event) (Reply, error) {
	age, err := strconv.Atoi(strings.TrimSpace(ev.Text))
	if ev.isPress() || err != nil || age < 1 || age > 120 {
		return Reply{}, apperr.Validation("age", "Please enter a valid age (1-120).")
	}
	s.Booking.Age = age
	return f.advance(ctx, s, StateCollectingGender)
}

func (f *Flow) genderStep(ctx context.Context, s *Session, ev Event) (Reply, error) {
	value := ev.Action.Value
	if !ev.isPress() {
		value = ev.Text
	} else if ev.Action.Kind != KindGender {
		value = ""
	}
	gender, ok := genderOf(value)
	if !ok {
		return Reply{}, apperr.Validation("gender", "Please choose one of the options below.")
	}
	s.Booking.Gender = gender
	return f.advance(ctx, s, StateCollectingConcern)
}

func (f *Flow) concernStep(ctx context.Context, s *Session, ev Event) (Reply, error) {
	var concern string
	switch {
	case ev.Action.Kind == KindIssue && ev.Action.Value == issueOther:
		s.AwaitingConcern = true
		return f.prompt(ctx, s)
	case ev.Action.Kind == KindIssue:
		label, ok := issueLabel(ev.Action.Value)
		if !ok {
			return Reply{}, apperr.Validation("concern", "Please choose one of the options below.")
		}
		concern = label
	case !ev.isPress():
		concern = strings.TrimSpace(ev.Text)
	}
	if concern == "" {
		return Reply{}, apperr.Validation("concern", "Please describe your dental concern.")
	}
	s.setConcern(concern, f.deps.Classifier.Classify(concern))
	return f.advance(ctx, s, StateChoosingDoctor)
}

func (f *Flow) doctorStep(ctx context.Context, s *Session, ev Event) (Reply, error) {
	if ev.Action.Kind != KindDoctor {
		return Reply{}, apperr.Validation("doctor", "Please choose a doctor from the list.")
	}
	id, err := strconv.ParseInt(ev.Action.Value, 10, 64)
	if err != nil {
		return Reply{}, apperr.Validation("doctor", "Please choose a doctor from the list.")
	}
	offered, err := f.deps.Doctors.ListBySpecialization(ctx, s.Booking.Specialization)
	if err != nil {
		return Reply{}, err
	}
	for _, d := range offered {
		if d.ID == id {
			s.setDoctor(d.ID, d.Name)
			return f.advance(ctx, s, StateChoosingDate)
		}
	}
	return Reply{}, apperr.Validation("doctor", "That doctor is not available for this treatment. Please choose from the list.")
}

// dateStep handles calendar paging and date picks for both the booking and
// the reschedule calendars.
func (f *Flow) dateStep(ctx context.Context, s *Session, ev Event, doctorID int64, next State, set func(string)) (Reply, error) {
	w := f.window()
	switch {
	case ev.Action.Kind == KindMonth:
		month, err := time.ParseInLocation(monthLayout, ev.Action.Value, f.loc)
		if err != nil || !w.MonthInWindow(month.Year(), month.Month()) {
			return f.prompt(ctx, s)
		}
		s.Month = ev.Action.Value
		return f.prompt(ctx, s)
	case ev.Action.Kind == KindDate, !ev.isPress():
	default:
		return Reply{}, apperr.Validation("date", "Please pick a date from the calendar.")
	}

	date := ev.Action.Value
	if !ev.isPress() {
		date = strings.TrimSpace(ev.Text)
	}
	day, err := schedule.ParseDate(date, f.loc)
	if err != nil {
		return Reply{}, apperr.Validation("date", "Please pick a date from the calendar (or type it as YYYY-MM-DD).")
	}
	if !w.Contains(day) {
		return Reply{}, apperr.Validation("date", fmt.Sprintf("Please pick a date between %s and %s.",
			w.First.Format(schedule.DateLayout), w.Last.Format(schedule.DateLayout)))
	}

	free, err := f.freeTimes(ctx, doctorID, date)
	if err != nil {
		return Reply{}, err
	}
	s.Month = day.Format(monthLayout)
	if len(free) == 0 {
		return f.noSlots(day), nil
	}
	set(date)
	return f.advance(ctx, s, next)
}

func (f *Flow) timeStep(ctx context.Context, s *Session, ev Event) (Reply, error) {
	clock, err := f.pickTime(ctx, ev, s.Booking.DoctorID, s.Booking.Date)
	if err != nil {
		return Reply{}, err
	}
	s.Booking.Time = clock
	return f.advance(ctx, s, StateConfirming)
}

// pickTime accepts a slot only if it is still free.
func (f *Flow) pickTime(ctx context.Context, ev Event, doctorID int64, date string) (string, error) {
	clock := ev.Action.Value
	if !ev.isPress() {
		clock = strings.TrimSpace(ev.Text)
	} else if ev.Action.Kind != KindTime {
		return "", apperr.Validation("time", "Please pick one of the listed times.")
	}
	free, err := f.freeTimes(ctx, doctorID, date)
	if err != nil {
		return "", err
	}
	for _, t := range free {
		if t == clock {
			return clock, nil
		}
	}
	return "", apperr.Validation("time", "That time is not available. Please pick one of the listed times.")
}

func (f *Flow) confirmStep(ctx context.Context, s *Session, ev Event) (Reply, error) {
	switch ev.Action.Kind {
	case KindDecline:
		s.Reset()
		return f.mainMenu("Booking cancelled. Nothing was saved."), nil
	case KindConfirm:
	default:
		return Reply{}, apperr.Validation("confirm", "Please confirm or cancel the booking.")
	}

	b := s.Booking
	doctorID := b.DoctorID
	a, err := f.deps.Appointments.Create(ctx, appointments.CreateInput{
		PatientName:    b.Name,
		PatientPhone:   b.Phone,
		PatientAge:     b.Age,
		PatientGender:  b.Gender,
		TelegramID:     s.ChatID,
		Specialization: b.Specialization,
		DoctorID:       &doctorID,
		Date:           b.Date,
		Time:           b.Time,
		Notes:          b.Concern,
	}, models.ChannelChat)
	if apperr.IsConflict(err) {
		s.Booking.Time = ""
		s.State = StateChoosingTime
		return Reply{}, err
	}
	if err != nil {
		return Reply{}, err
	}

	s.Booking = Booking{}
	s.State = StateComplete
	s.Managed = managedOf(a)
	return f.completed(ctx, a), nil
}

// freeTimes lists bookable times on date, dropping times already past.
func (f *Flow) freeTimes(ctx context.Context, doctorID int64, date string) ([]string, error) {
	slots, err := f.deps.Availability.Slots(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	free := make([]string, 0, len(slots))
	for _, slot := range slots {
		if slot.Available {
			free = append(free, slot.Time)
		}
	}
	return schedule.FilterPastSlots(date, free, f.loc, f.now())
}

// settings falls back to an unnamed clinic when no source is configured.
func (f *Flow) settings(ctx context.Context) (models.HospitalSettings, error) {
	if f.deps.Clinic == nil {
		return models.HospitalSettings{}, nil
	}
	return f.deps.Clinic.Settings(ctx)
}

func (f *Flow) clinicName(ctx context.Context) string {
	settings, err := f.settings(ctx)
	if err != nil || settings.Name == "" {
		return "our clinic"
	}
	return settings.Name
}

func managedOf(a models.Appointment) Managed {
	m := Managed{Token: a.Token, AppointmentID: a.ID, Date: a.Date}
	if a.DoctorID != nil {
		m.DoctorID = *a.DoctorID
	}
	return m
}

// mayManage reports whether the session may view or change a. A chat booking
// belongs to its chat only. A booking without a chat belongs to whoever
// opened it with its full reference.
func mayManage(s *Session, a models.Appointment) bool {
	if a.TelegramID != "" {
		return a.TelegramID == s.ChatID
	}
	return s.Managed.Granted && s.Managed.Token == a.Token
}

// refresh re-reads the managed appointment and drops the session's hold on it
// when the session no longer may manage it.
func (f *Flow) refresh(ctx context.Context, s *Session) (models.Appointment, error) {
	a, err := f.deps.Appointments.GetByToken(ctx, s.Managed.Token)
	if err != nil {
		return models.Appointment{}, err
	}
	if !mayManage(s, a) {
		s.Reset()
		return models.Appointment{}, apperr.NotFound("appointment", a.Token)
	}
	granted := s.Managed.Granted
	s.Managed = managedOf(a)
	s.Managed.Granted = granted
	return a, nil
}
