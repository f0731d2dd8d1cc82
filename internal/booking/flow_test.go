package booking

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/apperr"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/availability"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/classifier"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/doctors"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
)

const chatID = "555"

type fixture struct {
	flow       *Flow
	store      *store
	calculator *availability.Calculator
	reminders  *recordingReminders
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	roster := clinicDoctors{
		roster: []models.Doctor{
			{ID: 1, Name: "Kannan S", Specialization: "General Dentistry", IsActive: true},
			{ID: 2, Name: "Vijayapriya K", Specialization: "General Dentistry", IsActive: true},
			{ID: 3, Name: "Ramesh P", Specialization: "General Dentistry", IsActive: true},
			{ID: 4, Name: "Arun M", Specialization: "Orthodontics", Qualification: "MDS", IsActive: true},
			{ID: 5, Name: "Retired Doc", Specialization: "General Dentistry", IsActive: false},
		},
		policy: doctors.NewVisibilityPolicy([]string{"Kannan", "Vijayapriya"}, "kannan"),
	}
	st := &store{doctors: roster}
	calc := availability.NewCalculator(roster, st, time.UTC)
	rem := &recordingReminders{}
	now := time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC)

	flow := NewFlow(Deps{
		Doctors:      roster,
		Availability: calc,
		Appointments: st,
		Classifier:   classifier.Default(),
		Clinic: staticClinic{
			Name:         "Sree Sarojaa Multi Specialty Dental Clinic",
			Address:      "Cherry Road, Salem",
			Phone:        "0427 2313339",
			Email:        "sreesarojaa@dental.com",
			WorkingHours: "Mon-Fri 8 AM - 9 PM",
		},
		Reminders: rem,
	}, WithClock(func() time.Time { return now }), WithLocation(time.UTC))

	return &fixture{flow: flow, store: st, calculator: calc, reminders: rem}
}

func (fx *fixture) send(t *testing.T, s *Session, ev Event) Reply {
	t.Helper()
	reply, err := fx.flow.Handle(context.Background(), s, ev)
	require.NoError(t, err)
	return reply
}

// toDoctor walks a fresh session up to the doctor choice.
func (fx *fixture) toDoctor(t *testing.T, s *Session, concern string) Reply {
	t.Helper()
	fx.send(t, s, Press(KindMenu, MenuBook))
	fx.send(t, s, Text("Jane Doe"))
	fx.send(t, s, Text("9876543210"))
	fx.send(t, s, Text("30"))
	fx.send(t, s, Press(KindGender, "male"))
	reply := fx.send(t, s, Text(concern))
	require.Equal(t, StateChoosingDoctor, s.State)
	return reply
}

// toConfirm books doctor 1 on 2025-03-10 at 10:00 up to the summary.
func (fx *fixture) toConfirm(t *testing.T, s *Session) Reply {
	t.Helper()
	fx.toDoctor(t, s, "tooth pain")
	fx.send(t, s, Press(KindDoctor, "1"))
	fx.send(t, s, Press(KindDate, "2025-03-10"))
	reply := fx.send(t, s, Press(KindTime, "10:00"))
	require.Equal(t, StateConfirming, s.State)
	return reply
}

func buttonsOf(r Reply, kind Kind) []Button {
	var out []Button
	for _, line := range r.Buttons {
		for _, b := range line {
			if b.Action.Kind == kind {
				out = append(out, b)
			}
		}
	}
	return out
}

func valuesOf(r Reply, kind Kind) []string {
	var out []string
	for _, b := range buttonsOf(r, kind) {
		out = append(out, b.Action.Value)
	}
	return out
}

func TestBookingEndToEnd(t *testing.T) {
	fx := newFixture(t)
	fx.store.seed(1, "2025-03-10", "09:00", "999")
	s := NewSession(chatID)

	reply := fx.send(t, s, Start(""))
	assert.Contains(t, reply.Text, "Welcome to Sree Sarojaa")
	assert.Len(t, buttonsOf(reply, KindMenu), 6)

	reply = fx.send(t, s, Press(KindMenu, MenuBook))
	assert.Equal(t, StateCollectingName, s.State)
	assert.Contains(t, reply.Text, "step 1 of 8")

	fx.send(t, s, Text("Jane Doe"))
	fx.send(t, s, Text("9876543210"))
	fx.send(t, s, Text("30"))
	fx.send(t, s, Press(KindGender, "male"))
	reply = fx.send(t, s, Text("tooth pain"))

	assert.Equal(t, "General Dentistry", s.Booking.Specialization)
	assert.Equal(t, []string{"1", "2"}, valuesOf(reply, KindDoctor))

	fx.send(t, s, Press(KindDoctor, "1"))
	require.Equal(t, StateChoosingDate, s.State)
	reply = fx.send(t, s, Press(KindDate, "2025-03-10"))
	require.Equal(t, StateChoosingTime, s.State)

	times := valuesOf(reply, KindTime)
	assert.Len(t, times, 11)
	assert.NotContains(t, times, "09:00")

	slots, err := fx.calculator.Slots(context.Background(), 1, "2025-03-10")
	require.NoError(t, err)
	require.Len(t, slots, 12)

	reply = fx.send(t, s, Press(KindTime, "10:00"))
	assert.Equal(t, StateConfirming, s.State)
	assert.Contains(t, reply.Text, "Jane Doe")
	assert.Contains(t, reply.Text, "Time: 10:00")
	assert.Contains(t, reply.Text, "Monday, 10 March 2025")

	reply = fx.send(t, s, Press(KindConfirm, ""))
	assert.Equal(t, StateComplete, s.State)
	assert.Equal(t, Booking{}, s.Booking)
	assert.Equal(t, "APT-TESTREF000002", s.Managed.Token)
	assert.Contains(t, reply.Text, "APT-TESTREF000002")

	created := fx.store.items[1]
	assert.Equal(t, models.AppointmentStatusConfirmed, created.Status)
	assert.Equal(t, models.ChannelChat, created.Channel)
	assert.Equal(t, chatID, created.TelegramID)
	assert.Equal(t, "tooth pain", created.Notes)
	assert.Equal(t, "male", created.PatientGender)
	assert.Equal(t, 30, created.PatientAge)

	var link string
	for _, line := range reply.Buttons {
		for _, b := range line {
			if b.URL != "" {
				link = b.URL
			}
		}
	}
	assert.True(t, strings.HasPrefix(link, "https://calendar.google.com/"))
	assert.Equal(t, []string{"APT-TESTREF000002"}, valuesOf(reply, KindRemind))

	slots, err = fx.calculator.Slots(context.Background(), 1, "2025-03-10")
	require.NoError(t, err)
	for _, slot := range slots {
		if slot.Time == "10:00" || slot.Time == "09:00" {
			assert.False(t, slot.Available, slot.Time)
		}
	}
}

func TestInvalidAnswersRepromptSameStep(t *testing.T) {
	tests := []struct {
		name  string
		state State
		input Event
	}{
		{"short name", StateCollectingName, Text("J")},
		{"name as button", StateCollectingName, Press(KindGender, "male")},
		{"short phone", StateCollectingPhone, Text("12345")},
		{"age zero", StateCollectingAge, Text("0")},
		{"age too high", StateCollectingAge, Text("121")},
		{"age not a number", StateCollectingAge, Text("thirty")},
		{"unknown gender", StateCollectingGender, Text("robot")},
		{"unknown issue", StateCollectingConcern, Press(KindIssue, "hair")},
		{"blank concern", StateCollectingConcern, Text("   ")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			s := NewSession(chatID)
			s.State = tt.state

			reply := fx.send(t, s, tt.input)
			assert.Equal(t, tt.state, s.State)
			assert.True(t, strings.HasPrefix(reply.Text, "⚠ "), reply.Text)
		})
	}
}

func TestTypedGenderAccepted(t *testing.T) {
	fx := newFixture(t)
	s := NewSession(chatID)
	s.State = StateCollectingGender

	fx.send(t, s, Text(" Female "))
	assert.Equal(t, StateCollectingConcern, s.State)
	assert.Equal(t, "female", s.Booking.Gender)
}

func TestBackWalksPredecessors(t *testing.T) {
	fx := newFixture(t)
	s := NewSession(chatID)
	fx.toConfirm(t, s)

	want := []State{
		StateChoosingTime,
		StateChoosingDate,
		StateChoosingDoctor,
		StateCollectingConcern,
		StateCollectingGender,
		StateCollectingAge,
		StateCollectingPhone,
		StateCollectingName,
		StateMainMenu,
	}
	for _, state := range want {
		reply := fx.send(t, s, Press(KindBack, ""))
		assert.Equal(t, state, s.State)
		assert.NotEmpty(t, reply.Text)
		if state == StateCollectingName {
			assert.Contains(t, reply.Text, "Current answer: Jane Doe")
		}
	}
	assert.Empty(t, fx.store.items)
}

func TestCancelDiscardsBooking(t *testing.T) {
	fx := newFixture(t)
	s := NewSession(chatID)
	fx.toDoctor(t, s, "tooth pain")
	fx.send(t, s, Press(KindDoctor, "1"))
	fx.send(t, s, Press(KindDate, "2025-03-10"))

	reply := fx.send(t, s, Press(KindCancel, ""))
	assert.Equal(t, StateMainMenu, s.State)
	assert.Equal(t, Booking{}, s.Booking)
	assert.Equal(t, chatID, s.ChatID)
	assert.Contains(t, reply.Text, "Nothing was saved")
	assert.Empty(t, fx.store.items)
}

func TestDeclineDiscardsBooking(t *testing.T) {
	fx := newFixture(t)
	s := NewSession(chatID)
	fx.toConfirm(t, s)

	fx.send(t, s, Press(KindDecline, ""))
	assert.Equal(t, StateMainMenu, s.State)
	assert.Empty(t, fx.store.items)
}

func TestChangingConcernClearsDownstream(t *testing.T) {
	fx := newFixture(t)
	s := NewSession(chatID)
	fx.toConfirm(t, s)

	for range 4 {
		fx.send(t, s, Press(KindBack, ""))
	}
	require.Equal(t, StateCollectingConcern, s.State)
	assert.Equal(t, "10:00", s.Booking.Time)

	reply := fx.send(t, s, Press(KindIssue, "braces"))
	assert.Equal(t, StateChoosingDoctor, s.State)
	assert.Equal(t, "Orthodontics", s.Booking.Specialization)
	assert.Zero(t, s.Booking.DoctorID)
	assert.Empty(t, s.Booking.Date)
	assert.Empty(t, s.Booking.Time)
	assert.Equal(t, "Jane Doe", s.Booking.Name)

	// Arun is not on call, so the fallback doctor is offered.
	assert.Equal(t, []string{"1"}, valuesOf(reply, KindDoctor))
}

func TestChangingDateClearsTime(t *testing.T) {
	fx := newFixture(t)
	s := NewSession(chatID)
	fx.toConfirm(t, s)

	fx.send(t, s, Press(KindBack, ""))
	fx.send(t, s, Press(KindBack, ""))
	require.Equal(t, StateChoosingDate, s.State)

	fx.send(t, s, Press(KindDate, "2025-03-11"))
	assert.Equal(t, StateChoosingTime, s.State)
	assert.Equal(t, "2025-03-11", s.Booking.Date)
	assert.Empty(t, s.Booking.Time)
}

func TestOtherConcernAsksForText(t *testing.T) {
	fx := newFixture(t)
	s := NewSession(chatID)
	s.State = StateCollectingConcern

	reply := fx.send(t, s, Press(KindIssue, "other"))
	assert.Equal(t, StateCollectingConcern, s.State)
	assert.True(t, s.AwaitingConcern)
	assert.Contains(t, reply.Text, "describe")

	fx.send(t, s, Text("I think I need a root canal"))
	assert.Equal(t, StateChoosingDoctor, s.State)
	assert.False(t, s.AwaitingConcern)
	assert.Equal(t, "Endodontics", s.Booking.Specialization)
}

func TestDoctorMustComeFromList(t *testing.T) {
	fx := newFixture(t)
	s := NewSession(chatID)
	fx.toDoctor(t, s, "tooth pain")

	for _, ev := range []Event{Press(KindDoctor, "3"), Press(KindDoctor, "x"), Text("Kannan")} {
		reply := fx.send(t, s, ev)
		assert.Equal(t, StateChoosingDoctor, s.State)
		assert.True(t, strings.HasPrefix(reply.Text, "⚠ "))
	}
}

func TestCalendarWindow(t *testing.T) {
	fx := newFixture(t)
	s := NewSession(chatID)
	fx.toDoctor(t, s, "tooth pain")
	reply := fx.send(t, s, Press(KindDoctor, "1"))

	dates := valuesOf(reply, KindDate)
	require.NotEmpty(t, dates)
	assert.Equal(t, "2025-03-08", dates[0])
	assert.Equal(t, "2025-03-31", dates[len(dates)-1])
	inert := 0
	for _, b := range buttonsOf(reply, KindNoop) {
		if b.Label == "✖" {
			inert++
		}
	}
	assert.Equal(t, 7, inert)
	assert.Equal(t, []string{"2025-04"}, valuesOf(reply, KindMonth))

	reply = fx.send(t, s, Press(KindMonth, "2026-03"))
	dates = valuesOf(reply, KindDate)
	require.Len(t, dates, 8)
	assert.Equal(t, "2026-03-08", dates[7])
	assert.Equal(t, []string{"2026-02"}, valuesOf(reply, KindMonth))

	reply = fx.send(t, s, Press(KindMonth, "2026-04"))
	assert.Equal(t, "2026-03", s.Month)
	assert.Contains(t, reply.Buttons[0][0].Label, "March 2026")

	for _, typed := range []string{"2026-03-09", "2025-03-07", "next monday"} {
		reply = fx.send(t, s, Text(typed))
		assert.Equal(t, StateChoosingDate, s.State)
		assert.True(t, strings.HasPrefix(reply.Text, "⚠ "), typed)
	}

	fx.send(t, s, Text("2026-03-07"))
	assert.Equal(t, StateChoosingTime, s.State)
}

func TestClosedDayShowsNoSlots(t *testing.T) {
	fx := newFixture(t)
	s := NewSession(chatID)
	fx.toDoctor(t, s, "tooth pain")
	fx.send(t, s, Press(KindDoctor, "1"))

	reply := fx.send(t, s, Press(KindDate, "2025-03-09"))
	assert.Equal(t, StateChoosingDate, s.State)
	assert.Empty(t, s.Booking.Date)
	assert.Contains(t, reply.Text, "closed on Sundays")
	assert.Equal(t, []string{"2025-03"}, valuesOf(reply, KindMonth))
}

func TestTodayHidesPastSlots(t *testing.T) {
	fx := newFixture(t)
	s := NewSession(chatID)
	fx.toDoctor(t, s, "tooth pain")
	fx.send(t, s, Press(KindDoctor, "1"))

	reply := fx.send(t, s, Press(KindDate, "2025-03-08"))
	times := valuesOf(reply, KindTime)
	assert.Equal(t, []string{"11:00", "12:00", "14:00", "15:00", "16:00", "17:00"}, times)

	reply = fx.send(t, s, Text("09:00"))
	assert.Equal(t, StateChoosingTime, s.State)
	assert.True(t, strings.HasPrefix(reply.Text, "⚠ "))
}

func TestConfirmConflictReturnsToTimes(t *testing.T) {
	fx := newFixture(t)
	s := NewSession(chatID)
	fx.toConfirm(t, s)
	fx.store.seed(1, "2025-03-10", "10:00", "999")

	reply := fx.send(t, s, Press(KindConfirm, ""))
	assert.Equal(t, StateChoosingTime, s.State)
	assert.Empty(t, s.Booking.Time)
	assert.Equal(t, "2025-03-10", s.Booking.Date)
	assert.Contains(t, reply.Text, "just taken")
	assert.NotContains(t, valuesOf(reply, KindTime), "10:00")
	assert.Len(t, fx.store.items, 1)
}

func TestStorageFailureResetsSession(t *testing.T) {
	fx := newFixture(t)
	fx.flow.deps.Availability = brokenAvailability{}
	s := NewSession(chatID)
	fx.toDoctor(t, s, "tooth pain")
	fx.send(t, s, Press(KindDoctor, "1"))

	reply, err := fx.flow.Handle(context.Background(), s, Press(KindDate, "2025-03-10"))
	require.Error(t, err)
	assert.True(t, apperr.IsStorage(err))
	assert.Equal(t, StateMainMenu, s.State)
	assert.Equal(t, Booking{}, s.Booking)
	assert.Contains(t, reply.Text, "Something went wrong")
}

func TestNoopPressIsIgnored(t *testing.T) {
	fx := newFixture(t)
	s := NewSession(chatID)
	fx.toDoctor(t, s, "tooth pain")
	before := *s

	reply := fx.send(t, s, Press(KindNoop, ""))
	assert.True(t, reply.Empty())
	assert.Equal(t, before, *s)
}

func TestRescheduleFlow(t *testing.T) {
	fx := newFixture(t)
	a := fx.store.seed(1, "2025-03-10", "09:00", chatID)
	fx.store.seed(1, "2025-03-12", "10:00", "999")
	fx.store.seed(2, "2025-03-07", "09:00", chatID)
	s := NewSession(chatID)

	reply := fx.send(t, s, Press(KindMenu, MenuMine))
	assert.Equal(t, []string{a.Token}, valuesOf(reply, KindView))

	reply = fx.send(t, s, Press(KindView, a.Token))
	assert.Equal(t, StateViewAppointment, s.State)
	assert.Equal(t, []string{a.Token}, valuesOf(reply, KindResched))

	fx.send(t, s, Press(KindResched, a.Token))
	assert.Equal(t, StateReschedulingDate, s.State)

	reply = fx.send(t, s, Press(KindDate, "2025-03-12"))
	assert.Equal(t, StateReschedulingTime, s.State)
	assert.NotContains(t, valuesOf(reply, KindTime), "10:00")

	fx.send(t, s, Press(KindBack, ""))
	assert.Equal(t, StateReschedulingDate, s.State)
	fx.send(t, s, Press(KindDate, "2025-03-12"))

	reply = fx.send(t, s, Press(KindTime, "10:00"))
	assert.Equal(t, StateReschedulingTime, s.State)
	assert.True(t, strings.HasPrefix(reply.Text, "⚠ "))

	reply = fx.send(t, s, Press(KindTime, "11:00"))
	assert.Equal(t, StateMainMenu, s.State)
	assert.Contains(t, reply.Text, "Done!")

	moved, err := fx.store.GetByToken(context.Background(), a.Token)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-12", moved.Date)
	assert.Equal(t, "11:00", moved.Time)

	slots, err := fx.calculator.Slots(context.Background(), 1, "2025-03-10")
	require.NoError(t, err)
	for _, slot := range slots {
		assert.True(t, slot.Available, slot.Time)
	}
}

func TestCancelFromView(t *testing.T) {
	fx := newFixture(t)
	a := fx.store.seed(1, "2025-03-10", "09:00", chatID)
	s := NewSession(chatID)

	fx.send(t, s, Press(KindView, a.Token))
	reply := fx.send(t, s, Press(KindCxlAppt, a.Token))
	assert.Equal(t, StateMainMenu, s.State)
	assert.Contains(t, reply.Text, "has been cancelled")

	cancelled, err := fx.store.GetByToken(context.Background(), a.Token)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCancelled, cancelled.Status)

	reply = fx.send(t, s, Press(KindMenu, MenuMine))
	assert.Contains(t, reply.Text, "no upcoming appointments")
}

func TestDeepLink(t *testing.T) {
	fx := newFixture(t)
	mine := fx.store.seed(1, "2025-03-10", "09:00", chatID)
	theirs := fx.store.seed(1, "2025-03-10", "10:00", "999")

	s := NewSession(chatID)
	reply := fx.send(t, s, Start("apt_"+mine.Token))
	assert.Equal(t, StateViewAppointment, s.State)
	assert.Equal(t, mine.ID, s.Managed.AppointmentID)
	assert.Contains(t, reply.Text, mine.Token)

	for _, payload := range []string{"apt_" + theirs.Token, "apt_nope", "apt_APT999999"} {
		s := NewSession(chatID)
		reply, err := fx.flow.Handle(context.Background(), s, Start(payload))
		require.Error(t, err, payload)
		assert.True(t, apperr.IsNotFound(err), payload)
		assert.Equal(t, StateMainMenu, s.State)
		assert.Contains(t, reply.Text, "could not find")
	}
}

func TestStrangerCannotCancelWebBooking(t *testing.T) {
	fx := newFixture(t)
	web := fx.store.seed(1, "2025-03-10", "09:00", "")
	ctx := context.Background()

	// a chat that only knows the reference cannot act on it from a button
	s := NewSession("777")
	for _, ev := range []Event{
		Press(KindView, web.Token),
		Press(KindCxlAppt, web.Token),
		Press(KindRemind, web.Token),
		Press(KindView, "APT000001"),
	} {
		_, err := fx.flow.Handle(ctx, s, ev)
		if err != nil {
			assert.True(t, apperr.IsNotFound(err), ev.Action.Kind)
		}
		assert.Equal(t, StateMainMenu, s.State, ev.Action.Kind)
	}

	// a session left holding someone else's booking is refused on cancel
	s.State = StateViewAppointment
	s.Managed = Managed{Token: web.Token, AppointmentID: web.ID, DoctorID: 1}
	_, err := fx.flow.Handle(ctx, s, Press(KindCxlAppt, web.Token))
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
	assert.Equal(t, StateMainMenu, s.State)

	got, err := fx.store.GetByToken(ctx, web.Token)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusPending, got.Status)
	assert.Empty(t, fx.reminders.calls)
}

func TestDeepLinkGrantsWebBooking(t *testing.T) {
	fx := newFixture(t)
	web := fx.store.seed(1, "2025-03-10", "09:00", "")

	s := NewSession("777")
	reply := fx.send(t, s, Start(DeepLinkPayload(web.Token)))
	assert.Equal(t, StateViewAppointment, s.State)
	assert.True(t, s.Managed.Granted)
	assert.Equal(t, []string{web.Token}, valuesOf(reply, KindCxlAppt))

	reply = fx.send(t, s, Press(KindCxlAppt, web.Token))
	assert.Contains(t, reply.Text, "has been cancelled")
	got, err := fx.store.GetByToken(context.Background(), web.Token)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCancelled, got.Status)
}

func TestOpenKeepsChatBookingsPrivate(t *testing.T) {
	fx := newFixture(t)
	theirs := fx.store.seed(1, "2025-03-10", "09:00", "999")

	s := NewSession("web")
	reply, err := fx.flow.Open(context.Background(), s, theirs.Token)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
	assert.Equal(t, StateMainMenu, s.State)
	assert.Contains(t, reply.Text, "could not find")
}

func TestRemindAfterBooking(t *testing.T) {
	fx := newFixture(t)
	s := NewSession(chatID)
	fx.toConfirm(t, s)
	fx.send(t, s, Press(KindConfirm, ""))

	reply := fx.send(t, s, Press(KindRemind, s.Managed.Token))
	assert.Equal(t, StateComplete, s.State)
	assert.Contains(t, reply.Text, "1 hour")
	require.Len(t, fx.reminders.calls, 1)
	call := fx.reminders.calls[0]
	assert.Equal(t, chatID, call.chatID)
	assert.Equal(t, time.Hour, call.delay)
	assert.Contains(t, call.text, s.Managed.Token)
	assert.Contains(t, call.text, "10:00")
}

func TestInfoMenus(t *testing.T) {
	fx := newFixture(t)
	s := NewSession(chatID)

	reply := fx.send(t, s, Press(KindMenu, MenuClinic))
	assert.Contains(t, reply.Text, "Sree Sarojaa")
	assert.Contains(t, reply.Text, "Cherry Road")

	reply = fx.send(t, s, Press(KindMenu, MenuHours))
	assert.Contains(t, reply.Text, "Mon-Fri 8 AM - 9 PM")

	reply = fx.send(t, s, Press(KindMenu, MenuContact))
	assert.Contains(t, reply.Text, "0427 2313339")

	reply = fx.send(t, s, Press(KindMenu, MenuLocation))
	assert.Contains(t, reply.Text, "Cherry Road, Salem")
	require.NotEmpty(t, reply.Buttons)
	assert.Equal(t, "https://www.google.com/maps/search/?api=1&query=Cherry+Road%2C+Salem", reply.Buttons[0][0].URL)
	assert.Contains(t, reply.Text, "sreesarojaa@dental.com")

	reply = fx.send(t, s, Press(KindMenu, MenuDoctors))
	assert.Contains(t, reply.Text, "Dr. Ramesh P")
	assert.Contains(t, reply.Text, "Dr. Arun M - Orthodontics (MDS)")
	assert.NotContains(t, reply.Text, "Retired Doc")
	assert.Equal(t, StateMainMenu, s.State)
}

func TestActionEncoding(t *testing.T) {
	tests := []struct {
		data string
		want Action
	}{
		{"date|2025-03-10", Action{Kind: KindDate, Value: "2025-03-10"}},
		{"back", Action{Kind: KindBack}},
		{"view|APT000001", Action{Kind: KindView, Value: "APT000001"}},
		{"", Action{Kind: KindNoop}},
	}
	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			got := ParseAction(tt.data)
			assert.Equal(t, tt.want, got)
			if tt.data != "" {
				assert.Equal(t, tt.data, got.Encode())
			}
		})
	}
}
