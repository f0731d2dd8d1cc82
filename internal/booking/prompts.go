package booking

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/notifications"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/schedule"
)

const (
	monthLayout   = "2006-01"
	displayLayout = "Monday, 2 January 2006"
	bookingSteps  = 8
	issueOther    = "other"
)

type option struct {
	Key   string
	Label string
}

var genders = []option{
	{"male", "Male"},
	{"female", "Female"},
	{"other", "Other"},
}

// Fixed concern shortcuts; "other" asks for free text.
var issues = []option{
	{"pain", "Tooth Pain"},
	{"cavity", "Cavity"},
	{"cleaning", "Cleaning"},
	{"whitening", "Whitening"},
	{"braces", "Braces/Aligners"},
	{"root_canal", "Root Canal"},
	{"extraction", "Extraction"},
	{issueOther, "Other"},
}

func genderOf(value string) (string, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, g := range genders {
		if value == g.Key {
			return g.Key, true
		}
	}
	return "", false
}

func issueLabel(key string) (string, bool) {
	for _, i := range issues {
		if i.Key == key {
			return i.Label, true
		}
	}
	return "", false
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (f *Flow) displayDate(date string) string {
	day, err := schedule.ParseDate(date, f.loc)
	if err != nil {
		return date
	}
	return day.Format(displayLayout)
}

func stepHeader(step int) string {
	return fmt.Sprintf("Booking appointment (step %d of %d)\n\n", step, bookingSteps)
}

// prompt renders the question for the session's current state.
func (f *Flow) prompt(ctx context.Context, s *Session) (Reply, error) {
	b := s.Booking
	switch s.State {
	case StateCollectingName:
		return ask(1, "Please enter your full name.", "Example: John Doe", b.Name), nil
	case StateCollectingPhone:
		return ask(2, "Please enter your phone number.", "Example: 9876543210", b.Phone), nil
	case StateCollectingAge:
		current := ""
		if b.Age > 0 {
			current = strconv.Itoa(b.Age)
		}
		return ask(3, "Please enter your age.", "Example: 25", current), nil
	case StateCollectingGender:
		buttons := make([][]Button, 0, len(genders)+1)
		for _, g := range genders {
			buttons = append(buttons, row(button(g.Label, KindGender, g.Key)))
		}
		return Reply{Text: stepHeader(4) + "Please select your gender.", Buttons: append(buttons, navRow())}, nil
	case StateCollectingConcern:
		if s.AwaitingConcern {
			return Reply{Text: stepHeader(5) + "Please describe your dental concern in a few words.", Buttons: [][]Button{navRow()}}, nil
		}
		buttons := make([][]Button, 0, len(issues)+1)
		for _, i := range issues {
			buttons = append(buttons, row(button(i.Label, KindIssue, i.Key)))
		}
		return Reply{
			Text:    stepHeader(5) + "What brings you to the clinic? Pick a concern or type it.",
			Buttons: append(buttons, navRow()),
		}, nil
	case StateChoosingDoctor:
		return f.doctorPrompt(ctx, s)
	case StateChoosingDate:
		return f.calendar(s, stepHeader(7)+fmt.Sprintf("Doctor: Dr. %s\nPlease pick a date.", b.DoctorName)), nil
	case StateChoosingTime:
		return f.timePrompt(ctx, b.DoctorID, b.Date, stepHeader(8)+"Date: "+f.displayDate(b.Date)+"\nPlease pick a time.")
	case StateConfirming:
		return f.summary(s), nil
	case StateViewAppointment:
		return f.viewPrompt(ctx, s)
	case StateReschedulingDate:
		return f.calendar(s, "Reschedule "+s.Managed.Token+"\nPlease pick a new date."), nil
	case StateReschedulingTime:
		return f.timePrompt(ctx, s.Managed.DoctorID, s.Managed.Date,
			"Reschedule "+s.Managed.Token+"\nNew date: "+f.displayDate(s.Managed.Date)+"\nPlease pick a new time.")
	default:
		return f.mainMenu(""), nil
	}
}

func ask(step int, question, example, current string) Reply {
	text := stepHeader(step) + question + "\n" + example
	if current != "" {
		text += "\n\nCurrent answer: " + current
	}
	return Reply{Text: text, Buttons: [][]Button{navRow()}}
}

func (f *Flow) mainMenu(notice string) Reply {
	text := "What would you like to do?"
	if notice != "" {
		text = notice + "\n\n" + text
	}
	return Reply{
		Text: text,
		Buttons: [][]Button{
			row(button("Book appointment", KindMenu, MenuBook)),
			row(button("My appointments", KindMenu, MenuMine)),
			row(button("Clinic information", KindMenu, MenuClinic)),
			row(button("Our doctors", KindMenu, MenuDoctors)),
			row(button("Working hours", KindMenu, MenuHours), button("Location", KindMenu, MenuLocation)),
			row(button("Contact us", KindMenu, MenuContact)),
		},
	}
}

func (f *Flow) doctorPrompt(ctx context.Context, s *Session) (Reply, error) {
	doctors, err := f.deps.Doctors.ListBySpecialization(ctx, s.Booking.Specialization)
	if err != nil {
		return Reply{}, err
	}
	header := stepHeader(6) + fmt.Sprintf("Concern: %s\nTreatment: %s\n\n", s.Booking.Concern, s.Booking.Specialization)
	if len(doctors) == 0 {
		return Reply{
			Text:    header + "No doctors are available for this treatment right now. Go back to pick another concern or call the clinic.",
			Buttons: [][]Button{navRow()},
		}, nil
	}
	buttons := make([][]Button, 0, len(doctors)+1)
	for _, d := range doctors {
		buttons = append(buttons, row(button("Dr. "+d.Name+" - "+d.Specialization, KindDoctor, strconv.FormatInt(d.ID, 10))))
	}
	return Reply{Text: header + "Please choose your doctor.", Buttons: append(buttons, navRow())}, nil
}

// calendarMonth is the page to show: the session's month when it is inside
// the window, else the window's first month.
func (f *Flow) calendarMonth(s *Session, w schedule.Window) time.Time {
	first := time.Date(w.First.Year(), w.First.Month(), 1, 0, 0, 0, 0, f.loc)
	if s.Month == "" {
		return first
	}
	month, err := time.ParseInLocation(monthLayout, s.Month, f.loc)
	if err != nil || !w.MonthInWindow(month.Year(), month.Month()) {
		return first
	}
	return month
}

// calendar renders a Monday-first month grid. Days outside the window are
// inert.
func (f *Flow) calendar(s *Session, text string) Reply {
	w := f.window()
	month := f.calendarMonth(s, w)

	buttons := [][]Button{
		row(button(month.Format("January 2006"), KindNoop, "")),
	}
	header := make([]Button, 0, 7)
	for _, d := range []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"} {
		header = append(header, button(d, KindNoop, ""))
	}
	buttons = append(buttons, header)

	offset := (int(month.Weekday()) + 6) % 7
	week := make([]Button, 0, 7)
	for i := 0; i < offset; i++ {
		week = append(week, button(" ", KindNoop, ""))
	}
	for day := month; day.Month() == month.Month(); day = day.AddDate(0, 0, 1) {
		if w.Contains(day) {
			week = append(week, button(strconv.Itoa(day.Day()), KindDate, day.Format(schedule.DateLayout)))
		} else {
			week = append(week, button("✖", KindNoop, ""))
		}
		if len(week) == 7 {
			buttons = append(buttons, week)
			week = make([]Button, 0, 7)
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, button(" ", KindNoop, ""))
		}
		buttons = append(buttons, week)
	}

	paging := make([]Button, 0, 2)
	if prev := month.AddDate(0, -1, 0); w.MonthInWindow(prev.Year(), prev.Month()) {
		paging = append(paging, button("◀ "+prev.Format("Jan"), KindMonth, prev.Format(monthLayout)))
	}
	if next := month.AddDate(0, 1, 0); w.MonthInWindow(next.Year(), next.Month()) {
		paging = append(paging, button(next.Format("Jan")+" ▶", KindMonth, next.Format(monthLayout)))
	}
	if len(paging) > 0 {
		buttons = append(buttons, paging)
	}
	return Reply{Text: text, Buttons: append(buttons, navRow())}
}

func (f *Flow) noSlots(day time.Time) Reply {
	text := "There are no free slots on " + day.Format(displayLayout) + "."
	if schedule.IsClosed(day.Weekday()) {
		text += " The clinic is closed on " + day.Weekday().String() + "s."
	}
	return Reply{
		Text: text + "\nPlease pick another date.",
		Buttons: [][]Button{
			row(button("« Back to calendar", KindMonth, day.Format(monthLayout))),
			navRow(),
		},
	}
}

func (f *Flow) timePrompt(ctx context.Context, doctorID int64, date, text string) (Reply, error) {
	free, err := f.freeTimes(ctx, doctorID, date)
	if err != nil {
		return Reply{}, err
	}
	if len(free) == 0 {
		day, _ := schedule.ParseDate(date, f.loc)
		return f.noSlots(day), nil
	}
	buttons := make([][]Button, 0, len(free)/3+2)
	for i := 0; i < len(free); i += 3 {
		end := min(i+3, len(free))
		r := make([]Button, 0, 3)
		for _, t := range free[i:end] {
			r = append(r, button(t, KindTime, t))
		}
		buttons = append(buttons, r)
	}
	return Reply{Text: text, Buttons: append(buttons, navRow())}, nil
}

func (f *Flow) summary(s *Session) Reply {
	b := s.Booking
	var sb strings.Builder
	sb.WriteString("Please confirm your appointment\n\n")
	fmt.Fprintf(&sb, "Name: %s\nPhone: %s\nAge: %d\nGender: %s\nConcern: %s\n\n",
		b.Name, b.Phone, b.Age, titleCase(b.Gender), b.Concern)
	fmt.Fprintf(&sb, "Doctor: Dr. %s\nTreatment: %s\nDate: %s\nTime: %s",
		b.DoctorName, b.Specialization, f.displayDate(b.Date), b.Time)
	return Reply{
		Text: sb.String(),
		Buttons: [][]Button{
			row(button("✔ Confirm booking", KindConfirm, ""), button("✖ Cancel", KindDecline, "")),
			navRow(),
		},
	}
}

func (f *Flow) details(a models.Appointment) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Reference: %s\n", a.Token)
	if a.DoctorName != "" {
		fmt.Fprintf(&sb, "Doctor: Dr. %s\n", a.DoctorName)
	}
	fmt.Fprintf(&sb, "Treatment: %s\nDate: %s\nTime: %s\nStatus: %s",
		a.Specialization, f.displayDate(a.Date), a.Time, titleCase(a.Status))
	return sb.String()
}

// appointmentButtons are the follow-ups offered for a booked appointment.
func (f *Flow) appointmentButtons(ctx context.Context, a models.Appointment) [][]Button {
	buttons := make([][]Button, 0, 3)
	if link := notifications.CalendarLink(a, f.loc, f.clinicAddress(ctx)); link != "" {
		buttons = append(buttons, row(Button{Label: "Add to Google Calendar", URL: link}))
	}
	if f.deps.Reminders != nil {
		buttons = append(buttons, row(button("Set reminder", KindRemind, a.Token)))
	}
	return buttons
}

func (f *Flow) completed(ctx context.Context, a models.Appointment) Reply {
	text := "Your appointment is booked!\n\n" + f.details(a) + "\n\nPlease keep the reference handy and arrive 10 minutes early."
	buttons := f.appointmentButtons(ctx, a)
	return Reply{Text: text, Buttons: append(buttons, homeRow())}
}

func (f *Flow) clinicAddress(ctx context.Context) string {
	settings, err := f.settings(ctx)
	if err != nil {
		return ""
	}
	return settings.Address
}
