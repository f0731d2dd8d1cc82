package booking

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/apperr"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/appointments"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/schedule"
)

// menuStep serves the idle states: the main menu and the screen shown right
// after a booking.
func (f *Flow) menuStep(ctx context.Context, s *Session, ev Event) (Reply, error) {
	switch ev.Action.Kind {
	case KindRemind:
		return f.remind(ctx, s, ev.Action.Value)
	case KindView:
		return f.openAppointment(ctx, s, ev.Action.Value, false)
	case KindMenu:
	default:
		s.Reset()
		return f.mainMenu(""), nil
	}

	s.Reset()
	switch ev.Action.Value {
	case MenuBook:
		return f.advance(ctx, s, StateCollectingName)
	case MenuMine:
		return f.myAppointments(ctx, s)
	case MenuClinic, MenuHours, MenuContact, MenuLocation:
		return f.clinicInfo(ctx, ev.Action.Value)
	case MenuDoctors:
		return f.ourDoctors(ctx)
	default:
		return f.mainMenu(""), nil
	}
}

func (f *Flow) myAppointments(ctx context.Context, s *Session) (Reply, error) {
	items, err := f.deps.Appointments.ListByTelegramID(ctx, s.ChatID)
	if err != nil {
		return Reply{}, err
	}
	today := f.now().In(f.loc).Format(schedule.DateLayout)
	buttons := make([][]Button, 0, len(items)+1)
	for _, a := range items {
		if appointments.IsTerminal(a.Status) || a.Date < today {
			continue
		}
		label := a.Date + " " + a.Time
		if a.DoctorName != "" {
			label += " - Dr. " + a.DoctorName
		}
		buttons = append(buttons, row(button(label, KindView, a.Token)))
	}
	if len(buttons) == 0 {
		return f.mainMenu("You have no upcoming appointments."), nil
	}
	return Reply{Text: "Your upcoming appointments:", Buttons: append(buttons, homeRow())}, nil
}

// Open shows the appointment behind a full booking reference, as a deep link
// does. Adapters without a chat identity use it to hand a booking to a
// session.
func (f *Flow) Open(ctx context.Context, s *Session, token string) (Reply, error) {
	s.Reset()
	reply, err := f.openAppointment(ctx, s, token, true)
	return f.fail(ctx, s, reply, err)
}

// openAppointment shows one appointment. Appointments the session may not
// manage are treated as absent.
func (f *Flow) openAppointment(ctx context.Context, s *Session, token string, granted bool) (Reply, error) {
	a, err := f.deps.Appointments.GetByToken(ctx, token)
	if apperr.IsValidation(err) {
		return Reply{}, apperr.NotFound("appointment", token)
	}
	if err != nil {
		return Reply{}, err
	}
	candidate := Session{ChatID: s.ChatID, Managed: Managed{Token: a.Token, Granted: granted}}
	if !mayManage(&candidate, a) {
		return Reply{}, apperr.NotFound("appointment", token)
	}
	s.Reset()
	s.State = StateViewAppointment
	s.Managed = managedOf(a)
	s.Managed.Granted = granted
	return f.renderAppointment(ctx, a), nil
}

func (f *Flow) viewPrompt(ctx context.Context, s *Session) (Reply, error) {
	a, err := f.refresh(ctx, s)
	if err != nil {
		return Reply{}, err
	}
	return f.renderAppointment(ctx, a), nil
}

func (f *Flow) renderAppointment(ctx context.Context, a models.Appointment) Reply {
	buttons := make([][]Button, 0, 5)
	if !appointments.IsTerminal(a.Status) {
		if a.DoctorID != nil {
			buttons = append(buttons, row(button("Reschedule", KindResched, a.Token)))
		}
		buttons = append(buttons, row(button("Cancel appointment", KindCxlAppt, a.Token)))
		buttons = append(buttons, f.appointmentButtons(ctx, a)...)
	}
	buttons = append(buttons, homeRow())
	return Reply{Text: "Appointment details\n\n" + f.details(a), Buttons: buttons}
}

func (f *Flow) viewStep(ctx context.Context, s *Session, ev Event) (Reply, error) {
	switch ev.Action.Kind {
	case KindResched:
		a, err := f.refresh(ctx, s)
		if err != nil {
			return Reply{}, err
		}
		if appointments.IsTerminal(a.Status) {
			return Reply{}, apperr.Validation("status", "This appointment is "+a.Status+" and cannot be rescheduled.")
		}
		if a.DoctorID == nil {
			return Reply{}, apperr.Validation("doctor", "This appointment has no doctor assigned. Please call the clinic to reschedule.")
		}
		s.Managed.Date = ""
		s.Month = ""
		return f.advance(ctx, s, StateReschedulingDate)
	case KindCxlAppt:
		current, err := f.refresh(ctx, s)
		if err != nil {
			return Reply{}, err
		}
		a, err := f.deps.Appointments.Cancel(ctx, current.ID)
		if err != nil {
			return Reply{}, err
		}
		s.Reset()
		return f.mainMenu(fmt.Sprintf("Appointment %s on %s at %s has been cancelled.", a.Token, f.displayDate(a.Date), a.Time)), nil
	case KindRemind:
		return f.remind(ctx, s, s.Managed.Token)
	default:
		return f.prompt(ctx, s)
	}
}

func (f *Flow) rescheduleTimeStep(ctx context.Context, s *Session, ev Event) (Reply, error) {
	date := s.Managed.Date
	clock, err := f.pickTime(ctx, ev, s.Managed.DoctorID, date)
	if err != nil {
		return Reply{}, err
	}
	current, err := f.refresh(ctx, s)
	if err != nil {
		return Reply{}, err
	}
	s.Managed.Date = date
	a, err := f.deps.Appointments.Reschedule(ctx, current.ID, date, clock)
	if err != nil {
		return Reply{}, err
	}
	s.Reset()
	return f.mainMenu(fmt.Sprintf("Done! Appointment %s is now on %s at %s.", a.Token, f.displayDate(a.Date), a.Time)), nil
}

// remind schedules a one-off message about the appointment. The session
// state does not change.
func (f *Flow) remind(ctx context.Context, s *Session, token string) (Reply, error) {
	if f.deps.Reminders == nil {
		return Reply{}, apperr.Validation("reminder", "Reminders are not available right now.")
	}
	a, err := f.deps.Appointments.GetByToken(ctx, token)
	if err != nil {
		return Reply{}, err
	}
	if !mayManage(s, a) {
		return Reply{}, apperr.NotFound("appointment", token)
	}
	text := fmt.Sprintf("⏰ Reminder: you have an appointment on %s at %s (reference %s).", f.displayDate(a.Date), a.Time, a.Token)
	if !f.deps.Reminders.Schedule(s.ChatID, f.reminderDelay, text) {
		return Reply{}, apperr.Validation("reminder", "Reminders are not available right now.")
	}
	return Reply{
		Text:    fmt.Sprintf("🔔 Reminder set. We will message you in %s.", humanDuration(f.reminderDelay)),
		Buttons: [][]Button{homeRow()},
	}, nil
}

func (f *Flow) clinicInfo(ctx context.Context, topic string) (Reply, error) {
	settings, err := f.settings(ctx)
	if err != nil {
		return Reply{}, err
	}
	var sb strings.Builder
	buttons := [][]Button{homeRow()}
	switch topic {
	case MenuLocation:
		sb.WriteString("Our location\n\n")
		if settings.Address == "" {
			sb.WriteString("Please call the clinic for directions.")
			break
		}
		sb.WriteString(settings.Address)
		buttons = append([][]Button{row(Button{Label: "Open in Google Maps", URL: mapsLink(settings.Address)})}, buttons...)
	case MenuHours:
		sb.WriteString("Working hours\n\n")
		sb.WriteString(settings.WorkingHours)
	case MenuContact:
		sb.WriteString("Contact us\n\n")
		if settings.Phone != "" {
			sb.WriteString("Phone: " + settings.Phone + "\n")
		}
		if settings.Email != "" {
			sb.WriteString("Email: " + settings.Email + "\n")
		}
		if settings.Address != "" {
			sb.WriteString("Address: " + settings.Address)
		}
	default:
		sb.WriteString(settings.Name + "\n\n")
		if settings.Address != "" {
			sb.WriteString(settings.Address + "\n\n")
		}
		sb.WriteString("Working hours: " + settings.WorkingHours)
	}
	return Reply{Text: strings.TrimSpace(sb.String()), Buttons: buttons}, nil
}

func mapsLink(address string) string {
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(address)
}

// ourDoctors is the informational list; no visibility policy applies.
func (f *Flow) ourDoctors(ctx context.Context) (Reply, error) {
	doctors, err := f.deps.Doctors.ListActive(ctx)
	if err != nil {
		return Reply{}, err
	}
	if len(doctors) == 0 {
		return Reply{Text: "Our doctors will be listed here soon.", Buttons: [][]Button{homeRow()}}, nil
	}
	var sb strings.Builder
	sb.WriteString("Our doctors\n")
	for _, d := range doctors {
		fmt.Fprintf(&sb, "\nDr. %s - %s", d.Name, d.Specialization)
		if d.Qualification != "" {
			fmt.Fprintf(&sb, " (%s)", d.Qualification)
		}
	}
	return Reply{Text: sb.String(), Buttons: [][]Button{row(button("Book appointment", KindMenu, MenuBook)), homeRow()}}, nil
}

func humanDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	switch {
	case minutes == 60:
		return "1 hour"
	case minutes > 60 && minutes%60 == 0:
		return fmt.Sprintf("%d hours", minutes/60)
	case minutes == 1:
		return "1 minute"
	default:
		return fmt.Sprintf("%d minutes", minutes)
	}
}
