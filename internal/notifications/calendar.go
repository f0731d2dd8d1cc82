package notifications

import (
	"net/url"
	"strings"
	"time"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/schedule"
)

const (
	calendarEndpoint = "https://calendar.google.com/calendar/render"
	calendarLayout   = "20060102T150405Z"
	visitLength      = time.Hour
)

// CalendarLink builds a Google Calendar "add event" URL for a one hour visit.
// The appointment's wall clock is read in loc and rendered in UTC. It returns
// "" when the appointment has no parseable date and time.
func CalendarLink(a models.Appointment, loc *time.Location, location string) string {
	if loc == nil {
		loc = time.UTC
	}
	start, err := schedule.ParseDateTime(a.Date, a.Time, loc)
	if err != nil {
		return ""
	}
	end := start.Add(visitLength)

	title := "Dental appointment"
	if a.DoctorName != "" {
		title += " - Dr. " + a.DoctorName
	}
	details := []string{"Reference " + a.Token}
	if a.Specialization != "" {
		details = append(details, a.Specialization)
	}

	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", title)
	q.Set("dates", start.UTC().Format(calendarLayout)+"/"+end.UTC().Format(calendarLayout))
	q.Set("details", strings.Join(details, "\n"))
	if location != "" {
		q.Set("location", location)
	}
	return calendarEndpoint + "?" + q.Encode()
}
