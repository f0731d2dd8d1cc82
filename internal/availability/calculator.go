// Package availability answers which template slots a doctor still has free
// on a date.
package availability

import (
	"context"
	"time"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/apperr"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/schedule"
)

type DoctorFinder interface {
	Get(ctx context.Context, id int64) (models.Doctor, error)
}

// Bookings exposes the slot times held by non-cancelled appointments.
type Bookings interface {
	ActiveTimes(ctx context.Context, doctorID int64, date string) ([]string, error)
	IsTaken(ctx context.Context, doctorID int64, date, clock string, excludeID int64) (bool, error)
}

// Calculator is stateless per call and does not cache. It enforces no
// booking window; that belongs to the calendar shown to users.
type Calculator struct {
	doctors  DoctorFinder
	bookings Bookings
	loc      *time.Location
}

func NewCalculator(doctors DoctorFinder, bookings Bookings, loc *time.Location) *Calculator {
	if loc == nil {
		loc = time.UTC
	}
	return &Calculator{doctors: doctors, bookings: bookings, loc: loc}
}

func (c *Calculator) Location() *time.Location {
	return c.loc
}

// Slots returns one entry per template slot of the date, in template order.
// The closed day yields an empty list.
func (c *Calculator) Slots(ctx context.Context, doctorID int64, date string) ([]models.Slot, error) {
	day, err := schedule.ParseDate(date, c.loc)
	if err != nil {
		return nil, apperr.Validation("date", "must be YYYY-MM-DD")
	}
	if _, err := c.doctors.Get(ctx, doctorID); err != nil {
		return nil, err
	}

	template := schedule.TemplateFor(day.Weekday())
	slots := make([]models.Slot, 0, len(template))
	if len(template) == 0 {
		return slots, nil
	}

	times, err := c.bookings.ActiveTimes(ctx, doctorID, date)
	if err != nil {
		return nil, apperr.Storage("availability slots", err)
	}
	taken := make(map[string]bool, len(times))
	for _, t := range times {
		taken[t] = true
	}
	for _, t := range template {
		slots = append(slots, models.Slot{Time: t, Available: !taken[t]})
	}
	return slots, nil
}

// Available returns only the free slot times.
func (c *Calculator) Available(ctx context.Context, doctorID int64, date string) ([]string, error) {
	slots, err := c.Slots(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	free := make([]string, 0, len(slots))
	for _, s := range slots {
		if s.Available {
			free = append(free, s.Time)
		}
	}
	return free, nil
}

// IsFree reports whether clock is a template slot of date that no live
// appointment other than excludeID holds.
func (c *Calculator) IsFree(ctx context.Context, doctorID int64, date, clock string, excludeID int64) (bool, error) {
	day, err := schedule.ParseDate(date, c.loc)
	if err != nil {
		return false, apperr.Validation("appointmentDate", "must be YYYY-MM-DD")
	}
	if schedule.IsClosed(day.Weekday()) {
		return false, apperr.Validation("appointmentDate", "the clinic is closed on "+day.Weekday().String())
	}
	allowed, err := schedule.IsSlotAllowed(date, clock, c.loc)
	if err != nil || !allowed {
		return false, apperr.Validation("appointmentTime", "is not a bookable slot")
	}
	taken, err := c.bookings.IsTaken(ctx, doctorID, date, clock, excludeID)
	if err != nil {
		return false, apperr.Storage("availability check", err)
	}
	return !taken, nil
}
