package schedule

import (
	"errors"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"

	DefaultBookingWindowDays = 365
)

var (
	ErrInvalidDate = errors.New("invalid date format")
	ErrInvalidTime = errors.New("invalid time format")
)

// Weekly templates. Sunday is closed.
var (
	weekdaySlots = []string{
		"08:00", "09:00", "10:00", "11:00", "12:00",
		"14:00", "15:00", "16:00", "17:00", "18:00", "19:00", "20:00",
	}
	saturdaySlots = []string{
		"09:00", "10:00", "11:00", "12:00",
		"14:00", "15:00", "16:00", "17:00",
	}
)

func ParseDate(dateStr string, loc *time.Location) (time.Time, error) {
	date, err := time.ParseInLocation(DateLayout, dateStr, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return date, nil
}

func ParseDateTime(dateStr, timeStr string, loc *time.Location) (time.Time, error) {
	if _, err := time.Parse(ClockLayout, timeStr); err != nil {
		return time.Time{}, ErrInvalidTime
	}
	if _, err := ParseDate(dateStr, loc); err != nil {
		return time.Time{}, err
	}
	parsed, err := time.ParseInLocation(DateLayout+" "+ClockLayout, dateStr+" "+timeStr, loc)
	if err != nil {
		return time.Time{}, ErrInvalidTime
	}
	return parsed, nil
}

func ValidClock(timeStr string) bool {
	_, err := time.Parse(ClockLayout, timeStr)
	return err == nil && len(timeStr) == len(ClockLayout)
}

func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func IsDatePast(dateStr string, loc *time.Location, now time.Time) (bool, error) {
	date, err := ParseDate(dateStr, loc)
	if err != nil {
		return false, err
	}
	return date.Before(StartOfDay(now, loc)), nil
}

func IsSlotPast(dateStr, timeStr string, loc *time.Location, now time.Time) (bool, error) {
	slot, err := ParseDateTime(dateStr, timeStr, loc)
	if err != nil {
		return false, err
	}
	return !slot.After(now.In(loc)), nil
}

// TemplateFor returns a copy of the slot start times for the weekday.
func TemplateFor(day time.Weekday) []string {
	var src []string
	switch day {
	case time.Sunday:
		return []string{}
	case time.Saturday:
		src = saturdaySlots
	default:
		src = weekdaySlots
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

func IsClosed(day time.Weekday) bool {
	return day == time.Sunday
}

// GenerateSlots returns the template for the weekday of dateStr.
func GenerateSlots(dateStr string, loc *time.Location) ([]string, error) {
	date, err := ParseDate(dateStr, loc)
	if err != nil {
		return nil, err
	}
	return TemplateFor(date.Weekday()), nil
}

func IsSlotAllowed(dateStr, timeStr string, loc *time.Location) (bool, error) {
	slots, err := GenerateSlots(dateStr, loc)
	if err != nil {
		return false, err
	}
	for _, s := range slots {
		if s == timeStr {
			return true, nil
		}
	}
	return false, nil
}

func FilterPastSlots(dateStr string, slots []string, loc *time.Location, now time.Time) ([]string, error) {
	filtered := make([]string, 0, len(slots))
	for _, s := range slots {
		past, err := IsSlotPast(dateStr, s, loc, now)
		if err != nil {
			return nil, err
		}
		if !past {
			filtered = append(filtered, s)
		}
	}
	return filtered, nil
}

// Window is the range of days the booking calendar lets a user pick.
type Window struct {
	First time.Time
	Last  time.Time
}

func NewWindow(now time.Time, loc *time.Location, days int) Window {
	if days <= 0 {
		days = DefaultBookingWindowDays
	}
	first := StartOfDay(now, loc)
	return Window{First: first, Last: first.AddDate(0, 0, days)}
}

func (w Window) Contains(date time.Time) bool {
	return !date.Before(w.First) && !date.After(w.Last)
}

// MonthInWindow reports whether any day of the given month is selectable.
func (w Window) MonthInWindow(year int, month time.Month) bool {
	loc := w.First.Location()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)
	return !last.Before(w.First) && !first.After(w.Last)
}
