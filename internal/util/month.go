package util

import (
	"time"
	_ "time/tzdata" // ensures America/Sao_Paulo resolves on hosts without zoneinfo
)

// ReferenceZone is the timezone every calendar date is interpreted in
const ReferenceZone = "America/Sao_Paulo"

// ReferenceLocation is the loaded ReferenceZone
var ReferenceLocation = mustLoadLocation(ReferenceZone)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// DateLayout is the ISO calendar layout (yyyy-MM-dd)
const DateLayout = "2006-01-02"

// ParseDate parses an ISO calendar date as midnight in the reference zone
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, ReferenceLocation)
}

// Today returns the current calendar day at midnight in the reference zone
func Today() time.Time {
	return StartOfDay(time.Now())
}

// StartOfDay returns 00:00:00 of t's calendar day in the reference zone
func StartOfDay(t time.Time) time.Time {
	t = t.In(ReferenceLocation)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, ReferenceLocation)
}

// EndOfDay returns the last representable instant of t's calendar day in the reference zone
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// CalendarDay returns midnight in the reference zone of the calendar day t
// shows in its own location, so a date parsed in UTC keeps its day
func CalendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, ReferenceLocation)
}

// MonthRange returns the first and last calendar day of a month in the reference zone
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, ReferenceLocation)
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, ReferenceLocation)
	return first, last
}

// CalculateActualDate returns the actual date for a target day in a given month,
// handling months with fewer days (e.g., day 31 in February returns Feb 28/29)
func CalculateActualDate(year int, month time.Month, targetDay int) time.Time {
	// Get last day of month by going to day 0 of next month
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, ReferenceLocation).Day()

	actualDay := targetDay
	if actualDay > lastDay {
		actualDay = lastDay
	}

	return time.Date(year, month, actualDay, 0, 0, 0, 0, ReferenceLocation)
}

// NextMonthSameDay moves a due date one month forward keeping the day of
// month, clamped to the length of the target month (Jan 31 -> Feb 28/29)
func NextMonthSameDay(t time.Time) time.Time {
	t = t.In(ReferenceLocation)
	year, month := t.Year(), t.Month()+1
	if month > time.December {
		year, month = year+1, time.January
	}
	return CalculateActualDate(year, month, t.Day())
}
