// internal/grid/date.go

// Package grid computes per-day venue availability: it assigns each date in a
// range to the highest-priority matching schedule rule and derives the bookable
// time windows for that date, carving existing bookings out of custom working
// hours. All computation is pure over in-memory snapshots; time-of-day is
// integer minutes from midnight and dates are day-granularity civil dates.
package grid

import "time"

// DateParams are the calendar facts recurrence rules key off.
type DateParams struct {
	// WeekDay is the ISO weekday, Monday=1 .. Sunday=7.
	WeekDay int
	// MonthDay is the 1-based day of the month.
	MonthDay int
	// LastMonthDay reports whether the date is the final day of its month.
	LastMonthDay bool
}

// ParamsFor extracts DateParams for any valid calendar date.
func ParamsFor(date time.Time) DateParams {
	weekDay := int(date.Weekday())
	if weekDay == 0 {
		weekDay = 7
	}
	return DateParams{
		WeekDay:      weekDay,
		MonthDay:     date.Day(),
		LastMonthDay: date.Day() == daysInMonth(date.Year(), date.Month()),
	}
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// CivilDate truncates a timestamp to its civil date in UTC. The engine performs
// no zone conversion; callers normalize before data enters the core.
func CivilDate(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// daysBetween returns the whole days from a to b. Both arguments must already
// be civil dates in the same location.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
