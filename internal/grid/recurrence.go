// internal/grid/recurrence.go
package grid

import (
	"time"

	"github.com/arenahq/arenagrid/internal/models"
)

// Matches reports whether a schedule rule governs the given date. It is a pure
// predicate: disabled rules never match, the rule's validity window is checked
// first, then the repeat-mode selector. Flags not read by the active mode are
// ignored rather than validated.
func Matches(rule models.ScheduleRule, date time.Time, params DateParams) bool {
	if !rule.IsActive() {
		return false
	}
	date = CivilDate(date)
	if !rule.StartDate.IsZero() && date.Before(CivilDate(rule.StartDate)) {
		return false
	}
	if !rule.StopDate.IsZero() && date.After(CivilDate(rule.StopDate)) {
		return false
	}

	switch rule.Repeat {
	case models.RepeatOnce:
		return !rule.StartDate.IsZero() && sameDay(date, rule.StartDate)

	case models.RepeatDaily:
		if rule.StartDate.IsZero() {
			return true
		}
		step := rule.RepeatStep
		if step <= 1 {
			return true
		}
		return daysBetween(CivilDate(rule.StartDate), date)%step == 0

	case models.RepeatWeekly, models.RepeatWeekdays:
		// No weekday flags at all means every day.
		if rule.WeekDays.IsEmpty() {
			return true
		}
		return rule.WeekDays.Has(params.WeekDay)

	case models.RepeatCalendarDays:
		// Month flags exist on the rule but are not consulted here; day
		// selection runs on the month-day flags alone.
		if rule.MonthDays.Has(params.MonthDay) {
			return true
		}
		return rule.MonthDays.Has(models.FlagLastMonthDay) && params.LastMonthDay

	default:
		return false
	}
}
