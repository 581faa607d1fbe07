package grid

import (
	"testing"
	"time"

	"github.com/arenahq/arenagrid/internal/models"
)

func matchesOn(t *testing.T, rule models.ScheduleRule, day time.Time) bool {
	t.Helper()
	return Matches(rule, day, ParamsFor(day))
}

func TestMatchesOnce(t *testing.T) {
	rule := models.ScheduleRule{
		Status:    models.RuleActive,
		Repeat:    models.RepeatOnce,
		StartDate: date(2024, time.June, 15),
	}

	if !matchesOn(t, rule, date(2024, time.June, 15)) {
		t.Fatalf("once rule must match its start date")
	}
	for _, other := range []time.Time{
		date(2024, time.June, 14),
		date(2024, time.June, 16),
		date(2025, time.June, 15),
	} {
		if matchesOn(t, rule, other) {
			t.Fatalf("once rule matched %v", other)
		}
	}
}

func TestMatchesOnceWithoutStartDate(t *testing.T) {
	rule := models.ScheduleRule{Status: models.RuleActive, Repeat: models.RepeatOnce}
	if matchesOn(t, rule, date(2024, time.June, 15)) {
		t.Fatalf("once rule without a start date must never match")
	}
}

func TestMatchesDaily(t *testing.T) {
	rule := models.ScheduleRule{
		Status:     models.RuleActive,
		Repeat:     models.RepeatDaily,
		StartDate:  date(2024, time.January, 1),
		RepeatStep: 3,
	}

	tests := []struct {
		day  time.Time
		want bool
	}{
		{date(2023, time.December, 31), false}, // before start
		{date(2024, time.January, 1), true},
		{date(2024, time.January, 2), false},
		{date(2024, time.January, 3), false},
		{date(2024, time.January, 4), true},
		{date(2024, time.January, 7), true},
		{date(2024, time.February, 3), true}, // 33 days out
	}
	for _, test := range tests {
		if got := matchesOn(t, rule, test.day); got != test.want {
			t.Errorf("daily step 3 on %v = %t, want %t", test.day, got, test.want)
		}
	}
}

func TestMatchesDailyStepOne(t *testing.T) {
	rule := models.ScheduleRule{
		Status:     models.RuleActive,
		Repeat:     models.RepeatDaily,
		StartDate:  date(2024, time.January, 1),
		RepeatStep: 1,
	}
	for day := date(2024, time.January, 1); !day.After(date(2024, time.January, 10)); day = day.AddDate(0, 0, 1) {
		if !matchesOn(t, rule, day) {
			t.Fatalf("daily step 1 must match every day, failed on %v", day)
		}
	}
}

func TestMatchesDailyWithoutStartDate(t *testing.T) {
	rule := models.ScheduleRule{Status: models.RuleActive, Repeat: models.RepeatDaily, RepeatStep: 5}
	if !matchesOn(t, rule, date(2024, time.August, 9)) {
		t.Fatalf("daily rule without a start date must match every day")
	}
}

func TestMatchesWeeklyFlags(t *testing.T) {
	rule := models.ScheduleRule{
		Status:   models.RuleActive,
		Repeat:   models.RepeatWeekly,
		WeekDays: models.Flags(1, 3), // Monday, Wednesday
	}

	if !matchesOn(t, rule, date(2024, time.June, 10)) { // Monday
		t.Fatalf("weekly rule must match a flagged Monday")
	}
	if !matchesOn(t, rule, date(2024, time.June, 12)) { // Wednesday
		t.Fatalf("weekly rule must match a flagged Wednesday")
	}
	if matchesOn(t, rule, date(2024, time.June, 11)) { // Tuesday
		t.Fatalf("weekly rule matched an unflagged Tuesday")
	}
	if matchesOn(t, rule, date(2024, time.June, 16)) { // Sunday
		t.Fatalf("weekly rule matched an unflagged Sunday")
	}
}

func TestMatchesWeeklyNoFlagsMeansEveryDay(t *testing.T) {
	rule := models.ScheduleRule{
		Status:    models.RuleActive,
		Repeat:    models.RepeatWeekly,
		StartDate: date(2024, time.January, 1),
		StopDate:  date(2024, time.January, 31),
	}
	for day := date(2024, time.January, 1); !day.After(date(2024, time.January, 31)); day = day.AddDate(0, 0, 1) {
		if !matchesOn(t, rule, day) {
			t.Fatalf("weekly rule with no weekday flags must match %v", day)
		}
	}
}

func TestMatchesWeekdaysSharesWeeklySemantics(t *testing.T) {
	flagged := models.ScheduleRule{
		Status:   models.RuleActive,
		Repeat:   models.RepeatWeekdays,
		WeekDays: models.Flags(6, 7), // weekend
	}
	if !matchesOn(t, flagged, date(2024, time.June, 15)) { // Saturday
		t.Fatalf("weekdays rule must match a flagged Saturday")
	}
	if matchesOn(t, flagged, date(2024, time.June, 14)) { // Friday
		t.Fatalf("weekdays rule matched an unflagged Friday")
	}

	unflagged := models.ScheduleRule{Status: models.RuleActive, Repeat: models.RepeatWeekdays}
	if !matchesOn(t, unflagged, date(2024, time.June, 14)) {
		t.Fatalf("weekdays rule with no flags must match every day")
	}
}

func TestMatchesCalendarDays(t *testing.T) {
	rule := models.ScheduleRule{
		Status:    models.RuleActive,
		Repeat:    models.RepeatCalendarDays,
		MonthDays: models.Flags(1, 15),
	}

	if !matchesOn(t, rule, date(2024, time.March, 1)) {
		t.Fatalf("calendar-days rule must match the 1st")
	}
	if !matchesOn(t, rule, date(2024, time.July, 15)) {
		t.Fatalf("calendar-days rule must match the 15th")
	}
	if matchesOn(t, rule, date(2024, time.July, 14)) {
		t.Fatalf("calendar-days rule matched an unflagged day")
	}
}

func TestMatchesCalendarDaysLastDayFlag(t *testing.T) {
	rule := models.ScheduleRule{
		Status:    models.RuleActive,
		Repeat:    models.RepeatCalendarDays,
		MonthDays: models.Flags(models.FlagLastMonthDay),
	}

	for _, last := range []time.Time{
		date(2024, time.February, 29),
		date(2023, time.February, 28),
		date(2024, time.April, 30),
		date(2024, time.December, 31),
	} {
		if !matchesOn(t, rule, last) {
			t.Errorf("last-day flag must match %v", last)
		}
	}
	if matchesOn(t, rule, date(2024, time.February, 28)) {
		t.Fatalf("last-day flag matched Feb 28 in a leap year")
	}
}

func TestMatchesCalendarDaysIgnoresMonthFlags(t *testing.T) {
	// Month selector flags are carried on the rule but day matching does not
	// consult them; a flagged 10th matches in months outside the month mask.
	rule := models.ScheduleRule{
		Status:    models.RuleActive,
		Repeat:    models.RepeatCalendarDays,
		Months:    models.Flags(1), // January only
		MonthDays: models.Flags(10),
	}
	if !matchesOn(t, rule, date(2024, time.September, 10)) {
		t.Fatalf("month flags must not restrict calendar-day matching")
	}
}

func TestMatchesValidityWindow(t *testing.T) {
	rule := models.ScheduleRule{
		Status:    models.RuleActive,
		Repeat:    models.RepeatWeekly,
		StartDate: date(2024, time.June, 10),
		StopDate:  date(2024, time.June, 20),
	}

	if matchesOn(t, rule, date(2024, time.June, 9)) {
		t.Fatalf("rule matched before its validity window")
	}
	if matchesOn(t, rule, date(2024, time.June, 21)) {
		t.Fatalf("rule matched after its validity window")
	}
	if !matchesOn(t, rule, date(2024, time.June, 10)) {
		t.Fatalf("validity window start must be inclusive")
	}
	if !matchesOn(t, rule, date(2024, time.June, 20)) {
		t.Fatalf("validity window stop must be inclusive")
	}
}

func TestMatchesDisabledRule(t *testing.T) {
	rule := models.ScheduleRule{
		Status: models.RuleDisabled,
		Repeat: models.RepeatWeekly,
	}
	if matchesOn(t, rule, date(2024, time.June, 10)) {
		t.Fatalf("disabled rule must never match")
	}
}
