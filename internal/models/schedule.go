// internal/models/schedule.go
package models

import (
	"fmt"
	"time"
)

// Minutes-from-midnight bounds for a time-of-day value.
const MinMinuteOfDay = 0
const MaxMinuteOfDay = 1439

// RepeatMode selects which calendar facts a schedule rule keys off.
type RepeatMode string

const (
	RepeatOnce         RepeatMode = "once"
	RepeatDaily        RepeatMode = "daily"
	RepeatWeekly       RepeatMode = "weekly"
	RepeatCalendarDays RepeatMode = "calendar_days"
	RepeatWeekdays     RepeatMode = "weekdays"
)

// WorkTimeMode describes how a rule exposes bookable time on a matching day.
type WorkTimeMode string

const (
	// WorkTimeFixed offers the rule's slot list as-is.
	WorkTimeFixed WorkTimeMode = "fixed"
	// WorkTimeCustom offers free sub-windows of a single working window,
	// fragmented around existing bookings.
	WorkTimeCustom WorkTimeMode = "custom"
	// WorkTimeAllDay and WorkTimeNone expose no slot list.
	WorkTimeAllDay WorkTimeMode = "all_day"
	WorkTimeNone   WorkTimeMode = "none"
)

// RuleStatus gates whether a rule participates in matching at all.
type RuleStatus string

const (
	RuleActive   RuleStatus = "active"
	RuleDisabled RuleStatus = "disabled"
)

// FlagSet is a bitmask of 1-based selector positions: months 1..12,
// week-of-month 1..5 (5 = last week), ISO weekdays 1..7 (Monday=1),
// month days 1..31 plus FlagLastMonthDay.
type FlagSet uint64

// FlagLastMonthDay is the month-day flag position meaning "last day of the month".
const FlagLastMonthDay = 32

// Flags builds a FlagSet from 1-based positions. Out-of-range positions are ignored.
func Flags(positions ...int) FlagSet {
	var f FlagSet
	for _, pos := range positions {
		if pos < 1 || pos > 63 {
			continue
		}
		f |= 1 << uint(pos)
	}
	return f
}

// Has reports whether the 1-based position is set.
func (f FlagSet) Has(pos int) bool {
	if pos < 1 || pos > 63 {
		return false
	}
	return f&(1<<uint(pos)) != 0
}

// IsEmpty reports whether no position is set.
func (f FlagSet) IsEmpty() bool {
	return f == 0
}

// TimeSlot is a time-of-day window in minutes from midnight, start exclusive of end.
type TimeSlot struct {
	TimeStart int `json:"timeStart"`
	TimeEnd   int `json:"timeEnd"`
}

func (s TimeSlot) Validate() error {
	if s.TimeStart < MinMinuteOfDay || s.TimeStart > MaxMinuteOfDay {
		return fmt.Errorf("timeStart must be within [%d, %d]", MinMinuteOfDay, MaxMinuteOfDay)
	}
	if s.TimeEnd < MinMinuteOfDay || s.TimeEnd > MaxMinuteOfDay {
		return fmt.Errorf("timeEnd must be within [%d, %d]", MinMinuteOfDay, MaxMinuteOfDay)
	}
	if s.TimeStart >= s.TimeEnd {
		return fmt.Errorf("timeStart must be before timeEnd")
	}
	return nil
}

// Duration returns the slot length in minutes.
func (s TimeSlot) Duration() int {
	return s.TimeEnd - s.TimeStart
}

// ScheduleRule is a recurring calendar template owned by one venue.
// Selector flags irrelevant to the active repeat mode are carried but ignored.
type ScheduleRule struct {
	ID      int64      `json:"id"`
	VenueID int64      `json:"venueId"`
	Name    string     `json:"name"`
	Rank    int        `json:"rank"`
	Status  RuleStatus `json:"status"`

	// Validity window. Zero values mean unbounded on that side.
	StartDate time.Time `json:"startDate,omitempty"`
	StopDate  time.Time `json:"stopDate,omitempty"`

	Repeat     RepeatMode `json:"repeat"`
	RepeatStep int        `json:"repeatStep,omitempty"`

	Months     FlagSet `json:"months,omitempty"`
	MonthWeeks FlagSet `json:"monthWeeks,omitempty"`
	WeekDays   FlagSet `json:"weekDays,omitempty"`
	MonthDays  FlagSet `json:"monthDays,omitempty"`

	WorkTime WorkTimeMode `json:"workTimeMode"`
	// Slots holds the fixed slot list when WorkTime is fixed, or exactly one
	// working-hours window when WorkTime is custom.
	Slots []TimeSlot `json:"slots,omitempty"`

	// Custom-mode booking constraints, in minutes.
	MinDuration int `json:"minDuration,omitempty"`
	MaxDuration int `json:"maxDuration,omitempty"`
	// StartOffset aligns each free segment start to a minute-of-hour (0-59).
	StartOffset int `json:"startOffset,omitempty"`
}

// WorkingWindow returns the single working-hours window of a custom-mode rule.
func (r ScheduleRule) WorkingWindow() (TimeSlot, bool) {
	if len(r.Slots) == 0 {
		return TimeSlot{}, false
	}
	return r.Slots[0], true
}

// IsActive reports whether the rule participates in day matching.
func (r ScheduleRule) IsActive() bool {
	return r.Status == RuleActive
}

// Booking is committed occupancy for a venue on one calendar date.
type Booking struct {
	ID        int64     `json:"id"`
	VenueID   int64     `json:"venueId"`
	Date      time.Time `json:"date"`
	TimeStart int       `json:"timeStart"`
	TimeEnd   int       `json:"timeEnd"`
}

// Slot returns the booking's occupied time-of-day window.
func (b Booking) Slot() TimeSlot {
	return TimeSlot{TimeStart: b.TimeStart, TimeEnd: b.TimeEnd}
}

func (b Booking) Validate() error {
	if b.VenueID <= 0 {
		return fmt.Errorf("venueId must be a positive integer")
	}
	if b.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	return b.Slot().Validate()
}

// Venue is the owning entity for schedule rules and bookings.
type Venue struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Timezone string `json:"timezone"`
}
