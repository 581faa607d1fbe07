// internal/grid/builder.go
package grid

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arenahq/arenagrid/internal/models"
)

// ErrInvalidRange rejects a grid request whose start date falls after its stop date.
var ErrInvalidRange = errors.New("start date must be on or before stop date")

// RuleConfigError attributes a misconfigured schedule rule discovered while
// building a grid, such as a custom-mode rule with no working window.
type RuleConfigError struct {
	RuleID int64
	Name   string
	Reason string
}

func (e RuleConfigError) Error() string {
	return fmt.Sprintf("schedule rule %d (%s): %s", e.RuleID, e.Name, e.Reason)
}

// Schedule identifies the rule assigned to a day.
type Schedule struct {
	ID       int64               `json:"id"`
	Name     string              `json:"name"`
	WorkTime models.WorkTimeMode `json:"workTimeMode"`
}

// Day is the engine's output for one calendar date. Schedule is nil when no
// rule matched; Bookings carries the date's occupancy either way.
type Day struct {
	Date     time.Time         `json:"date"`
	Schedule *Schedule         `json:"schedule,omitempty"`
	Slots    []models.TimeSlot `json:"slots,omitempty"`
	Bookings []models.Booking  `json:"bookings,omitempty"`
}

// Result is the ordered per-day availability for an inclusive date range.
type Result struct {
	StartDate time.Time `json:"startDate"`
	StopDate  time.Time `json:"stopDate"`
	Days      []Day     `json:"days"`
}

// Build computes the availability grid for every date in [start, stop]
// inclusive. Rules and bookings are immutable snapshots already scoped to the
// venue and range; rules need no pre-ordering (ranks are sorted here) and the
// first matching rule in rank order wins each day. The per-date work is
// independent, so days are evaluated concurrently and assembled by index.
func Build(ctx context.Context, start, stop time.Time, rules []models.ScheduleRule, bookings []models.Booking) (Result, error) {
	start = CivilDate(start)
	stop = CivilDate(stop)
	if start.After(stop) {
		return Result{}, ErrInvalidRange
	}

	ranked := make([]models.ScheduleRule, 0, len(rules))
	for _, rule := range rules {
		if rule.IsActive() {
			ranked = append(ranked, rule)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Rank < ranked[j].Rank
	})

	byDate := make(map[time.Time][]models.Booking, len(bookings))
	for _, booking := range bookings {
		key := CivilDate(booking.Date)
		byDate[key] = append(byDate[key], booking)
	}
	for _, dayBookings := range byDate {
		sort.SliceStable(dayBookings, func(i, j int) bool {
			return dayBookings[i].TimeStart < dayBookings[j].TimeStart
		})
	}

	totalDays := daysBetween(start, stop) + 1
	days := make([]Day, totalDays)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < totalDays; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			date := start.AddDate(0, 0, i)
			day, err := buildDay(date, ranked, byDate[date])
			if err != nil {
				return err
			}
			days[i] = day
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	return Result{StartDate: start, StopDate: stop, Days: days}, nil
}

// buildDay assigns the date to the first rule in rank order that matches and
// derives the date's slot list from the rule's work-time mode.
func buildDay(date time.Time, ranked []models.ScheduleRule, dayBookings []models.Booking) (Day, error) {
	day := Day{Date: date, Bookings: dayBookings}

	params := ParamsFor(date)
	var assigned *models.ScheduleRule
	for i := range ranked {
		if Matches(ranked[i], date, params) {
			assigned = &ranked[i]
			break
		}
	}
	if assigned == nil {
		return day, nil
	}

	day.Schedule = &Schedule{
		ID:       assigned.ID,
		Name:     assigned.Name,
		WorkTime: assigned.WorkTime,
	}

	switch assigned.WorkTime {
	case models.WorkTimeFixed:
		// Fixed slots are offered as configured, never fragmented.
		day.Slots = append([]models.TimeSlot(nil), assigned.Slots...)

	case models.WorkTimeCustom:
		window, ok := assigned.WorkingWindow()
		if !ok {
			return Day{}, RuleConfigError{
				RuleID: assigned.ID,
				Name:   assigned.Name,
				Reason: "custom work time requires a working-hours slot",
			}
		}
		if len(dayBookings) == 0 {
			day.Slots = []models.TimeSlot{window}
			break
		}
		occupied := make([]models.TimeSlot, 0, len(dayBookings))
		for _, booking := range dayBookings {
			occupied = append(occupied, booking.Slot())
		}
		day.Slots = SplitWindow(window, occupied, assigned.StartOffset)

	case models.WorkTimeAllDay, models.WorkTimeNone:
		// No slot list in either mode, with or without bookings.
	}

	return day, nil
}
