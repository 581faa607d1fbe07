// internal/api/gridapi/handlers.go
package gridapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/arenahq/arenagrid/internal/grid"
	"github.com/arenahq/arenagrid/internal/models"
	"github.com/arenahq/arenagrid/internal/store"
)

const (
	gridQueryTimeout = 5 * time.Second
	dateLayout       = "2006-01-02"
	startQueryKey    = "start"
	stopQueryKey     = "stop"
)

var (
	sharedStore  *store.Store
	maxRangeDays int
	initOnce     sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(st *store.Store, maxDays int) {
	if st == nil {
		return
	}
	initOnce.Do(func() {
		sharedStore = st
		maxRangeDays = maxDays
	})
}

type bookingRequest struct {
	Date      string `json:"date"`
	TimeStart int    `json:"timeStart"`
	TimeEnd   int    `json:"timeEnd"`
}

type scheduleResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	WorkTime string `json:"workTimeMode"`
}

type bookingResponse struct {
	ID        int64 `json:"id"`
	TimeStart int   `json:"timeStart"`
	TimeEnd   int   `json:"timeEnd"`
}

type gridDayResponse struct {
	Date     string            `json:"date"`
	Schedule *scheduleResponse `json:"schedule,omitempty"`
	Slots    []models.TimeSlot `json:"slots"`
	Bookings []bookingResponse `json:"bookings"`
}

type gridResponse struct {
	VenueID   int64             `json:"venueId"`
	StartDate string            `json:"startDate"`
	StopDate  string            `json:"stopDate"`
	Days      []gridDayResponse `json:"days"`
}

// GET /api/v1/venues/{id}/grid?start=YYYY-MM-DD&stop=YYYY-MM-DD
func HandleGrid(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	st := loadStore()
	if st == nil {
		logger.Error().Msg("Store not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	venueID, err := venueIDFromPath(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start, stop, err := rangeFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), gridQueryTimeout)
	defer cancel()

	if _, err := st.GetVenue(ctx, venueID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Venue not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("venue_id", venueID).Msg("Failed to load venue")
		http.Error(w, "Failed to load venue", http.StatusInternalServerError)
		return
	}

	rules, err := st.ListActiveRules(ctx, venueID, start, stop)
	if err != nil {
		logger.Error().Err(err).Int64("venue_id", venueID).Msg("Failed to load schedule rules")
		http.Error(w, "Failed to load schedule rules", http.StatusInternalServerError)
		return
	}

	bookings, err := st.ListBookings(ctx, venueID, start, stop)
	if err != nil {
		logger.Error().Err(err).Int64("venue_id", venueID).Msg("Failed to load bookings")
		http.Error(w, "Failed to load bookings", http.StatusInternalServerError)
		return
	}

	result, err := grid.Build(ctx, start, stop, rules, bookings)
	if err != nil {
		var configErr grid.RuleConfigError
		switch {
		case errors.Is(err, grid.ErrInvalidRange):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.As(err, &configErr):
			logger.Warn().
				Int64("rule_id", configErr.RuleID).
				Str("rule_name", configErr.Name).
				Msg("Misconfigured schedule rule")
			http.Error(w, configErr.Error(), http.StatusUnprocessableEntity)
		default:
			logger.Error().Err(err).Int64("venue_id", venueID).Msg("Failed to build grid")
			http.Error(w, "Failed to build grid", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, toGridResponse(venueID, result))
}

// POST /api/v1/venues/{id}/bookings
func HandleCreateBooking(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	st := loadStore()
	if st == nil {
		logger.Error().Msg("Store not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	venueID, err := venueIDFromPath(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	date, err := time.ParseInLocation(dateLayout, req.Date, time.UTC)
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), gridQueryTimeout)
	defer cancel()

	if _, err := st.GetVenue(ctx, venueID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Venue not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("venue_id", venueID).Msg("Failed to load venue")
		http.Error(w, "Failed to load venue", http.StatusInternalServerError)
		return
	}

	booking, err := st.CreateBooking(ctx, models.Booking{
		VenueID:   venueID,
		Date:      date,
		TimeStart: req.TimeStart,
		TimeEnd:   req.TimeEnd,
	})
	if err != nil {
		logger.Warn().Err(err).Int64("venue_id", venueID).Msg("Rejected booking")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger.Info().
		Int64("venue_id", venueID).
		Int64("booking_id", booking.ID).
		Str("date", req.Date).
		Msg("Created booking")

	writeJSON(w, http.StatusCreated, booking)
}

func loadStore() *store.Store {
	return sharedStore
}

func venueIDFromPath(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	venueID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || venueID <= 0 {
		return 0, fmt.Errorf("venue id must be a positive integer")
	}
	return venueID, nil
}

func rangeFromQuery(r *http.Request) (time.Time, time.Time, error) {
	rawStart := r.URL.Query().Get(startQueryKey)
	rawStop := r.URL.Query().Get(stopQueryKey)
	if rawStart == "" || rawStop == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("start and stop query parameters are required")
	}

	start, err := time.ParseInLocation(dateLayout, rawStart, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start must be YYYY-MM-DD")
	}
	stop, err := time.ParseInLocation(dateLayout, rawStop, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("stop must be YYYY-MM-DD")
	}
	if stop.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("start must be on or before stop")
	}
	if maxRangeDays > 0 {
		if days := int(stop.Sub(start)/(24*time.Hour)) + 1; days > maxRangeDays {
			return time.Time{}, time.Time{}, fmt.Errorf("range must not exceed %d days", maxRangeDays)
		}
	}
	return start, stop, nil
}

func toGridResponse(venueID int64, result grid.Result) gridResponse {
	response := gridResponse{
		VenueID:   venueID,
		StartDate: result.StartDate.Format(dateLayout),
		StopDate:  result.StopDate.Format(dateLayout),
		Days:      make([]gridDayResponse, 0, len(result.Days)),
	}
	for _, day := range result.Days {
		dayResponse := gridDayResponse{
			Date:     day.Date.Format(dateLayout),
			Slots:    day.Slots,
			Bookings: make([]bookingResponse, 0, len(day.Bookings)),
		}
		if day.Slots == nil {
			dayResponse.Slots = []models.TimeSlot{}
		}
		if day.Schedule != nil {
			dayResponse.Schedule = &scheduleResponse{
				ID:       day.Schedule.ID,
				Name:     day.Schedule.Name,
				WorkTime: string(day.Schedule.WorkTime),
			}
		}
		for _, booking := range day.Bookings {
			dayResponse.Bookings = append(dayResponse.Bookings, bookingResponse{
				ID:        booking.ID,
				TimeStart: booking.TimeStart,
				TimeEnd:   booking.TimeEnd,
			})
		}
		response.Days = append(response.Days, dayResponse)
	}
	return response
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
