// internal/store/bookings.go
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/arenahq/arenagrid/internal/models"
)

// ListBookings returns the venue's bookings dated within [start, stop],
// ordered by date then start time.
func (s *Store) ListBookings(ctx context.Context, venueID int64, start, stop time.Time) ([]models.Booking, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, venue_id, date, time_start, time_end
		FROM bookings
		WHERE venue_id = ? AND date >= ? AND date <= ?
		ORDER BY date, time_start`,
		venueID, start.Format(dateLayout), stop.Format(dateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings for venue %d: %w", venueID, err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var (
			booking models.Booking
			rawDate string
		)
		if err := rows.Scan(&booking.ID, &booking.VenueID, &rawDate, &booking.TimeStart, &booking.TimeEnd); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		booking.Date, err = time.ParseInLocation(dateLayout, rawDate, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse booking date %q: %w", rawDate, err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings for venue %d: %w", venueID, err)
	}
	return bookings, nil
}

// CreateBooking inserts a booking and returns it with its assigned ID.
func (s *Store) CreateBooking(ctx context.Context, booking models.Booking) (models.Booking, error) {
	if err := booking.Validate(); err != nil {
		return models.Booking{}, err
	}

	result, err := s.DB.ExecContext(ctx, `
		INSERT INTO bookings (venue_id, date, time_start, time_end)
		VALUES (?, ?, ?, ?)`,
		booking.VenueID, booking.Date.Format(dateLayout), booking.TimeStart, booking.TimeEnd,
	)
	if err != nil {
		return models.Booking{}, fmt.Errorf("insert booking: %w", err)
	}
	booking.ID, err = result.LastInsertId()
	if err != nil {
		return models.Booking{}, fmt.Errorf("booking id: %w", err)
	}
	return booking, nil
}

// DeleteBookingsBefore removes bookings dated strictly before the cutoff and
// returns the number removed. Used by the retention maintenance job.
func (s *Store) DeleteBookingsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.DB.ExecContext(ctx,
		`DELETE FROM bookings WHERE date < ?`,
		cutoff.Format(dateLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("delete bookings before %s: %w", cutoff.Format(dateLayout), err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return removed, nil
}
