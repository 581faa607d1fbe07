// internal/store/venues.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arenahq/arenagrid/internal/models"
)

// GetVenue loads one venue by ID, or ErrNotFound.
func (s *Store) GetVenue(ctx context.Context, id int64) (models.Venue, error) {
	var venue models.Venue
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, name, slug, timezone FROM venues WHERE id = ?`, id,
	).Scan(&venue.ID, &venue.Name, &venue.Slug, &venue.Timezone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Venue{}, ErrNotFound
		}
		return models.Venue{}, fmt.Errorf("get venue %d: %w", id, err)
	}
	return venue, nil
}

// CreateVenue inserts a venue and returns it with its assigned ID.
func (s *Store) CreateVenue(ctx context.Context, venue models.Venue) (models.Venue, error) {
	if venue.Name == "" {
		return models.Venue{}, fmt.Errorf("name is required")
	}
	if venue.Slug == "" {
		return models.Venue{}, fmt.Errorf("slug is required")
	}
	if venue.Timezone == "" {
		venue.Timezone = "UTC"
	}

	result, err := s.DB.ExecContext(ctx,
		`INSERT INTO venues (name, slug, timezone) VALUES (?, ?, ?)`,
		venue.Name, venue.Slug, venue.Timezone,
	)
	if err != nil {
		return models.Venue{}, fmt.Errorf("insert venue: %w", err)
	}
	venue.ID, err = result.LastInsertId()
	if err != nil {
		return models.Venue{}, fmt.Errorf("venue id: %w", err)
	}
	return venue, nil
}
