// internal/scheduler/retention.go
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/arenahq/arenagrid/internal/store"
)

const retentionJobTimeout = 2 * time.Minute

// RegisterRetentionJob schedules a prune of bookings older than retentionDays.
func (s *Service) RegisterRetentionJob(st *store.Store, cronExpr string, retentionDays int) error {
	if st == nil {
		return errors.New("retention job requires a store")
	}
	if retentionDays <= 0 {
		return errors.New("retention days must be positive")
	}

	_, err := s.AddJob("booking_retention", cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), retentionJobTimeout)
		defer cancel()

		cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
		removed, err := st.DeleteBookingsBefore(ctx, cutoff)
		if err != nil {
			log.Error().Err(err).Msg("Failed to prune expired bookings")
			return
		}
		log.Info().
			Int64("removed", removed).
			Str("cutoff", cutoff.Format("2006-01-02")).
			Msg("Pruned expired bookings")
	})
	return err
}
