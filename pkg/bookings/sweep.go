package bookings

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rentloop/rentloop/pkg/observability"
)

// Sweeper runs the stale-booking sweep on a schedule
type Sweeper struct {
	cron    *cron.Cron
	service *Service
	logger  *observability.Logger
}

// NewSweeper creates a sweeper running hourly
func NewSweeper(service *Service, logger *observability.Logger) *Sweeper {
	return &Sweeper{
		cron:    cron.New(),
		service: service,
		logger:  logger,
	}
}

// Start schedules and starts the sweep
func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := s.service.SweepStale(ctx); err != nil {
			s.logger.WithError(err).Warn("stale booking sweep failed")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}
