package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"MediaCurator/internal/ports"
)

// CronScheduler triggers pipeline runs on a cron expression in a fixed
// timezone.
type CronScheduler struct {
	expression string
	location   *time.Location
	logger     *slog.Logger
	cron       *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler for the given expression and location.
func NewCronScheduler(expression string, location *time.Location, logger *slog.Logger) *CronScheduler {
	if location == nil {
		location = time.Local
	}
	return &CronScheduler{
		expression: expression,
		location:   location,
		logger:     logger,
	}
}

// Start registers the job and begins firing it on schedule. It returns once
// the schedule is running.
func (s *CronScheduler) Start(_ context.Context, job func(time.Time)) error {
	if s.expression == "" {
		return fmt.Errorf("empty cron expression")
	}

	runner := cron.New(cron.WithLocation(s.location))
	if _, err := runner.AddFunc(s.expression, func() {
		job(time.Now().In(s.location))
	}); err != nil {
		return fmt.Errorf("register cron job: %w", err)
	}

	s.cron = runner
	runner.Start()
	s.logger.Info("scheduler started", "expression", s.expression, "timezone", s.location.String())
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (s *CronScheduler) Stop(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}

	done := s.cron.Stop().Done()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
