// Package scheduler drives serve mode: cron entries trigger report runs, and
// optional watchdog entries later in the day re-run the same flow. The send
// guard makes the watchdog a no-op when the primary run delivered.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/dobsilva08/metals-reports/internal/runner"
)

// RunFunc executes one report invocation
type RunFunc func(ctx context.Context, reportID string) error

// Scheduler owns the cron instance and the registered report entries
type Scheduler struct {
	cron    *cron.Cron
	run     RunFunc
	entries int
	logger  zerolog.Logger
}

// New creates a scheduler in the given timezone
func New(tz *time.Location, run RunFunc, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(tz)),
		run:    run,
		logger: logger.With().Str("component", "scheduler").Logger(),
	}
}

// Register adds one cron entry for a report
func (s *Scheduler) Register(reportID, spec string, watchdog bool) error {
	logger := s.logger.With().
		Str("report_id", reportID).
		Str("spec", spec).
		Bool("watchdog", watchdog).
		Logger()

	_, err := s.cron.AddFunc(spec, func() {
		err := s.run(context.Background(), reportID)
		switch {
		case err == nil:
			logger.Info().Msg("Scheduled run completed")
		case errors.Is(err, runner.ErrAlreadySent):
			logger.Info().Msg("Scheduled run skipped, already sent today")
		default:
			logger.Error().Err(err).Msg("Scheduled run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to register schedule %q for %s: %w", spec, reportID, err)
	}

	s.entries++
	logger.Info().Msg("Schedule registered")
	return nil
}

// RegisterFromEnv reads SCHEDULE_<ID> and WATCHDOG_SCHEDULE_<ID> for every
// known report id and registers the non-empty ones. Returns the number of
// entries registered.
func (s *Scheduler) RegisterFromEnv(reportIDs []string) (int, error) {
	registered := 0
	for _, id := range reportIDs {
		envKey := strings.ToUpper(id)

		if spec := os.Getenv("SCHEDULE_" + envKey); spec != "" {
			if err := s.Register(id, spec, false); err != nil {
				return registered, err
			}
			registered++
		}
		if spec := os.Getenv("WATCHDOG_SCHEDULE_" + envKey); spec != "" {
			if err := s.Register(id, spec, true); err != nil {
				return registered, err
			}
			registered++
		}
	}
	return registered, nil
}

// Start runs the cron loop until the context is cancelled, then waits for
// any in-flight job to finish
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info().Int("entries", s.entries).Msg("Scheduler started")
	s.cron.Start()

	<-ctx.Done()

	s.logger.Info().Msg("Stopping scheduler...")
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info().Msg("Scheduler stopped")

	return ctx.Err()
}
