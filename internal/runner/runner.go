// Package runner executes one report invocation end-to-end: guard check,
// context assembly, generation through the fallback chain, formatting,
// delivery and lock acquisition. Each invocation is synchronous and exits;
// the watchdog path is simply a later invocation of the same flow.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/dobsilva08/metals-reports/internal/llm"
	"github.com/dobsilva08/metals-reports/internal/lock"
	"github.com/dobsilva08/metals-reports/internal/market"
	"github.com/dobsilva08/metals-reports/internal/models"
	"github.com/dobsilva08/metals-reports/internal/report"
)

// ErrAlreadySent signals a clean skip: the report went out earlier today.
// Callers map it to a zero exit code.
var ErrAlreadySent = errors.New("report already sent today")

// AlreadySent checks the send guard for today without running the full flow.
// Callers use it to skip LLM and Telegram client construction entirely on an
// already-delivered day, so the skip stays clean even when those endpoints
// are unreachable.
func AlreadySent(ctx context.Context, store lock.Store, timezone, reportID string) (bool, error) {
	def, err := report.Find(reportID)
	if err != nil {
		return false, err
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return false, fmt.Errorf("failed to load timezone %s: %w", timezone, err)
	}

	date := time.Now().In(loc).Format("2006-01-02")
	sent, err := store.Exists(ctx, def.ID, date)
	if err != nil {
		return false, fmt.Errorf("failed to check send lock: %w", err)
	}
	return sent, nil
}

// Generator produces the narrative text for a report prompt
type Generator interface {
	Generate(ctx context.Context, req *llm.Request) (*llm.Result, error)
}

// Dispatcher delivers the formatted report
type Dispatcher interface {
	Send(ctx context.Context, text string) (*models.DeliveryConfirmation, error)
}

// Runner orchestrates a single report invocation
type Runner struct {
	cfg       *models.Config
	store     lock.Store
	counter   *report.Counter
	generator Generator
	disp      Dispatcher
	fred      *market.FREDClient
	wb        *market.WorldBankClient
	timezone  *time.Location
	force     bool
	out       io.Writer
	logger    zerolog.Logger
}

// New creates a runner. out receives a plain copy of every formatted report
// for CI audit logs; force bypasses the daily send guard.
func New(
	cfg *models.Config,
	store lock.Store,
	counter *report.Counter,
	generator Generator,
	disp Dispatcher,
	fred *market.FREDClient,
	wb *market.WorldBankClient,
	force bool,
	out io.Writer,
	logger zerolog.Logger,
) (*Runner, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", cfg.Timezone, err)
	}

	return &Runner{
		cfg:       cfg,
		store:     store,
		counter:   counter,
		generator: generator,
		disp:      disp,
		fred:      fred,
		wb:        wb,
		timezone:  loc,
		force:     force,
		out:       out,
		logger:    logger.With().Str("component", "runner").Logger(),
	}, nil
}

// Run produces and delivers one report. The send lock is checked before any
// provider call (a locked day skips generation entirely) and acquired only
// after a confirmed delivery, so a failed send leaves the day open for the
// watchdog invocation.
func (r *Runner) Run(ctx context.Context, reportID string) error {
	def, err := report.Find(reportID)
	if err != nil {
		return err
	}

	now := time.Now().In(r.timezone)
	date := now.Format("2006-01-02")
	logger := r.logger.With().Str("report_id", def.ID).Str("date", date).Logger()

	if !r.force {
		sent, err := r.store.Exists(ctx, def.ID, date)
		if err != nil {
			return fmt.Errorf("failed to check send lock: %w", err)
		}
		if sent {
			logger.Info().Msg("Report already sent today, skipping")
			return ErrAlreadySent
		}
	} else {
		logger.Info().Msg("Force flag set, bypassing send guard")
	}

	number, err := r.counter.Next(def.CounterKey)
	if err != nil {
		logger.Warn().Err(err).Msg("Counter persist failed, numbering may repeat")
	}

	snapshot := market.Collect(ctx, r.fred, r.wb, logger)
	contextBlock := report.ContextBlock(def, snapshot)
	prompt := report.BuildUserPrompt(def, contextBlock)

	logger.Info().
		Int("number", number).
		Int("context_length", len(contextBlock)).
		Msg("Generating report")

	result, err := r.generator.Generate(ctx, &llm.Request{
		SystemPrompt: def.SystemPrompt,
		UserPrompt:   prompt,
		Temperature:  r.cfg.LLMTemperature,
		MaxTokens:    r.cfg.LLMMaxTokens,
	})
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	title := report.Title(def, now, number)
	text, err := report.Format(title, result.Text, result.Provider, result.Elapsed)
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}

	// Audit copy for CI logs, printed whether or not the send succeeds
	if r.out != nil {
		fmt.Fprintln(r.out, text)
	}

	confirmation, err := r.disp.Send(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to send report: %w", err)
	}
	if !confirmation.Confirmed {
		return fmt.Errorf("delivery not confirmed (policy %s), leaving lock unset", r.cfg.ConfirmPolicy)
	}

	if err := r.store.Acquire(ctx, def.ID, date); err != nil {
		// The send already succeeded; a lock-write failure must not turn the
		// run into a failure, or the scheduler would alert on a delivered
		// report. The watchdog may resend.
		logger.Warn().Err(err).Msg("Failed to acquire send lock after delivery")
		return nil
	}

	logger.Info().
		Str("provider", result.Provider).
		Int64("message_id", confirmation.MessageID).
		Dur("elapsed", result.Elapsed).
		Msg("Report sent and locked")

	return nil
}
