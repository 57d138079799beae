package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dobsilva08/metals-reports/internal/config"
	"github.com/dobsilva08/metals-reports/internal/llm"
	"github.com/dobsilva08/metals-reports/internal/lock"
	"github.com/dobsilva08/metals-reports/internal/market"
	"github.com/dobsilva08/metals-reports/internal/models"
	"github.com/dobsilva08/metals-reports/internal/report"
	"github.com/dobsilva08/metals-reports/internal/runner"
	"github.com/dobsilva08/metals-reports/internal/scheduler"
	"github.com/dobsilva08/metals-reports/internal/telegram"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:
  reports [flags] <report-id>   generate and send one report
  reports list                  list known report ids
  reports serve                 run cron schedules from SCHEDULE_* env vars

Report ids: gold_daily, silver_daily, copper_daily plus _weekly/_monthly variants.

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	force := flag.Bool("force", false, "ignore the daily send lock")
	preview := flag.Bool("preview", false, "send to TELEGRAM_CHAT_ID_TEST instead of the metals group")
	provider := flag.String("provider", "", "pin a single LLM provider (piapi/groq/openai/deepseek/gemini)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	command := flag.Arg(0)

	if command == "list" {
		for _, id := range report.IDs() {
			fmt.Println(id)
		}
		return
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	logger := setupLogger(cfg.LogLevel, cfg.Environment)
	logger.Info().
		Str("environment", cfg.Environment).
		Str("timezone", cfg.Timezone).
		Strs("fallback_order", cfg.FallbackOrder).
		Str("confirm_policy", cfg.ConfirmPolicy).
		Msg("Starting metals reports")

	if command == "serve" {
		if err := runServe(cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatal().Err(err).Msg("Serve mode failed")
		}
		return
	}

	err = runOnce(cfg, command, *force, *preview, *provider, logger)
	switch {
	case errors.Is(err, runner.ErrAlreadySent):
		logger.Info().Str("report_id", command).Msg("Already sent today, nothing to do")
	case err != nil:
		logger.Error().Err(err).Str("report_id", command).Msg("Report run failed")
		os.Exit(1)
	}
}

// runOnce wires the dependencies for a single invocation and runs it
func runOnce(cfg *models.Config, reportID string, force, preview bool, providerHint string, logger zerolog.Logger) error {
	ctx := context.Background()

	store, err := buildLockStore(cfg, logger)
	if err != nil {
		return err
	}

	// Guard first: an already-sent day must skip before any LLM or Telegram
	// client is constructed (NewBotAPI issues a live getMe call), so the skip
	// exits zero even when those endpoints are down.
	if !force {
		sent, err := runner.AlreadySent(ctx, store, cfg.Timezone, reportID)
		if err != nil {
			return err
		}
		if sent {
			return runner.ErrAlreadySent
		}
	}

	generator, err := llm.FromConfig(cfg, providerHint, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := generator.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close LLM client")
		}
	}()

	dispatcher, err := telegram.New(cfg, preview, logger)
	if err != nil {
		return err
	}

	r, err := newRunner(cfg, store, generator, dispatcher, force, logger)
	if err != nil {
		return err
	}

	return r.Run(ctx, reportID)
}

// runServe runs the in-process cron schedules until a termination signal
func runServe(cfg *models.Config, logger zerolog.Logger) error {
	store, err := buildLockStore(cfg, logger)
	if err != nil {
		return err
	}

	generator, err := llm.FromConfig(cfg, "", logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := generator.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close LLM client")
		}
	}()

	dispatcher, err := telegram.New(cfg, false, logger)
	if err != nil {
		return err
	}

	r, err := newRunner(cfg, store, generator, dispatcher, false, logger)
	if err != nil {
		return err
	}

	tz, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %s: %w", cfg.Timezone, err)
	}

	sched := scheduler.New(tz, r.Run, logger)
	registered, err := sched.RegisterFromEnv(report.IDs())
	if err != nil {
		return err
	}
	if registered == 0 {
		return fmt.Errorf("no schedules configured, set SCHEDULE_<REPORT_ID> env vars")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	logger.Info().Int("schedules", registered).Msg("Serve mode running. Press Ctrl+C to stop.")
	return sched.Start(ctx)
}

// newRunner assembles a runner with the optional market data sources
func newRunner(cfg *models.Config, store lock.Store, generator runner.Generator, dispatcher runner.Dispatcher, force bool, logger zerolog.Logger) (*runner.Runner, error) {
	fred := market.NewFREDClient(cfg.FREDKey, 20*time.Second, logger)
	wb := market.NewWorldBankClient(20*time.Second, logger)
	counter := report.NewCounter(filepath.Join(cfg.DataDir, "counters.json"), logger)

	return runner.New(cfg, store, counter, generator, dispatcher, fred, wb, force, os.Stdout, logger)
}

// buildLockStore prefers Supabase when configured, so primary and watchdog
// runs on different machines share the same lock; otherwise the local
// sentinel directory is used.
func buildLockStore(cfg *models.Config, logger zerolog.Logger) (lock.Store, error) {
	if cfg.SupabaseURL != "" && cfg.SupabaseKey != "" {
		logger.Info().Msg("Using Supabase send-lock store")
		return lock.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseTimeout, logger)
	}
	return lock.NewFileStore(filepath.Join(cfg.DataDir, "sentinels"), logger), nil
}

// setupLogger configures and returns a zerolog logger
func setupLogger(level, environment string) zerolog.Logger {
	// Parse log level
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	// Configure output format
	var logger zerolog.Logger
	if environment == "development" {
		// Pretty console output for development
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Caller().Logger()
	} else {
		// JSON output for production
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	return logger
}
