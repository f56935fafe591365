package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"pencilsketch/core"
	"pencilsketch/db"
	"pencilsketch/inbox"
	"pencilsketch/logging"
	"pencilsketch/shutdown"
)

// historyCleanupInterval is how often watch mode applies the retention policy.
const historyCleanupInterval = 24 * time.Hour

func runWatch(args []string, stdout, stderr io.Writer) int {
	cfg, ok := loadConfig(stderr)
	if !ok {
		return core.ExitCodeError
	}

	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var flags renderFlags
	flags.register(fs, cfg)
	envInbox := cfg.InboxDir
	fs.StringVar(&cfg.InboxDir, "inbox", cfg.InboxDir, "hot folder to watch")
	fs.DurationVar(&cfg.PollInterval, "interval", cfg.PollInterval, "poll interval")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return core.ExitCodeSuccess
		}
		return core.ExitCodeError
	}
	if err := flags.apply(cfg); err != nil {
		printConfigError(stderr, err)
		return core.ExitCodeError
	}
	if cfg.InboxDir != envInbox {
		cfg.DoneDir = core.GetEnvOrDefault("DONE_DIR", filepath.Join(cfg.InboxDir, "done"))
		cfg.FailedDir = core.GetEnvOrDefault("FAILED_DIR", filepath.Join(cfg.InboxDir, "failed"))
	}

	logger, err := newLogger(cfg, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return core.ExitCodeError
	}

	m := shutdown.NewManager(logger)
	m.Start()
	return watch(cfg, logger, m, stderr)
}

// watch renders the inbox until m's context is cancelled and returns the
// exit code. It owns logger and syncs it during shutdown.
func watch(cfg *core.Config, logger *logging.Logger, m *shutdown.Manager, stderr io.Writer) int {
	if err := cfg.EnsureInboxDirs(); err != nil {
		printConfigError(stderr, err)
		logger.Sync()
		return core.ExitCodeError
	}
	if cfg.PollInterval <= 0 {
		printConfigError(stderr, core.ErrInvalidValue("-interval", cfg.PollInterval.String(), "must be positive"))
		logger.Sync()
		return core.ExitCodeError
	}

	a, err := newApp(cfg, logger, true)
	if err != nil {
		logger.Error("failed to start", zap.Error(err))
		logger.Sync()
		return core.ExitCodeError
	}

	watcher := inbox.NewWatcher(a.renderer, inbox.Config{
		InboxDir:     cfg.InboxDir,
		DoneDir:      cfg.DoneDir,
		FailedDir:    cfg.FailedDir,
		PollInterval: cfg.PollInterval,
		MinAge:       inbox.DefaultMinAge,
	}, logger.Named("inbox"))

	m.Register("inbox", shutdown.PriorityWorkers, waitFor(watcher.Done()))
	if a.database != nil && cfg.HistoryRetentionDays > 0 {
		dbLog := logger.Named("db")
		done := a.database.StartCleanupScheduler(m.Context(), db.CleanupSchedulerConfig{
			RetentionDays: cfg.HistoryRetentionDays,
			Interval:      historyCleanupInterval,
			OnCleanup: func(result db.CleanupResult, err error) {
				if err != nil {
					if m.Context().Err() == nil {
						dbLog.Warn("history cleanup failed", zap.Error(err))
					}
					return
				}
				dbLog.Info("history cleanup complete",
					zap.Int64("renders_deleted", result.RendersDeleted),
					zap.Duration("duration", result.Duration))
			},
		})
		m.Register("history-cleanup", shutdown.PriorityWorkers, waitFor(done))
	}
	m.Register("pipeline", shutdown.PriorityDatabase, a.Close)
	m.Register("temp-outputs", shutdown.PriorityFiles, shutdown.RemoveTempOutputs(logger, cfg.OutputDir))
	m.Register("logger", shutdown.PriorityLogger, func(context.Context) error {
		_ = logger.Sync()
		return nil
	})

	runErr := make(chan error, 1)
	go func() {
		err := watcher.Run(m.Context())
		runErr <- err
		if err != nil {
			logger.Error("inbox watcher stopped", zap.Error(err))
			m.Trigger(nil)
		}
	}()

	m.Wait()
	if err := m.Shutdown(); err != nil {
		fmt.Fprintf(stderr, "Shutdown error: %v\n", err)
	}

	stats := watcher.Stats()
	fmt.Fprintf(stderr, "Rendered %d, failed %d\n", stats.Processed, stats.Failed)

	select {
	case err := <-runErr:
		if err != nil {
			return core.ExitCodeError
		}
	default:
	}
	return m.ExitCode()
}

// waitFor returns a shutdown.Func that waits for done or the deadline.
func waitFor(done <-chan struct{}) shutdown.Func {
	return func(ctx context.Context) error {
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
