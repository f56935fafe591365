package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pencilsketch/core"
	"pencilsketch/db"
	"pencilsketch/logging"
	"pencilsketch/metrics"
	"pencilsketch/render"
	"pencilsketch/workerpool"
)

// app holds the components shared by the render and watch commands.
type app struct {
	cfg      *core.Config
	logger   *logging.Logger
	pool     *workerpool.Pool
	metrics  *metrics.Store
	database *db.Database
	writer   *db.AsyncWriter
	repo     *db.Repository
	renderer *render.Renderer
}

// newLogger builds the shared logger. Console output goes to console so
// command output on stdout stays clean.
func newLogger(cfg *core.Config, console io.Writer) (*logging.Logger, error) {
	return logging.New(logging.Options{
		Development: cfg.DevMode,
		Level:       logging.ParseLevel(cfg.LogLevel, zapcore.InfoLevel),
		FilePath:    cfg.LogFile,
		Console:     zapcore.AddSync(console),
	})
}

// newApp wires the pipeline from cfg. With asyncHistory, history inserts
// are queued on a background writer.
func newApp(cfg *core.Config, logger *logging.Logger, asyncHistory bool) (*app, error) {
	a := &app{
		cfg:     cfg,
		logger:  logger,
		pool:    workerpool.New(cfg.Workers),
		metrics: metrics.NewStore(metrics.DefaultHistoryCapacity),
	}

	opts := []render.Option{
		render.WithLogger(logger.Named("render")),
		render.WithMetrics(a.metrics),
	}

	if cfg.HistoryDB != "" {
		database, err := db.Open(cfg.HistoryDB)
		if err != nil {
			a.pool.Close()
			return nil, fmt.Errorf("failed to open history database: %w", err)
		}
		a.database = database

		if asyncHistory {
			dbLog := logger.Named("db")
			a.writer = db.NewAsyncWriter(db.AsyncWriterConfig{
				OnError: func(err error) { dbLog.Warn("async history write failed", zap.Error(err)) },
			})
			a.writer.Start()
		}
		a.repo = db.NewRepository(database, a.writer)
		opts = append(opts, render.WithHistory(a.repo))
	}

	r, err := render.New(render.OptionsFromConfig(cfg), a.pool, opts...)
	if err != nil {
		a.Close(context.Background())
		return nil, err
	}
	a.renderer = r

	logger.Info("pipeline ready",
		logging.Preset(cfg.PresetName),
		zap.Int("workers", a.pool.NumWorkers()),
		zap.String("output_dir", cfg.OutputDir),
		zap.String("format", string(cfg.OutputFormat)),
		zap.Bool("history", a.database != nil))
	return a, nil
}

// Close drains history writes and releases the pool and database.
func (a *app) Close(ctx context.Context) error {
	var firstErr error
	if a.writer != nil {
		if err := a.writer.Stop(ctx); err != nil {
			firstErr = err
		}
	}
	if a.database != nil {
		if err := a.database.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.pool.Close()
	return firstErr
}

// loadConfig loads configuration and reports failures on stderr in the
// ConfigError format.
func loadConfig(stderr io.Writer) (*core.Config, bool) {
	cfg, err := core.LoadConfig()
	if err != nil {
		printConfigError(stderr, err)
		return nil, false
	}
	return cfg, true
}

func printConfigError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", errorColor.Sprint("Configuration error:"), err)
	if code := core.GetErrorCode(err); code != "" {
		fmt.Fprintf(w, "  code: %s\n", code)
	}
}
