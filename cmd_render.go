package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"go.uber.org/zap"

	"pencilsketch/core"
	"pencilsketch/imageio"
	"pencilsketch/render"
	"pencilsketch/shutdown"
)

// renderFlags are the overrides shared by the render and watch commands.
type renderFlags struct {
	preset  string
	out     string
	format  string
	workers int
	maxDim  int
	quality int
	mono    bool
	colored bool
}

func (f *renderFlags) register(fs *flag.FlagSet, cfg *core.Config) {
	fs.StringVar(&f.preset, "preset", cfg.PresetName, "parameter preset")
	fs.StringVar(&f.out, "out", cfg.OutputDir, "output directory")
	fs.StringVar(&f.format, "format", string(cfg.OutputFormat), "output format: png, jpeg, gif, bmp or tiff")
	fs.IntVar(&f.workers, "workers", cfg.Workers, "worker goroutines (0 = GOMAXPROCS)")
	fs.IntVar(&f.maxDim, "max-dim", cfg.MaxDimension, "downscale so the longest side is at most this (0 = off)")
	fs.IntVar(&f.quality, "quality", cfg.JPEGQuality, "JPEG quality 1-100")
	fs.BoolVar(&f.mono, "mono", cfg.WriteMono, "write the monochrome sketch")
	fs.BoolVar(&f.colored, "colored", cfg.WriteColored, "write the colored-pencil image")
}

// apply copies the flag values into cfg.
func (f *renderFlags) apply(cfg *core.Config) error {
	if err := cfg.UsePreset(f.preset); err != nil {
		return err
	}
	format, err := imageio.ParseFormat(f.format)
	if err != nil {
		return core.ErrInvalidOutputFormat(f.format)
	}
	switch {
	case f.workers < 0:
		return core.ErrInvalidValue("-workers", fmt.Sprint(f.workers), "must be >= 0")
	case f.maxDim < 0:
		return core.ErrInvalidValue("-max-dim", fmt.Sprint(f.maxDim), "must be >= 0")
	case f.quality < 1 || f.quality > 100:
		return core.ErrInvalidValue("-quality", fmt.Sprint(f.quality), "must be between 1 and 100")
	case !f.mono && !f.colored:
		return core.ErrInvalidValue("-mono", "false", "-mono and -colored cannot both be false")
	}
	cfg.OutputDir = f.out
	cfg.OutputFormat = format
	cfg.Workers = f.workers
	cfg.MaxDimension = f.maxDim
	cfg.JPEGQuality = f.quality
	cfg.WriteMono = f.mono
	cfg.WriteColored = f.colored
	return cfg.EnsureOutputDir()
}

func runRender(args []string, stdout, stderr io.Writer) int {
	cfg, ok := loadConfig(stderr)
	if !ok {
		return core.ExitCodeError
	}

	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: pencil render [flags] files...")
		fs.PrintDefaults()
	}
	var flags renderFlags
	flags.register(fs, cfg)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return core.ExitCodeSuccess
		}
		return core.ExitCodeError
	}
	files := fs.Args()
	if len(files) == 0 {
		fs.Usage()
		return core.ExitCodeError
	}
	if err := flags.apply(cfg); err != nil {
		printConfigError(stderr, err)
		return core.ExitCodeError
	}

	logger, err := newLogger(cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return core.ExitCodeError
	}
	defer logger.Sync()

	a, err := newApp(cfg, logger, false)
	if err != nil {
		logger.Error("failed to start", zap.Error(err))
		return core.ExitCodeError
	}

	m := shutdown.NewManager(logger)
	m.Register("pipeline", shutdown.PriorityDatabase, a.Close)
	m.Register("temp-outputs", shutdown.PriorityFiles, shutdown.RemoveTempOutputs(logger, cfg.OutputDir))
	m.Start()
	ctx := m.Context()

	var failed int
	for _, path := range files {
		var out *render.Outcome
		err := m.Track(func() error {
			var err error
			out, err = a.renderer.RenderFile(ctx, path)
			return err
		})
		if ctx.Err() != nil {
			break
		}
		if err != nil {
			failed++
			printFailure(stdout, path, err)
			continue
		}
		printOutcome(stdout, out)
	}

	printRunSummary(stdout, a.metrics.Summary(), a.metrics.StageSummary())

	if err := m.Shutdown(); err != nil {
		logger.Warn("shutdown finished with errors", zap.Error(err))
	}
	if m.Signal() != nil {
		return m.ExitCode()
	}
	if failed > 0 {
		return core.ExitCodeError
	}
	return core.ExitCodeSuccess
}
