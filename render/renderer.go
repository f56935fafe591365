// Package render turns image files into pencil sketches: it decodes the
// input, runs the sketch pipeline, writes the outputs and records the
// outcome in metrics and render history.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pencilsketch/core"
	"pencilsketch/db"
	"pencilsketch/imageio"
	"pencilsketch/logging"
	"pencilsketch/metrics"
	"pencilsketch/sketch"
)

// Output file name suffixes.
const (
	SketchSuffix  = "_sketch"
	ColoredSuffix = "_colored"
)

// ErrNoOutputs is returned when both outputs are disabled.
var ErrNoOutputs = errors.New("render: no outputs enabled")

// Options selects parameters and outputs for a Renderer.
type Options struct {
	Preset       string
	Params       sketch.Params
	OutputDir    string
	Format       imageio.Format
	JPEGQuality  int
	MaxDimension int // 0 keeps the input size
	WriteMono    bool
	WriteColored bool
}

// OptionsFromConfig copies the render settings out of cfg.
func OptionsFromConfig(cfg *core.Config) Options {
	return Options{
		Preset:       cfg.PresetName,
		Params:       cfg.Params,
		OutputDir:    cfg.OutputDir,
		Format:       cfg.OutputFormat,
		JPEGQuality:  cfg.JPEGQuality,
		MaxDimension: cfg.MaxDimension,
		WriteMono:    cfg.WriteMono,
		WriteColored: cfg.WriteColored,
	}
}

// HistoryWriter stores finished renders. *db.Repository implements it.
type HistoryWriter interface {
	InsertRender(ctx context.Context, rec db.RenderRecord) (int64, error)
}

// Outcome describes a successful render.
type Outcome struct {
	JobID       string
	Input       string
	Width       int
	Height      int
	SketchPath  string
	ColoredPath string
	OutputBytes int64
	Duration    time.Duration
	Stages      []metrics.StageTiming
}

// Renderer runs the sketch pipeline over images. It is safe for
// concurrent use as long as its Executor is.
type Renderer struct {
	opts    Options
	exec    sketch.Executor
	workers int
	metrics metrics.Collector
	history HistoryWriter
	logger  *logging.Logger
	newID   func() string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithMetrics records every render in c.
func WithMetrics(c metrics.Collector) Option {
	return func(r *Renderer) { r.metrics = c }
}

// WithHistory persists every render through h.
func WithHistory(h HistoryWriter) Option {
	return func(r *Renderer) { r.history = h }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logging.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// New creates a Renderer that runs filters on exec. A nil exec renders
// serially. The output directory is created if missing.
func New(opts Options, exec sketch.Executor, options ...Option) (*Renderer, error) {
	if err := opts.Params.Validate(); err != nil {
		return nil, err
	}
	if !opts.WriteMono && !opts.WriteColored {
		return nil, ErrNoOutputs
	}
	if opts.Format == "" {
		opts.Format = imageio.FormatPNG
	}
	if _, err := imageio.ParseFormat(string(opts.Format)); err != nil {
		return nil, err
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("render: create output dir: %w", err)
	}

	if exec == nil {
		exec = sketch.Serial{}
	}
	r := &Renderer{
		opts:    opts,
		exec:    exec,
		workers: 1,
		logger:  logging.NewNop(),
		newID:   uuid.NewString,
	}
	if p, ok := exec.(interface{ NumWorkers() int }); ok {
		r.workers = p.NumWorkers()
	}
	for _, o := range options {
		o(r)
	}
	return r, nil
}

// RenderFile decodes path and renders it. Outputs are named after the
// input file's base name.
func (r *Renderer) RenderFile(ctx context.Context, path string) (*Outcome, error) {
	return r.run(ctx, path, func() (image.Image, error) {
		img, _, err := imageio.ReadFile(path)
		return img, err
	})
}

// RenderImage renders an already decoded image. name is used for the
// output file names and in logs.
func (r *Renderer) RenderImage(ctx context.Context, img image.Image, name string) (*Outcome, error) {
	return r.run(ctx, name, func() (image.Image, error) {
		if img == nil || img.Bounds().Empty() {
			return nil, imageio.ErrEmptyImage
		}
		return img, nil
	})
}

func (r *Renderer) run(ctx context.Context, input string, load func() (image.Image, error)) (*Outcome, error) {
	out := &Outcome{JobID: r.newID(), Input: input}
	log := r.logger.With(logging.JobID(out.JobID), logging.InputPath(input), logging.Preset(r.opts.Preset))

	start := time.Now()
	err := r.process(ctx, out, load)
	out.Duration = time.Since(start)

	if err != nil && ctx.Err() != nil {
		log.Warn("render cancelled", zap.Error(err))
		return nil, err
	}

	r.record(ctx, out, start, err, log)

	if err != nil {
		log.Error("render failed", zap.Error(err))
		return nil, fmt.Errorf("render %s: %w", input, err)
	}

	log.Info("render complete",
		logging.Dimensions(out.Width, out.Height),
		zap.Duration("duration", out.Duration),
		zap.Int64("output_bytes", out.OutputBytes))
	return out, nil
}

// process checks ctx only between decode, pipeline and each write; a
// running filter is never interrupted.
func (r *Renderer) process(ctx context.Context, out *Outcome, load func() (image.Image, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	img, err := load()
	if err != nil {
		return err
	}
	if r.opts.MaxDimension > 0 {
		img = imageio.DownscaleToFit(img, r.opts.MaxDimension)
	}
	src := imageio.ToPacked(img)
	out.Width, out.Height = src.Width, src.Height

	if err := ctx.Err(); err != nil {
		return err
	}

	proc := sketch.NewProcessor(r.exec, sketch.WithObserver(func(stage sketch.Stage, d time.Duration) {
		out.Stages = append(out.Stages, metrics.StageTiming{Stage: string(stage), Duration: d})
	}))
	result, err := proc.Run(src, r.opts.Params)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(out.Input), filepath.Ext(out.Input))
	encOpts := imageio.EncodeOptions{Quality: r.opts.JPEGQuality}

	if r.opts.WriteMono {
		if out.SketchPath, err = r.write(ctx, base+SketchSuffix, result.Sketch, encOpts, out); err != nil {
			return err
		}
	}
	if r.opts.WriteColored {
		if out.ColoredPath, err = r.write(ctx, base+ColoredSuffix, result.Colored, encOpts, out); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) write(ctx context.Context, name string, img *sketch.Image, opts imageio.EncodeOptions, out *Outcome) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filepath.Join(r.opts.OutputDir, name+r.opts.Format.Extension())
	if err := imageio.WriteFile(path, img, opts); err != nil {
		return "", err
	}
	if info, err := os.Stat(path); err == nil {
		out.OutputBytes += info.Size()
	}
	return path, nil
}

// record reports the render to metrics and history. History failures are
// logged and never fail the render.
func (r *Renderer) record(ctx context.Context, out *Outcome, start time.Time, renderErr error, log *logging.Logger) {
	status := metrics.RenderStatusSuccess
	var errMsg string
	if renderErr != nil {
		status = metrics.RenderStatusError
		errMsg = renderErr.Error()
	}

	if r.metrics != nil {
		r.metrics.Record(metrics.RenderRecord{
			ID:        out.JobID,
			Input:     out.Input,
			Preset:    r.opts.Preset,
			Status:    status,
			StartTime: start,
			Duration:  out.Duration,
			Width:     out.Width,
			Height:    out.Height,
			Stages:    out.Stages,
			ErrorMsg:  errMsg,
		})
	}

	if r.history == nil {
		return
	}
	stages := make([]db.StageRecord, len(out.Stages))
	for i, s := range out.Stages {
		stages[i] = db.StageRecord{Name: s.Stage, Duration: s.Duration}
	}
	_, err := r.history.InsertRender(context.WithoutCancel(ctx), db.RenderRecord{
		JobID:        out.JobID,
		InputPath:    out.Input,
		Preset:       r.opts.Preset,
		Status:       status,
		Width:        out.Width,
		Height:       out.Height,
		Workers:      r.workers,
		Duration:     out.Duration,
		SketchPath:   out.SketchPath,
		ColoredPath:  out.ColoredPath,
		OutputBytes:  out.OutputBytes,
		ErrorMessage: errMsg,
		Stages:       stages,
		CreatedAt:    start,
	})
	if err != nil {
		log.Warn("failed to record render history", zap.Error(err))
		return
	}
	log.Debug("render history recorded")
}
