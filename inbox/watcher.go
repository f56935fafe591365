// Package inbox watches a hot folder and renders every image dropped into
// it, moving the source to a done or failed folder afterwards.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"pencilsketch/logging"
	"pencilsketch/render"
)

// DefaultMinAge is how long a file must sit unmodified before it is picked
// up, so partially copied files are skipped.
const DefaultMinAge = 2 * time.Second

var supportedExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// IsSupported reports whether path has an image extension the watcher picks up.
func IsSupported(path string) bool {
	return supportedExts[strings.ToLower(filepath.Ext(path))]
}

// FileRenderer renders one file. *render.Renderer implements it.
type FileRenderer interface {
	RenderFile(ctx context.Context, path string) (*render.Outcome, error)
}

// Config locates the hot folders.
type Config struct {
	InboxDir     string
	DoneDir      string
	FailedDir    string
	PollInterval time.Duration
	MinAge       time.Duration
}

// Stats counts files handled by a Watcher.
type Stats struct {
	Processed int64
	Failed    int64
}

// Watcher polls Config.InboxDir.
type Watcher struct {
	renderer FileRenderer
	cfg      Config
	logger   *logging.Logger
	done     chan struct{}

	processed atomic.Int64
	failed    atomic.Int64

	now func() time.Time
}

// NewWatcher creates a Watcher. A zero PollInterval defaults to five seconds.
func NewWatcher(r FileRenderer, cfg Config, logger *logging.Logger) *Watcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Watcher{
		renderer: r,
		cfg:      cfg,
		logger:   logger,
		done:     make(chan struct{}),
		now:      time.Now,
	}
}

// Done returns a channel that is closed when Run returns.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// Stats returns the counts so far.
func (w *Watcher) Stats() Stats {
	return Stats{Processed: w.processed.Load(), Failed: w.failed.Load()}
}

// Run polls the inbox until ctx is cancelled. A scan error is logged and
// retried on the next tick.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.done)

	for _, dir := range []string{w.cfg.InboxDir, w.cfg.DoneDir, w.cfg.FailedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("inbox: create %s: %w", dir, err)
		}
	}

	w.logger.Info("watching inbox",
		zap.String("inbox", w.cfg.InboxDir),
		zap.Duration("poll_interval", w.cfg.PollInterval))

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := w.PollOnce(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error("inbox scan failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			w.logger.Info("stopping inbox watcher", zap.Int64("processed", w.processed.Load()), zap.Int64("failed", w.failed.Load()))
			return nil
		case <-ticker.C:
		}
	}
}

// PollOnce renders every ready file currently in the inbox, oldest first,
// and returns how many succeeded and failed during this pass. ctx is
// checked between files.
func (w *Watcher) PollOnce(ctx context.Context) (Stats, error) {
	var pass Stats

	files, err := w.pending()
	if err != nil {
		return pass, err
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return pass, err
		}

		log := w.logger.With(logging.InputPath(path))
		_, renderErr := w.renderer.RenderFile(ctx, path)
		if renderErr != nil && ctx.Err() != nil {
			// Leave the file for the next run.
			return pass, ctx.Err()
		}

		destDir := w.cfg.DoneDir
		if renderErr != nil {
			destDir = w.cfg.FailedDir
			pass.Failed++
			w.failed.Add(1)
		} else {
			pass.Processed++
			w.processed.Add(1)
		}

		dest, err := moveFile(path, destDir)
		if err != nil {
			log.Error("failed to move input out of inbox", zap.Error(err))
			continue
		}
		log.Debug("input moved", logging.OutputPath(dest))
	}
	return pass, nil
}

type pendingFile struct {
	path    string
	modTime time.Time
}

// pending lists supported files old enough to be complete, oldest first.
func (w *Watcher) pending() ([]string, error) {
	entries, err := os.ReadDir(w.cfg.InboxDir)
	if err != nil {
		return nil, fmt.Errorf("inbox: read %s: %w", w.cfg.InboxDir, err)
	}

	now := w.now()
	var files []pendingFile
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") || !IsSupported(e.Name()) || isRenderOutput(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < w.cfg.MinAge {
			continue
		}
		files = append(files, pendingFile{filepath.Join(w.cfg.InboxDir, e.Name()), info.ModTime()})
	}

	slices.SortFunc(files, func(a, b pendingFile) int {
		if c := a.modTime.Compare(b.modTime); c != 0 {
			return c
		}
		return strings.Compare(a.path, b.path)
	})

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}

// isRenderOutput reports whether name looks like a file written by the
// renderer, so outputs landing in the inbox are never rendered again.
func isRenderOutput(name string) bool {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.HasSuffix(stem, render.SketchSuffix) || strings.HasSuffix(stem, render.ColoredSuffix)
}

// moveFile renames src into dir, adding a numeric suffix if the name is taken.
func moveFile(src, dir string) (string, error) {
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	dest := filepath.Join(dir, base)
	for i := 1; ; i++ {
		_, err := os.Stat(dest)
		if errors.Is(err, os.ErrNotExist) {
			break
		}
		if err != nil {
			return "", err
		}
		dest = filepath.Join(dir, fmt.Sprintf("%s-%d%s", stem, i, ext))
	}

	if err := os.Rename(src, dest); err != nil {
		return "", fmt.Errorf("inbox: move %s: %w", src, err)
	}
	return dest, nil
}
