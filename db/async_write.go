package db

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultQueueCapacity is the default buffer size for queued history writes.
const DefaultQueueCapacity = 64

// DefaultDrainTimeout bounds how long Stop waits for queued writes.
const DefaultDrainTimeout = 10 * time.Second

// ErrWriterStopped is returned by Enqueue once the writer has been stopped.
var ErrWriterStopped = errors.New("db: async writer stopped")

// ErrQueueFull is returned by Enqueue when the buffer has no free slot.
var ErrQueueFull = errors.New("db: async write queue full")

// WriteFunc performs a single queued write.
type WriteFunc func(ctx context.Context) error

// AsyncWriter runs history writes on a background goroutine so that a
// render never waits on SQLite. Writes are applied in the order queued.
type AsyncWriter struct {
	queue        chan WriteFunc
	onError      func(error)
	drainTimeout time.Duration

	mu      sync.Mutex
	started bool
	stopped bool
	done    chan struct{}
}

// AsyncWriterConfig configures an AsyncWriter.
type AsyncWriterConfig struct {
	QueueCapacity int
	DrainTimeout  time.Duration
	// OnError receives errors returned by queued writes. May be nil.
	OnError func(error)
}

// NewAsyncWriter creates a writer. Call Start before queueing writes.
func NewAsyncWriter(config AsyncWriterConfig) *AsyncWriter {
	if config.QueueCapacity <= 0 {
		config.QueueCapacity = DefaultQueueCapacity
	}
	if config.DrainTimeout <= 0 {
		config.DrainTimeout = DefaultDrainTimeout
	}
	return &AsyncWriter{
		queue:        make(chan WriteFunc, config.QueueCapacity),
		onError:      config.OnError,
		drainTimeout: config.DrainTimeout,
		done:         make(chan struct{}),
	}
}

// Start launches the background goroutine. Calling it twice is a no-op.
func (w *AsyncWriter) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.stopped {
		return
	}
	w.started = true
	go w.run()
}

// IsStarted reports whether the writer is accepting work.
func (w *AsyncWriter) IsStarted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.started && !w.stopped
}

// Enqueue queues fn without blocking.
func (w *AsyncWriter) Enqueue(fn WriteFunc) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped || !w.started {
		return ErrWriterStopped
	}
	select {
	case w.queue <- fn:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop stops accepting writes and waits for the queue to drain, up to the
// drain timeout or until ctx is done.
func (w *AsyncWriter) Stop(ctx context.Context) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	started := w.started
	close(w.queue)
	w.mu.Unlock()

	if !started {
		return nil
	}

	timer := time.NewTimer(w.drainTimeout)
	defer timer.Stop()
	select {
	case <-w.done:
		return nil
	case <-timer.C:
		return errors.New("db: timed out draining async writes")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *AsyncWriter) run() {
	defer close(w.done)
	for fn := range w.queue {
		if err := fn(context.Background()); err != nil && w.onError != nil {
			w.onError(err)
		}
	}
}
