package shutdown

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pencilsketch/core"
	"pencilsketch/logging"
)

// DefaultTimeout bounds the whole shutdown sequence.
const DefaultTimeout = 30 * time.Second

// Manager ties together signal handling, in-flight render tracking and
// ordered cleanup.
//
// Usage:
//
//	m := shutdown.NewManager(logger)
//	m.Register("history", shutdown.PriorityDatabase, func(ctx context.Context) error {
//	    return database.Close()
//	})
//	m.Start()
//	go watcher.Run(m.Context())
//	m.Wait()
//	err := m.Shutdown()
type Manager struct {
	logger  *logging.Logger
	timeout time.Duration
	exit    func(code int)

	ctx    context.Context
	cancel context.CancelFunc

	tracker  *OperationTracker
	registry *Registry
	signals  *SignalCounter
	sigChan  chan os.Signal
	sigDone  chan struct{}

	mu       sync.Mutex
	started  bool
	shutdown bool
	received os.Signal
}

// Option configures a Manager.
type Option func(*Manager)

// WithTimeout sets the shutdown timeout.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

// WithExitFunc replaces os.Exit for the forced exit on a second signal.
func WithExitFunc(fn func(code int)) Option {
	return func(m *Manager) { m.exit = fn }
}

// NewManager creates a Manager. Call Start to listen for SIGINT/SIGTERM.
func NewManager(logger *logging.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		logger:   logger.Named("shutdown"),
		timeout:  DefaultTimeout,
		exit:     os.Exit,
		ctx:      ctx,
		cancel:   cancel,
		tracker:  NewOperationTracker(),
		registry: NewRegistry(),
		sigChan:  make(chan os.Signal, 2),
		sigDone:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.signals = NewSignalCounter(2, func() {
		m.logger.Warn("received second signal, forcing exit")
		m.exit(core.ExitCodeError)
	})
	return m
}

// Context is cancelled when the first shutdown signal arrives.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Register adds a cleanup function. Lower priority runs first.
func (m *Manager) Register(name string, priority int, fn Func) {
	m.registry.Register(name, priority, fn)
	m.logger.Debug("registered shutdown handler", zap.String("name", name), zap.Int("priority", priority))
}

// Start listens for SIGINT and SIGTERM until Shutdown. Calling it twice, or
// after Shutdown, is a no-op.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started || m.shutdown {
		return
	}
	m.started = true

	signal.Notify(m.sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer close(m.sigDone)
		for sig := range m.sigChan {
			m.Trigger(sig)
		}
	}()
}

// Trigger behaves as if sig had been received: the first call cancels
// Context, the second forces an exit. sig may be nil for a programmatic stop.
func (m *Manager) Trigger(sig os.Signal) {
	if m.signals.Increment() != 1 {
		return
	}
	m.mu.Lock()
	m.received = sig
	m.mu.Unlock()

	name := "stop"
	if sig != nil {
		name = sig.String()
	}
	m.logger.Info("shutdown requested", zap.String("signal", name))
	m.cancel()
}

// Signal returns the first signal received, or nil.
func (m *Manager) Signal() os.Signal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.received
}

// ExitCode maps the received signal to a process exit code.
func (m *Manager) ExitCode() int {
	return core.ExitCodeForSignal(m.Signal())
}

// Wait blocks until Context is cancelled.
func (m *Manager) Wait() {
	<-m.ctx.Done()
}

// Track runs fn as an in-flight operation that Shutdown waits for.
// It returns ErrTrackerClosed once shutdown has begun.
func (m *Manager) Track(fn func() error) error {
	if !m.tracker.Start() {
		return ErrTrackerClosed
	}
	defer m.tracker.Done()
	return fn()
}

// ActiveOperations returns the number of running tracked operations.
func (m *Manager) ActiveOperations() int64 {
	return m.tracker.ActiveCount()
}

// IsShuttingDown reports whether Shutdown has been called.
func (m *Manager) IsShuttingDown() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shutdown
}

// RegisteredHandlers lists cleanup functions in execution order.
func (m *Manager) RegisteredHandlers() []string {
	return m.registry.Names()
}

// Shutdown stops accepting tracked operations, waits for running ones
// and then runs the cleanup functions within the remaining timeout.
// It is idempotent.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return nil
	}
	m.shutdown = true
	started := m.started
	m.mu.Unlock()

	m.cancel()
	start := time.Now()

	m.tracker.Close()
	if n := m.tracker.ActiveCount(); n > 0 {
		m.logger.Info("waiting for in-flight renders", zap.Int64("active", n))
	}
	if err := m.tracker.Wait(m.timeout); err != nil {
		m.logger.Warn("timed out waiting for in-flight renders",
			zap.Int64("remaining", m.tracker.ActiveCount()))
	}

	remaining := max(m.timeout-time.Since(start), time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), remaining)
	defer cancel()

	errs := m.registry.Shutdown(ctx)
	for _, err := range errs {
		m.logger.Error("cleanup failed", zap.Error(err))
	}

	if started {
		signal.Stop(m.sigChan)
		close(m.sigChan)
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown completed with %d errors", len(errs))
	}
	m.logger.Info("shutdown complete", zap.Duration("duration", time.Since(start)))
	return nil
}
