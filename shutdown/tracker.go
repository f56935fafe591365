// Package shutdown coordinates graceful stops: signal handling, waiting
// for in-flight renders and running cleanup in priority order.
package shutdown

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrTrackerClosed is returned when an operation starts after shutdown began.
var ErrTrackerClosed = errors.New("shutdown: operation tracker is closed")

// ErrWaitTimeout is returned when in-flight operations outlive Wait's timeout.
var ErrWaitTimeout = errors.New("shutdown: operations did not complete in time")

// OperationTracker counts in-flight operations so shutdown can wait for
// them to finish.
type OperationTracker struct {
	wg     sync.WaitGroup
	mu     sync.Mutex
	active atomic.Int64
	closed bool
}

// NewOperationTracker creates an open tracker.
func NewOperationTracker() *OperationTracker {
	return &OperationTracker{}
}

// Start registers an operation. It returns false once the tracker is
// closed; otherwise the caller must call Done.
func (t *OperationTracker) Start() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	t.wg.Add(1)
	t.active.Add(1)
	return true
}

// Done marks an operation complete.
func (t *OperationTracker) Done() {
	t.active.Add(-1)
	t.wg.Done()
}

// Wait blocks until every operation is done or timeout elapses.
func (t *OperationTracker) Wait(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return ErrWaitTimeout
	}
}

// Close rejects new operations. Running ones continue.
func (t *OperationTracker) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
}

// ActiveCount returns the number of running operations.
func (t *OperationTracker) ActiveCount() int64 {
	return t.active.Load()
}

// IsClosed reports whether Close was called.
func (t *OperationTracker) IsClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
