package shutdown

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Func releases one resource during shutdown.
type Func func(ctx context.Context) error

// Priorities used by the pencil command. Lower runs first.
const (
	PriorityWorkers  = 10 // stop the inbox watcher and cleanup scheduler
	PriorityDatabase = 30 // drain async history writes, then close
	PriorityFiles    = 40 // remove partial outputs
	PriorityLogger   = 90
)

type entry struct {
	name     string
	priority int
	fn       Func
}

// Registry holds cleanup functions and runs them once, in priority order.
// Entries with equal priority run in registration order.
type Registry struct {
	mu      sync.Mutex
	entries []entry
	closed  bool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds fn. Registration after Shutdown is ignored.
func (r *Registry) Register(name string, priority int, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.entries = append(r.entries, entry{name: name, priority: priority, fn: fn})
}

// Shutdown runs every function, even after failures, and returns the
// errors. Later calls return nil.
func (r *Registry) Shutdown(ctx context.Context) []error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	sorted := r.sortedLocked()
	r.mu.Unlock()

	var errs []error
	for _, e := range sorted {
		if err := e.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.name, err))
		}
	}
	return errs
}

// Names lists registered functions in execution order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	sorted := r.sortedLocked()
	names := make([]string, len(sorted))
	for i, e := range sorted {
		names[i] = e.name
	}
	return names
}

// Count returns the number of registered functions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) sortedLocked() []entry {
	sorted := slices.Clone(r.entries)
	slices.SortStableFunc(sorted, func(a, b entry) int {
		return a.priority - b.priority
	})
	return sorted
}
