package shutdown

import "sync"

// SignalCounter counts shutdown signals and calls onForce once the count
// reaches forceAfter: the first signal asks for a graceful stop, the
// second forces one.
type SignalCounter struct {
	mu         sync.Mutex
	count      int
	forceAfter int
	onForce    func()
}

// NewSignalCounter creates a SignalCounter. onForce may be nil.
func NewSignalCounter(forceAfter int, onForce func()) *SignalCounter {
	return &SignalCounter{forceAfter: forceAfter, onForce: onForce}
}

// Increment records a signal and returns the new count. onForce runs under
// the lock, so it should exit the process or return quickly.
func (s *SignalCounter) Increment() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.count++
	if s.count >= s.forceAfter && s.onForce != nil {
		s.onForce()
	}
	return s.count
}

// Count returns the number of signals seen.
func (s *SignalCounter) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}
