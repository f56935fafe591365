package sketch

// Executor splits an index space [0, n) into disjoint ranges and runs fn on
// each range, returning only after every range has been processed.
//
// Implementations must guarantee that the ranges cover [0, n) exactly once.
// Filters rely on the return as the barrier between stages.
type Executor interface {
	ParallelFor(n int, fn func(start, end int))
}

// Serial runs the whole range on the calling goroutine.
type Serial struct{}

// ParallelFor calls fn(0, n) when n is positive.
func (Serial) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	fn(0, n)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(n int, fn func(start, end int))

// ParallelFor calls f(n, fn).
func (f ExecutorFunc) ParallelFor(n int, fn func(start, end int)) {
	f(n, fn)
}
