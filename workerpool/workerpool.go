// Package workerpool provides a persistent goroutine pool for fork/join data
// parallelism. A Pool is created once and reused by every filter stage, so
// a render does not pay goroutine spawn costs per stage.
//
// Usage:
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//
//	pool.ParallelFor(height, func(start, end int) {
//	    for y := start; y < end; y++ {
//	        processRow(y)
//	    }
//	})
package workerpool

import (
	"runtime"
	"sync"
)

// DefaultMinChunk is the smallest range handed to a single worker.
const DefaultMinChunk = 1

// Pool is a persistent worker pool. Workers are spawned at creation and live
// until Close is called.
type Pool struct {
	numWorkers int
	minChunk   int
	workC      chan workItem

	mu     sync.RWMutex
	closed bool
}

// workItem is one range of a parallel loop.
type workItem struct {
	fn      func()
	barrier *sync.WaitGroup
}

// Option configures a Pool.
type Option func(*Pool)

// WithMinChunk sets the minimum number of indices a worker receives. Loops
// shorter than two chunks run on the caller.
func WithMinChunk(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.minChunk = n
		}
	}
}

// New creates a pool with numWorkers goroutines.
// If numWorkers <= 0, GOMAXPROCS is used.
func New(numWorkers int, opts ...Option) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: numWorkers,
		minChunk:   DefaultMinChunk,
		workC:      make(chan workItem, numWorkers*2),
	}
	for _, opt := range opts {
		opt(p)
	}

	for range numWorkers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for item := range p.workC {
		item.fn()
		item.barrier.Done()
	}
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Close stops the workers once queued work has drained. It is safe to call
// more than once; a closed pool keeps working by running loops sequentially.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.workC)
}

// ParallelFor runs fn over [0, n) split into contiguous ranges, one per
// worker, and blocks until every range has returned.
func (p *Pool) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	workers := min(p.numWorkers, n/p.minChunk)
	if p.closed || workers <= 1 {
		fn(0, n)
		return
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for i := range workers {
		start := i * chunkSize
		if start >= n {
			break
		}
		end := min(start+chunkSize, n)

		wg.Add(1)
		p.workC <- workItem{
			fn:      func() { fn(start, end) },
			barrier: &wg,
		}
	}
	wg.Wait()
}
