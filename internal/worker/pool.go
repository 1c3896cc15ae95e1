// Package worker provides a worker pool for scoring candidate moves in
// parallel.
package worker

import (
	"sync"
	"sync/atomic"

	"github.com/lgbarn/fairychess-go/internal/engine"
)

// Task is one root move to be scored.
type Task struct {
	Move  engine.Move
	Index int // Original index for tracking
}

// Result is the score of one root move.
type Result struct {
	Move  engine.Move
	Index int
	Score float64
	Nodes uint64 // Positions evaluated below the move
	Err   error
}

// ProcessFunc scores a task. worker is the index of the goroutine running
// it, so callers can keep one scratch game per worker.
type ProcessFunc func(worker int, task Task) Result

// Pool manages a pool of workers scoring moves in parallel.
type Pool struct {
	numWorkers  int
	bufferSize  int
	workChan    chan Task
	resultChan  chan Result
	processFunc ProcessFunc
	wg          sync.WaitGroup
	stopFlag    int32 // Atomic flag for early termination
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithWorkers sets the number of worker goroutines.
func WithWorkers(n int) PoolOption {
	return func(p *Pool) {
		if n >= 1 {
			p.numWorkers = n
		}
	}
}

// WithBufferSize sets the channel buffer size.
func WithBufferSize(size int) PoolOption {
	return func(p *Pool) {
		if size >= 1 {
			p.bufferSize = size
		}
	}
}

// NewPool creates a worker pool using functional options.
// processFunc is required; other settings have sensible defaults.
// Default: 1 worker, buffer size of 10.
func NewPool(processFunc ProcessFunc, opts ...PoolOption) *Pool {
	p := &Pool{
		numWorkers:  1,
		bufferSize:  10,
		processFunc: processFunc,
	}
	for _, opt := range opts {
		opt(p)
	}
	// Create channels after options are applied
	p.workChan = make(chan Task, p.bufferSize)
	p.resultChan = make(chan Result, p.bufferSize)
	return p
}

// Start starts the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// worker processes tasks from the work channel until it is closed.
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for task := range p.workChan {
		if p.IsStopped() {
			continue // Drain channel without processing
		}
		p.resultChan <- p.processFunc(id, task)
	}
}

// Submit submits a task for processing.
// This may block if the work channel buffer is full.
func (p *Pool) Submit(task Task) {
	p.workChan <- task
}

// TrySubmit attempts to submit a task without blocking.
// Returns false if the work channel is full or the pool is stopped.
func (p *Pool) TrySubmit(task Task) bool {
	if atomic.LoadInt32(&p.stopFlag) != 0 {
		return false
	}
	select {
	case p.workChan <- task:
		return true
	default:
		return false
	}
}

// Stop signals workers to stop processing new tasks.
// Tasks already in the channel will be drained but not processed.
func (p *Pool) Stop() {
	atomic.StoreInt32(&p.stopFlag, 1)
}

// IsStopped returns true if the pool has been stopped.
func (p *Pool) IsStopped() bool {
	return atomic.LoadInt32(&p.stopFlag) != 0
}

// Close closes the work channel and waits for all workers to finish.
// After calling Close, the result channel will be closed when all workers are done.
func (p *Pool) Close() {
	close(p.workChan)
	p.wg.Wait()
	close(p.resultChan)
}

// Results returns the result channel for reading scored moves.
func (p *Pool) Results() <-chan Result {
	return p.resultChan
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}
