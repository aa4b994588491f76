package ocr

import (
	"context"
	"errors"
	"image"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed is returned when work is submitted after Close
var ErrPoolClosed = errors.New("worker pool closed")

// WorkerPool bounds how many OCR jobs run at once across all requests
type WorkerPool struct {
	workers  int
	jobQueue chan func()
	wg       sync.WaitGroup
	once     sync.Once

	mu     sync.RWMutex
	closed bool

	totalJobs     int64
	completedJobs int64
	activeWorkers int64
}

// PoolStats is a snapshot of pool counters
type PoolStats struct {
	Workers       int   `json:"workers"`
	TotalJobs     int64 `json:"total_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
	ActiveWorkers int64 `json:"active_workers"`
}

// NewWorkerPool creates a new worker pool with the specified number of workers
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &WorkerPool{
		workers:  workers,
		jobQueue: make(chan func(), workers*2),
	}
}

// Start launches the workers; calling it again is a no-op
func (wp *WorkerPool) Start() {
	wp.once.Do(func() {
		for i := 0; i < wp.workers; i++ {
			go wp.worker()
		}
	})
}

func (wp *WorkerPool) worker() {
	for job := range wp.jobQueue {
		atomic.AddInt64(&wp.activeWorkers, 1)
		job()
		atomic.AddInt64(&wp.activeWorkers, -1)
		atomic.AddInt64(&wp.completedJobs, 1)
		wp.wg.Done()
	}
}

// Submit queues a job without waiting for it. It returns false once the pool is closed.
func (wp *WorkerPool) Submit(job func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return false
	}
	wp.wg.Add(1)
	atomic.AddInt64(&wp.totalJobs, 1)
	wp.jobQueue <- job
	return true
}

// Run queues a job and blocks until it has finished or ctx is done.
// A job that already started keeps running after ctx expires; its results must
// not be read by the caller in that case.
func (wp *WorkerPool) Run(ctx context.Context, job func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	wp.mu.RLock()
	if wp.closed {
		wp.mu.RUnlock()
		return ErrPoolClosed
	}
	done := make(chan struct{})
	wp.wg.Add(1)
	atomic.AddInt64(&wp.totalJobs, 1)
	wrapped := func() {
		defer close(done)
		job()
	}
	select {
	case wp.jobQueue <- wrapped:
		wp.mu.RUnlock()
	case <-ctx.Done():
		wp.wg.Done()
		atomic.AddInt64(&wp.totalJobs, -1)
		wp.mu.RUnlock()
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until every submitted job has completed
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// Close stops accepting work and lets workers exit after draining the queue
func (wp *WorkerPool) Close() {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if wp.closed {
		return
	}
	wp.closed = true
	close(wp.jobQueue)
}

// GetStats returns current counters
func (wp *WorkerPool) GetStats() PoolStats {
	return PoolStats{
		Workers:       wp.workers,
		TotalJobs:     atomic.LoadInt64(&wp.totalJobs),
		CompletedJobs: atomic.LoadInt64(&wp.completedJobs),
		ActiveWorkers: atomic.LoadInt64(&wp.activeWorkers),
	}
}

// pooledEngine runs every recognition through a WorkerPool
type pooledEngine struct {
	engine Engine
	pool   *WorkerPool
}

// NewPooledEngine limits concurrent calls to engine to the pool's worker count
func NewPooledEngine(engine Engine, pool *WorkerPool) Engine {
	return &pooledEngine{engine: engine, pool: pool}
}

func (p *pooledEngine) Recognize(ctx context.Context, img image.Image, profile Profile) (Result, error) {
	type outcome struct {
		result Result
		err    error
	}
	out := make(chan outcome, 1)
	if err := p.pool.Run(ctx, func() {
		res, err := p.engine.Recognize(ctx, img, profile)
		out <- outcome{result: res, err: err}
	}); err != nil {
		return Result{}, err
	}
	o := <-out
	return o.result, o.err
}
