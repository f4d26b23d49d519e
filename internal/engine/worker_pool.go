package engine

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// WorkerPool runs submitted closures on a fixed set of goroutines. Search
// tasks from concurrent searches share the pool, so the number of shards
// open at once never exceeds the worker count.
type WorkerPool struct {
	numWorkers int
	workCh     chan func()
	stopCh     chan struct{}
	wg         sync.WaitGroup
	closed     atomic.Bool
	submitMu   sync.RWMutex
	logger     *slog.Logger
}

// NewWorkerPool starts numWorkers goroutines. numWorkers <= 0 selects
// GOMAXPROCS.
func NewWorkerPool(numWorkers int, logger *slog.Logger) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	wp := &WorkerPool{
		numWorkers: numWorkers,
		workCh:     make(chan func(), numWorkers),
		stopCh:     make(chan struct{}),
		logger:     logger,
	}

	wp.wg.Add(numWorkers)
	for range numWorkers {
		go wp.worker()
	}
	return wp
}

// Workers returns the number of worker goroutines.
func (wp *WorkerPool) Workers() int {
	return wp.numWorkers
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.stopCh:
			// Drain work accepted before Close.
			for {
				select {
				case work, ok := <-wp.workCh:
					if !ok {
						return
					}
					wp.run(work)
				default:
					return
				}
			}
		case work, ok := <-wp.workCh:
			if !ok {
				return
			}
			wp.run(work)
		}
	}
}

// run executes work and keeps the worker alive if it panics.
func (wp *WorkerPool) run(work func()) {
	defer func() {
		if r := recover(); r != nil {
			wp.logger.Error("worker recovered from panic",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()
	work()
}

// Submit enqueues task, blocking while every worker is busy and the queue
// is full.
//
// Error conditions:
//   - ErrPoolClosed if the pool is closed
//   - ctx.Err() if ctx is done before the task is enqueued
func (wp *WorkerPool) Submit(ctx context.Context, task func()) error {
	wp.submitMu.RLock()
	defer wp.submitMu.RUnlock()

	if wp.closed.Load() {
		return ErrPoolClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case wp.workCh <- task:
		return nil
	case <-wp.stopCh:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work, runs what was already accepted and waits for
// the workers to exit. It is idempotent.
func (wp *WorkerPool) Close() {
	if !wp.closed.CompareAndSwap(false, true) {
		return
	}

	wp.submitMu.Lock()
	close(wp.stopCh)
	close(wp.workCh)
	wp.submitMu.Unlock()

	wp.wg.Wait()
}
