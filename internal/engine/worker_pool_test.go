package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPoolBasic(t *testing.T) {
	pool := NewWorkerPool(2, nil)
	defer pool.Close()

	done := make(chan int, 1)
	if err := pool.Submit(context.Background(), func() { done <- 42 }); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	select {
	case v := <-done:
		if v != 42 {
			t.Errorf("expected 42, got %d", v)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for task")
	}
}

func TestWorkerPoolConcurrencyBound(t *testing.T) {
	const workers = 3
	pool := NewWorkerPool(workers, nil)
	defer pool.Close()

	var (
		running, peak atomic.Int32
		wg            sync.WaitGroup
	)
	for range 20 {
		wg.Add(1)
		if err := pool.Submit(context.Background(), func() {
			defer wg.Done()
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
		}); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}
	wg.Wait()

	if p := peak.Load(); p > workers {
		t.Errorf("expected at most %d concurrent tasks, saw %d", workers, p)
	}
}

func TestWorkerPoolSubmitCanceledContext(t *testing.T) {
	pool := NewWorkerPool(1, nil)
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Bool
	err := pool.Submit(ctx, func() { ran.Store(true) })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if ran.Load() {
		t.Error("task ran despite canceled submit")
	}
}

func TestWorkerPoolBackpressure(t *testing.T) {
	pool := NewWorkerPool(1, nil)
	defer pool.Close()

	release := make(chan struct{})
	block := func() { <-release }

	// One running, one queued.
	for range 2 {
		if err := pool.Submit(context.Background(), block); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := pool.Submit(ctx, block); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected backpressure to time out, got %v", err)
	}
	close(release)
}

func TestWorkerPoolShutdown(t *testing.T) {
	pool := NewWorkerPool(2, nil)

	var finished atomic.Int32
	for range 5 {
		if err := pool.Submit(context.Background(), func() {
			time.Sleep(10 * time.Millisecond)
			finished.Add(1)
		}); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	pool.Close()
	if n := finished.Load(); n != 5 {
		t.Errorf("expected accepted work to finish before Close returns, got %d/5", n)
	}

	if err := pool.Submit(context.Background(), func() {}); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed after shutdown, got %v", err)
	}
	pool.Close() // idempotent
}

func TestWorkerPoolSurvivesPanic(t *testing.T) {
	pool := NewWorkerPool(1, nil)
	defer pool.Close()

	if err := pool.Submit(context.Background(), func() { panic("boom") }); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	done := make(chan struct{})
	if err := pool.Submit(context.Background(), func() { close(done) }); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not survive panic")
	}
}

func TestWorkerPoolZeroWorkers(t *testing.T) {
	pool := NewWorkerPool(0, nil)
	defer pool.Close()

	if pool.Workers() <= 0 {
		t.Errorf("expected positive worker count, got %d", pool.Workers())
	}
}
