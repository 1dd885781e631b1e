// Package worker runs CPU-bound work, such as PDF text extraction,
// on a bounded set of goroutines so it cannot starve request handling.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrStopped is returned when submitting to a pool that is not running.
var ErrStopped = errors.New("worker pool stopped")

type job struct {
	ctx  context.Context
	name string
	fn   func(ctx context.Context) error
	done chan error
}

// Pool runs submitted jobs on a fixed number of goroutines.
type Pool struct {
	jobs   chan job
	logger *slog.Logger

	// Configuration
	concurrency int

	// Internal state
	mu       sync.RWMutex
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce *sync.Once
}

// PoolConfig holds configuration for the pool.
type PoolConfig struct {
	Concurrency int // Number of concurrent job processors
	Logger      *slog.Logger
}

// NewPool creates a new worker pool. Call Start before submitting.
func NewPool(cfg PoolConfig) *Pool {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	return &Pool{
		jobs:        make(chan job),
		logger:      logger,
		concurrency: concurrency,
	}
}

// Start launches the worker goroutines.
// They run until Stop is called or ctx is cancelled.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.stopOnce = &sync.Once{}
	stopCh, doneCh, stopOnce := p.stopCh, p.doneCh, p.stopOnce
	p.mu.Unlock()

	p.logger.Info("worker pool starting", "concurrency", p.concurrency)

	var wg sync.WaitGroup
	for i := 0; i < p.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			p.processLoop(ctx, workerID, stopCh)
		}(i)
	}

	go func() {
		wg.Wait()
		stopOnce.Do(func() { close(stopCh) })

		p.mu.Lock()
		p.running = false
		p.mu.Unlock()

		close(doneCh)
	}()

	return nil
}

// Stop stops the pool and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	p.mu.RLock()
	if !p.running {
		p.mu.RUnlock()
		return
	}
	stopCh, doneCh, stopOnce := p.stopCh, p.doneCh, p.stopOnce
	p.mu.RUnlock()

	stopOnce.Do(func() { close(stopCh) })
	<-doneCh

	p.logger.Info("worker pool stopped")
}

// Running reports whether the pool accepts jobs.
func (p *Pool) Running() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// Submit runs fn on a pool goroutine and waits for its result.
// It returns early with ctx.Err() if ctx is done first.
func (p *Pool) Submit(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	p.mu.RLock()
	running, stopCh := p.running, p.stopCh
	p.mu.RUnlock()
	if !running {
		return ErrStopped
	}

	j := job{ctx: ctx, name: name, fn: fn, done: make(chan error, 1)}

	select {
	case p.jobs <- j:
	case <-stopCh:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// processLoop is the main processing loop for a worker goroutine.
func (p *Pool) processLoop(ctx context.Context, workerID int, stopCh <-chan struct{}) {
	logger := p.logger.With("worker_id", workerID)

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case j := <-p.jobs:
			j.done <- p.run(j, logger)
		}
	}
}

// run executes a single job, converting panics into errors.
func (p *Pool) run(j job, logger *slog.Logger) (err error) {
	if err := j.ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", j.name, r)
			logger.Error("job panicked", "job", j.name, "panic", r)
		}
		logger.Debug("job finished", "job", j.name, "duration_ms", time.Since(start).Milliseconds())
	}()

	return j.fn(j.ctx)
}
