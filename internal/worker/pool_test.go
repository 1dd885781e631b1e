package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, concurrency int) *Pool {
	t.Helper()
	p := NewPool(PoolConfig{
		Concurrency: concurrency,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, p.Start(context.Background()))
	t.Cleanup(p.Stop)
	return p
}

func TestNewPool_Defaults(t *testing.T) {
	p := NewPool(PoolConfig{})
	assert.Equal(t, 1, p.concurrency)
	assert.NotNil(t, p.logger)
	assert.False(t, p.Running())
}

func TestPool_SubmitReturnsJobResult(t *testing.T) {
	p := newTestPool(t, 2)

	var ran bool
	err := p.Submit(context.Background(), "ok", func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	boom := errors.New("boom")
	err = p.Submit(context.Background(), "fail", func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestPool_BoundsConcurrency(t *testing.T) {
	p := newTestPool(t, 2)

	var current, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Submit(context.Background(), "sleep", func(ctx context.Context) error {
				n := atomic.AddInt32(&current, 1)
				for {
					old := atomic.LoadInt32(&peak)
					if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt32(&current, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&peak), int32(1))
}

func TestPool_RecoversPanics(t *testing.T) {
	p := newTestPool(t, 1)

	err := p.Submit(context.Background(), "panic", func(ctx context.Context) error {
		panic("corrupt input")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt input")

	// Pool still works afterwards
	assert.NoError(t, p.Submit(context.Background(), "ok", func(ctx context.Context) error { return nil }))
}

func TestPool_SubmitBeforeStart(t *testing.T) {
	p := NewPool(PoolConfig{})
	err := p.Submit(context.Background(), "x", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrStopped)
}

func TestPool_SubmitAfterStop(t *testing.T) {
	p := NewPool(PoolConfig{})
	require.NoError(t, p.Start(context.Background()))
	p.Stop()

	err := p.Submit(context.Background(), "x", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrStopped)
}

func TestPool_SubmitContextCancelled(t *testing.T) {
	p := newTestPool(t, 1)

	release := make(chan struct{})
	go func() {
		_ = p.Submit(context.Background(), "block", func(ctx context.Context) error {
			<-release
			return nil
		})
	}()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	// Wait until the blocking job has been picked up
	time.Sleep(10 * time.Millisecond)

	err := p.Submit(ctx, "queued", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPool_StopsWhenContextCancelled(t *testing.T) {
	p := NewPool(PoolConfig{Concurrency: 2})
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, p.Start(ctx))
	assert.True(t, p.Running())

	cancel()

	assert.Eventually(t, func() bool { return !p.Running() }, time.Second, 5*time.Millisecond)
}
