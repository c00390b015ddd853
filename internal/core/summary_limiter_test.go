package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryLimiter_AcquireRelease(t *testing.T) {
	limiter := NewSummaryLimiter(2, time.Second)
	ctx := context.Background()

	assert.Equal(t, 0, limiter.ActiveCount())
	assert.Equal(t, 2, limiter.Available())

	require.NoError(t, limiter.Acquire(ctx))
	require.NoError(t, limiter.Acquire(ctx))
	assert.Equal(t, 2, limiter.ActiveCount())
	assert.Equal(t, 0, limiter.Available())

	limiter.Release()
	assert.Equal(t, 1, limiter.ActiveCount())
	assert.Equal(t, 1, limiter.Available())

	limiter.Release()
	assert.Equal(t, 0, limiter.ActiveCount())
}

func TestSummaryLimiter_BlocksWhenFull(t *testing.T) {
	limiter := NewSummaryLimiter(1, 100*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, limiter.Acquire(ctx))
	defer limiter.Release()

	start := time.Now()
	err := limiter.Acquire(ctx)
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, ErrTooManySummaries)
	assert.GreaterOrEqual(t, elapsed, 90*time.Millisecond)
	assert.Equal(t, "SUM004", MapError(err).Code)
}

func TestSummaryLimiter_ConcurrentAccess(t *testing.T) {
	const maxConcurrent = 3
	const totalRequests = 10

	limiter := NewSummaryLimiter(maxConcurrent, time.Second)

	var wg sync.WaitGroup
	var mu sync.Mutex
	maxObserved := 0

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := limiter.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer limiter.Release()

			mu.Lock()
			if current := limiter.ActiveCount(); current > maxObserved {
				maxObserved = current
			}
			mu.Unlock()

			time.Sleep(10 * time.Millisecond)
		}()
	}

	wg.Wait()

	assert.LessOrEqual(t, maxObserved, maxConcurrent)
	assert.Equal(t, 0, limiter.ActiveCount())
}

func TestSummaryLimiter_TryAcquire(t *testing.T) {
	limiter := NewSummaryLimiter(1, time.Second)

	require.True(t, limiter.TryAcquire())
	assert.False(t, limiter.TryAcquire())

	limiter.Release()
	require.True(t, limiter.TryAcquire())
	limiter.Release()
}

func TestSummaryLimiter_ContextCancellation(t *testing.T) {
	limiter := NewSummaryLimiter(1, 5*time.Second)
	require.NoError(t, limiter.Acquire(context.Background()))

	cancelCtx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- limiter.Acquire(cancelCtx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Error("Acquire did not return after context cancellation")
	}

	limiter.Release()
}

func TestSummaryLimiter_WaitForDrain(t *testing.T) {
	limiter := NewSummaryLimiter(2, time.Second)
	ctx := context.Background()

	require.NoError(t, limiter.Acquire(ctx))
	require.NoError(t, limiter.Acquire(ctx))

	drainDone := make(chan error, 1)
	go func() {
		drainDone <- limiter.WaitForDrain(context.Background())
	}()

	select {
	case <-drainDone:
		t.Error("WaitForDrain returned too early")
	case <-time.After(50 * time.Millisecond):
	}

	limiter.Release()
	limiter.Release()

	select {
	case err := <-drainDone:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Error("WaitForDrain did not complete after all released")
	}
}

func TestSummaryLimiter_WaitForDrain_ContextCancelled(t *testing.T) {
	limiter := NewSummaryLimiter(1, time.Second)
	require.NoError(t, limiter.Acquire(context.Background()))
	defer limiter.Release()

	cancelCtx, cancel := context.WithCancel(context.Background())
	drainDone := make(chan error, 1)
	go func() {
		drainDone <- limiter.WaitForDrain(cancelCtx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-drainDone:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Error("WaitForDrain did not return after context cancellation")
	}
}

func TestSummaryLimiter_Status(t *testing.T) {
	limiter := NewSummaryLimiter(3, time.Second)

	assert.Equal(t, SummaryLimiterStatus{Active: 0, Available: 3, MaxConcurrent: 3}, limiter.Status())

	ctx := context.Background()
	require.NoError(t, limiter.Acquire(ctx))
	require.NoError(t, limiter.Acquire(ctx))
	assert.Equal(t, SummaryLimiterStatus{Active: 2, Available: 1, MaxConcurrent: 3}, limiter.Status())

	limiter.Release()
	limiter.Release()
}

func TestSummaryLimiter_DefaultValues(t *testing.T) {
	limiter := NewSummaryLimiter(0, 0)
	assert.Equal(t, DefaultMaxConcurrentSummaries, limiter.MaxConcurrent())
}

func TestSummaryLimiter_UnblocksWaiter(t *testing.T) {
	limiter := NewSummaryLimiter(1, time.Second)
	ctx := context.Background()
	require.NoError(t, limiter.Acquire(ctx))

	acquired := make(chan struct{})
	go func() {
		if err := limiter.Acquire(ctx); err != nil {
			t.Errorf("waiting Acquire failed: %v", err)
			return
		}
		close(acquired)
		limiter.Release()
	}()

	time.Sleep(50 * time.Millisecond)
	limiter.Release()

	select {
	case <-acquired:
	case <-time.After(500 * time.Millisecond):
		t.Error("waiter did not acquire after release")
	}
}
