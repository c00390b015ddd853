package core

// summary_limiter.go implements concurrency control for AI summary calls.
//
// The limiter uses a weighted semaphore to restrict parallel summaries to a
// configurable maximum, bounding API spend and outbound connections. When
// all slots are occupied, new requests wait up to maxWait before failing
// with ErrTooManySummaries.
//
// The limiter also supports graceful shutdown via WaitForDrain, which blocks
// until all active summaries complete.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTooManySummaries is returned when all summary slots are occupied and
// the wait timeout expires. Clients should retry after a short delay.
var ErrTooManySummaries = errors.New("too many summaries in progress")

// DefaultMaxConcurrentSummaries is the default limit for parallel summaries.
const DefaultMaxConcurrentSummaries = 4

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 10 * time.Second

// SummaryLimiter controls concurrent summary calls.
type SummaryLimiter struct {
	sem     *semaphore.Weighted
	max     int64
	maxWait time.Duration
	active  atomic.Int64
}

// NewSummaryLimiter creates a limiter that allows at most maxConcurrent
// simultaneous summaries. Requests that cannot acquire a slot within maxWait
// receive ErrTooManySummaries.
func NewSummaryLimiter(maxConcurrent int, maxWait time.Duration) *SummaryLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentSummaries
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &SummaryLimiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		max:     int64(maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire attempts to acquire a summary slot.
// Returns nil on success, ErrTooManySummaries if the wait expires.
// The caller MUST call Release() when the summary completes (use defer).
func (l *SummaryLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		// Original context cancelled vs wait timeout
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManySummaries
	}

	l.active.Add(1)
	return nil
}

// TryAcquire attempts to acquire a slot without blocking.
// Returns true if a slot was acquired, false otherwise.
func (l *SummaryLimiter) TryAcquire() bool {
	if !l.sem.TryAcquire(1) {
		return false
	}
	l.active.Add(1)
	return true
}

// Release releases a previously acquired slot.
// Must be called exactly once for each successful Acquire/TryAcquire.
func (l *SummaryLimiter) Release() {
	l.active.Add(-1)
	l.sem.Release(1)
}

// ActiveCount returns the number of currently active summaries.
func (l *SummaryLimiter) ActiveCount() int {
	return int(l.active.Load())
}

// MaxConcurrent returns the maximum allowed concurrent summaries.
func (l *SummaryLimiter) MaxConcurrent() int {
	return int(l.max)
}

// Available returns the number of available slots.
func (l *SummaryLimiter) Available() int {
	return l.MaxConcurrent() - l.ActiveCount()
}

// WaitForDrain blocks until all active summaries complete or ctx is cancelled.
func (l *SummaryLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// SummaryLimiterStatus is a snapshot of the limiter's state.
type SummaryLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for monitoring/debugging.
func (l *SummaryLimiter) Status() SummaryLimiterStatus {
	active := l.ActiveCount()
	return SummaryLimiterStatus{
		Active:        active,
		Available:     l.MaxConcurrent() - active,
		MaxConcurrent: l.MaxConcurrent(),
	}
}
