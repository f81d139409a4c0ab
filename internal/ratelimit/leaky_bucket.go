// Package ratelimit paces outbound enrichment bridge calls.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// LeakyBucket enforces a smooth, non-bursty request rate.
//
// It schedules each caller at least `interval` after the prior scheduled
// call, even under heavy concurrency. A burst of incoming notifications must
// not translate into a burst of avatar/icon lookups against a bridge.
type LeakyBucket struct {
	mu sync.Mutex

	tokens  chan struct{}
	stopCh  chan struct{}
	stopped bool
}

// NewLeakyBucketFromRPM creates a bucket emitting one token per minute/rpm.
// A non-positive rpm returns nil, which Wait treats as unthrottled.
func NewLeakyBucketFromRPM(rpm int) *LeakyBucket {
	if rpm <= 0 {
		return nil
	}
	interval := time.Minute / time.Duration(rpm)
	if interval <= 0 {
		interval = time.Nanosecond
	}
	b := &LeakyBucket{
		tokens: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
	}

	// Allow one immediate request.
	b.tokens <- struct{}{}

	go b.run(interval)
	return b
}

// Close stops the token emitter. Waiters unblock as unthrottled.
func (b *LeakyBucket) Close() {
	if b == nil {
		return
	}
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.stopped = true
	close(b.stopCh)
	b.mu.Unlock()
}

func (b *LeakyBucket) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			// Emit at most 1 token ahead (smooth, non-bursty).
			select {
			case b.tokens <- struct{}{}:
			default:
			}
		case <-b.stopCh:
			close(b.tokens)
			return
		}
	}
}

// Wait blocks until the caller may proceed, the context is cancelled, or the
// bucket is closed.
func (b *LeakyBucket) Wait(ctx context.Context) error {
	if b == nil {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case _, ok := <-b.tokens:
		// If closed, treat as unthrottled.
		if !ok {
			return nil
		}
		return nil
	}
}
