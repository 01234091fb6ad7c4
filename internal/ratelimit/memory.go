package ratelimit

import (
	"context"
	"sync"
	"time"
)

// sweepEvery is the number of Allow calls between stale-key sweeps.
const sweepEvery = 256

type bucketKey struct {
	class Class
	key   string
}

// MemoryLimiter is an in-process sliding-window log limiter. Each key keeps
// at most limit timestamps, and keys whose newest entry has left the window
// are evicted by a sweep amortized over Allow calls.
type MemoryLimiter struct {
	mu      sync.Mutex
	limits  Limits
	now     Clock
	buckets map[bucketKey][]time.Time
	calls   int
}

// NewMemoryLimiter creates a MemoryLimiter. A nil clock uses time.Now.
func NewMemoryLimiter(limits Limits, now Clock) *MemoryLimiter {
	if now == nil {
		now = time.Now
	}
	if limits == nil {
		limits = DefaultLimits()
	}
	return &MemoryLimiter{
		limits:  limits,
		now:     now,
		buckets: make(map[bucketKey][]time.Time),
	}
}

// Allow records a call for (class, key) if the window has room.
// Classes without a configured limit are always allowed.
func (l *MemoryLimiter) Allow(_ context.Context, class Class, key string) (Decision, error) {
	limit, ok := l.limits[class]
	if !ok || limit <= 0 {
		return Decision{Allowed: true, Remaining: -1}, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-Window)

	l.calls++
	if l.calls%sweepEvery == 0 {
		l.sweep(cutoff)
	}

	k := bucketKey{class: class, key: key}
	stamps := prune(l.buckets[k], cutoff)

	if len(stamps) >= limit {
		l.buckets[k] = stamps
		retry := stamps[0].Add(Window).Sub(now)
		if retry < time.Second {
			retry = time.Second
		}
		return Decision{Allowed: false, Remaining: 0, RetryAfter: retry}, nil
	}

	stamps = append(stamps, now)
	l.buckets[k] = stamps
	return Decision{Allowed: true, Remaining: limit - len(stamps)}, nil
}

// Len returns the number of tracked (class, key) pairs.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// sweep drops every key whose newest timestamp is outside the window.
// Caller must hold l.mu.
func (l *MemoryLimiter) sweep(cutoff time.Time) {
	for k, stamps := range l.buckets {
		if len(stamps) == 0 || !stamps[len(stamps)-1].After(cutoff) {
			delete(l.buckets, k)
		}
	}
}

// prune removes timestamps at or before cutoff. stamps is sorted ascending.
func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return stamps
	}
	return append(stamps[:0], stamps[i:]...)
}
