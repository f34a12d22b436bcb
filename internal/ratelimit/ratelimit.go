// Package ratelimit bounds failed login attempts per client key with a
// sliding window. The window state is process-local by default; a Redis
// backend is available when attempts must be shared across instances.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter gates login attempts. Check reports whether another attempt is
// allowed right now; Record registers a failed attempt. Successful logins
// are never recorded, so they do not count toward the limit.
type Limiter interface {
	Check(ctx context.Context, key string) (bool, error)
	Record(ctx context.Context, key string) error
}

// SlidingWindow keeps the timestamps of recent failed attempts per key in
// memory. State is lost on restart, which is accepted for login throttling.
type SlidingWindow struct {
	mu          sync.Mutex
	maxAttempts int
	window      time.Duration
	attempts    map[string][]time.Time

	now func() time.Time
}

func NewSlidingWindow(maxAttempts int, window time.Duration) *SlidingWindow {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = time.Minute
	}
	return &SlidingWindow{
		maxAttempts: maxAttempts,
		window:      window,
		attempts:    make(map[string][]time.Time),
		now:         time.Now,
	}
}

func (l *SlidingWindow) Check(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	remaining := l.prune(key)
	return len(remaining) < l.maxAttempts, nil
}

func (l *SlidingWindow) Record(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.attempts[key] = append(l.prune(key), l.now())
	return nil
}

// prune drops timestamps at or beyond the window age. The boundary is
// exclusive: an attempt exactly window old no longer counts. Caller must
// hold the lock.
func (l *SlidingWindow) prune(key string) []time.Time {
	cutoff := l.now().Add(-l.window)
	stamps := l.attempts[key]
	kept := stamps[:0]
	for _, t := range stamps {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(l.attempts, key)
		return nil
	}
	l.attempts[key] = kept
	return kept
}
