package ratelimit

import (
	"context"
	"sync"
	"time"
)

// SlidingWindowLimiter allows at most limit requests per key within any
// window of the configured size
type SlidingWindowLimiter struct {
	mu         sync.Mutex
	windows    map[string]*window
	limit      int
	windowSize time.Duration
	now        func() time.Time
}

type window struct {
	requests []time.Time
}

// NewSlidingWindowLimiter creates a new sliding window rate limiter
func NewSlidingWindowLimiter(limit int, windowSize time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		windows:    make(map[string]*window),
		limit:      limit,
		windowSize: windowSize,
		now:        time.Now,
	}
}

// Allow records a request for key and reports whether it fits in the window.
// The second value is how long until the oldest request leaves the window
// when the request is refused.
func (l *SlidingWindowLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, exists := l.windows[key]
	if !exists {
		w = &window{}
		l.windows[key] = w
	}
	w.requests = trim(w.requests, now.Add(-l.windowSize))

	if len(w.requests) >= l.limit {
		return false, w.requests[0].Add(l.windowSize).Sub(now)
	}

	w.requests = append(w.requests, now)
	return true, 0
}

// Reset forgets every request recorded for key
func (l *SlidingWindowLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// Sweep drops keys with no request inside the window and returns how many
// were dropped
func (l *SlidingWindowLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.windowSize)
	dropped := 0
	for key, w := range l.windows {
		if w.requests = trim(w.requests, cutoff); len(w.requests) == 0 {
			delete(l.windows, key)
			dropped++
		}
	}
	return dropped
}

// Start sweeps idle keys once per window until ctx is cancelled
func (l *SlidingWindowLimiter) Start(ctx context.Context) {
	ticker := time.NewTicker(l.windowSize)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// trim drops timestamps at or before cutoff; requests are in arrival order
func trim(requests []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(requests) && !requests[i].After(cutoff) {
		i++
	}
	return requests[i:]
}
