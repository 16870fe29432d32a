package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(limit int) (*SlidingWindowLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewSlidingWindowLimiter(limit, time.Minute)
	l.now = clock.now
	return l, clock
}

func TestSlidingWindowLimiter_Allow(t *testing.T) {
	l, clock := newTestLimiter(2)

	ok, _ := l.Allow("ip:1")
	assert.True(t, ok)
	clock.advance(10 * time.Second)
	ok, _ = l.Allow("ip:1")
	assert.True(t, ok)

	ok, retry := l.Allow("ip:1")
	assert.False(t, ok)
	assert.Equal(t, 50*time.Second, retry)

	// other keys have their own window
	ok, _ = l.Allow("ip:2")
	assert.True(t, ok)

	clock.advance(50 * time.Second)
	ok, _ = l.Allow("ip:1")
	assert.True(t, ok, "the first request has left the window")
}

func TestSlidingWindowLimiter_Reset(t *testing.T) {
	l, _ := newTestLimiter(1)

	ok, _ := l.Allow("ip:1")
	assert.True(t, ok)
	ok, _ = l.Allow("ip:1")
	assert.False(t, ok)

	l.Reset("ip:1")
	ok, _ = l.Allow("ip:1")
	assert.True(t, ok)
}

func TestSlidingWindowLimiter_Sweep(t *testing.T) {
	l, clock := newTestLimiter(5)
	l.Allow("ip:1")
	clock.advance(30 * time.Second)
	l.Allow("ip:2")

	clock.advance(31 * time.Second)
	assert.Equal(t, 1, l.Sweep())
	assert.Len(t, l.windows, 1)

	clock.advance(time.Minute)
	assert.Equal(t, 1, l.Sweep())
	assert.Empty(t, l.windows)
}
