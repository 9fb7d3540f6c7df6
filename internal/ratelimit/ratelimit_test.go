package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func TestLimiter_Allow(t *testing.T) {
	tests := []struct {
		name       string
		rate       int
		key        string
		calls      int
		wantPassed int
	}{
		{name: "all requests within limit", rate: 5, key: "10.0.0.1", calls: 5, wantPassed: 5},
		{name: "exceed rate limit", rate: 3, key: "10.0.0.2", calls: 5, wantPassed: 3},
		{name: "single request", rate: 10, key: "10.0.0.3", calls: 1, wantPassed: 1},
		{name: "zero rate blocks all", rate: 0, key: "10.0.0.4", calls: 3, wantPassed: 0},
		{name: "negative rate blocks all", rate: -5, key: "10.0.0.5", calls: 3, wantPassed: 0},
		{name: "empty key", rate: 2, key: "", calls: 3, wantPassed: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.rate, time.Minute)
			defer l.Close()

			passed := 0
			for i := 0; i < tt.calls; i++ {
				if ok, _ := l.Allow(tt.key); ok {
					passed++
				}
			}
			assert.Equal(t, tt.wantPassed, passed)
		})
	}
}

func TestLimiter_RetryAfter(t *testing.T) {
	clock := newClock()
	l := New(1, time.Minute, WithClock(clock.Now))
	defer l.Close()

	ok, wait := l.Allow("a")
	require.True(t, ok)
	assert.Zero(t, wait)

	clock.Advance(20 * time.Second)
	ok, wait = l.Allow("a")
	require.False(t, ok)
	assert.Equal(t, 40*time.Second, wait)
}

func TestLimiter_WindowReset(t *testing.T) {
	clock := newClock()
	l := New(2, time.Minute, WithClock(clock.Now))
	defer l.Close()

	for i := 0; i < 2; i++ {
		ok, _ := l.Allow("a")
		require.True(t, ok)
	}
	ok, _ := l.Allow("a")
	require.False(t, ok)

	clock.Advance(time.Minute)

	for i := 0; i < 2; i++ {
		ok, _ := l.Allow("a")
		assert.True(t, ok, "request %d after reset", i+1)
	}
}

func TestLimiter_MultipleKeys(t *testing.T) {
	l := New(2, time.Minute)
	defer l.Close()

	for _, key := range []string{"a", "b", "c"} {
		passed := 0
		for i := 0; i < 3; i++ {
			if ok, _ := l.Allow(key); ok {
				passed++
			}
		}
		assert.Equal(t, 2, passed, "key %s", key)
	}
	assert.Equal(t, 3, l.Len())
}

func TestLimiter_Evict(t *testing.T) {
	clock := newClock()
	l := New(1, time.Minute, WithClock(clock.Now))
	defer l.Close()

	l.Allow("old")
	clock.Advance(90 * time.Second)
	l.Allow("recent")
	clock.Advance(40 * time.Second)

	l.evict()
	assert.Equal(t, 1, l.Len())
	l.mu.Lock()
	_, kept := l.windows["recent"]
	l.mu.Unlock()
	assert.True(t, kept)
}

func TestLimiter_Concurrent(t *testing.T) {
	l := New(100, time.Minute)
	defer l.Close()

	start := make(chan struct{})
	results := make(chan bool, 200)

	for i := 0; i < 200; i++ {
		go func() {
			<-start
			ok, _ := l.Allow("a")
			results <- ok
		}()
	}
	close(start)

	count := 0
	for i := 0; i < 200; i++ {
		if <-results {
			count++
		}
	}
	assert.Equal(t, 100, count)
}

func TestLimiter_CloseTwice(t *testing.T) {
	l := New(1, time.Minute)
	l.Close()
	assert.NotPanics(t, l.Close)
}
