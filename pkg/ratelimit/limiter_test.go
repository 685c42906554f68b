package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemory(limit int, window time.Duration) (*MemoryLimiter, *time.Time) {
	l := NewMemory("test", limit, window)
	now := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestMemoryLimiter_AllowsBurstThenBlocks(t *testing.T) {
	l, _ := newTestMemory(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok, "request %d should pass", i+1)
	}

	ok, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	l, _ := newTestMemory(1, time.Minute)
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "a")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "a")
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "b")
	assert.True(t, ok)
}

func TestMemoryLimiter_RefillsAfterWindow(t *testing.T) {
	l, now := newTestMemory(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = l.Allow(ctx, "ip")
	}
	ok, _ := l.Allow(ctx, "ip")
	require.False(t, ok)

	*now = now.Add(time.Minute + time.Second)
	for i := 0; i < 3; i++ {
		ok, _ = l.Allow(ctx, "ip")
		assert.True(t, ok)
	}
}

func TestMemoryLimiter_OneRequestPerSecond(t *testing.T) {
	l, now := newTestMemory(3, time.Minute)
	ctx := context.Background()

	allowed := 0
	for i := 0; i < 60; i++ {
		ok, err := l.Allow(ctx, "ip")
		require.NoError(t, err)
		if ok {
			allowed++
		}
		*now = now.Add(time.Second)
	}
	assert.Equal(t, 3, allowed)
}

func TestMemoryLimiter_NeverExceedsLimitInAnyWindow(t *testing.T) {
	const limit = 3
	window := time.Minute
	l, now := newTestMemory(limit, window)
	ctx := context.Background()

	var admitted []time.Time
	for i := 0; i < 600; i++ {
		if ok, _ := l.Allow(ctx, "ip"); ok {
			admitted = append(admitted, *now)
		}
		*now = now.Add(7 * time.Second)
	}
	require.NotEmpty(t, admitted)

	for i, start := range admitted {
		inWindow := 0
		for _, at := range admitted[i:] {
			if at.Sub(start) < window {
				inWindow++
			}
		}
		assert.LessOrEqual(t, inWindow, limit, "window starting at %s", start)
	}
}

func TestMemoryLimiter_Sweep(t *testing.T) {
	l, now := newTestMemory(3, time.Minute)
	ctx := context.Background()

	_, _ = l.Allow(ctx, "old")
	*now = now.Add(5 * time.Minute)
	_, _ = l.Allow(ctx, "fresh")

	assert.Equal(t, 1, l.Sweep())
	assert.Equal(t, 1, l.Len())
}

type fakeCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (f *fakeCounter) IncrWindow(_ context.Context, key string, _ time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	if f.counts == nil {
		f.counts = make(map[string]int64)
	}
	f.counts[key]++
	return f.counts[key], nil
}

func TestWindowLimiter(t *testing.T) {
	counter := &fakeCounter{}
	l := NewWindow("recommend", counter, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, int64(4), counter.counts["ratelimit:recommend:1.2.3.4"])
}

func TestWindowLimiter_CounterError(t *testing.T) {
	l := NewWindow("recommend", &fakeCounter{err: errors.New("connection refused")}, 3, time.Minute)

	ok, err := l.Allow(context.Background(), "1.2.3.4")
	assert.False(t, ok)
	assert.ErrorContains(t, err, "connection refused")
}
