package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// WindowCounter counts hits on a key within a fixed window.
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// WindowLimiter is a fixed-window limiter over a shared counter, so several
// API instances enforce one budget per client.
type WindowLimiter struct {
	name    string
	counter WindowCounter
	limit   int64
	window  time.Duration
}

// NewWindow creates a limiter allowing limit hits per window for each key.
func NewWindow(name string, counter WindowCounter, limit int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{
		name:    name,
		counter: counter,
		limit:   int64(limit),
		window:  window,
	}
}

func (l *WindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := l.counter.IncrWindow(ctx, l.key(key), l.window)
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", l.name, err)
	}
	return n <= l.limit, nil
}

func (l *WindowLimiter) key(client string) string {
	return fmt.Sprintf("ratelimit:%s:%s", l.name, client)
}
