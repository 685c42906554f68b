// Package ratelimit caps how often a single client may hit an endpoint.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether the client identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type visitor struct {
	hits     []time.Time
	lastSeen time.Time
}

// MemoryLimiter keeps the times of the last limit admitted requests per key.
// A request passes only while fewer than limit of them fall inside the
// trailing window, so no window-long span ever admits more than limit.
type MemoryLimiter struct {
	name   string
	limit  int
	window time.Duration
	idle   time.Duration
	now    func() time.Time
	mu     sync.Mutex
	perKey map[string]*visitor
}

// NewMemory creates an in-process limiter allowing limit requests per window.
func NewMemory(name string, limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		name:   name,
		limit:  limit,
		window: window,
		idle:   window * 3,
		now:    time.Now,
		perKey: make(map[string]*visitor),
	}
}

// Allow reports whether key may proceed right now. It never blocks.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.perKey[key]
	if !ok {
		v = &visitor{hits: make([]time.Time, 0, l.limit)}
		l.perKey[key] = v
	}
	v.lastSeen = now

	cutoff := now.Add(-l.window)
	live := v.hits[:0]
	for _, h := range v.hits {
		if h.After(cutoff) {
			live = append(live, h)
		}
	}
	v.hits = live

	if len(v.hits) >= l.limit {
		return false, nil
	}
	v.hits = append(v.hits, now)
	return true, nil
}

// Sweep drops keys that have been idle for several windows.
func (l *MemoryLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idle)
	removed := 0
	for key, v := range l.perKey {
		if v.lastSeen.Before(cutoff) {
			delete(l.perKey, key)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (l *MemoryLimiter) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
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

// Name returns the name of this rate limiter.
func (l *MemoryLimiter) Name() string {
	return l.name
}

// Len returns the number of tracked keys.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.perKey)
}
