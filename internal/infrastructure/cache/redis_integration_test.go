//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/testinfra"
	"library-backend/pkg/ratelimit"
)

func TestRedisWindowLimiter(t *testing.T) {
	client := NewRedisClient(testinfra.NewRedis(t), "", 0)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	require.NoError(t, client.Connect(ctx))
	require.NoError(t, client.HealthCheck(ctx))

	limiter := ratelimit.NewWindow("recommend", client, 2, time.Second)
	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(ctx, "203.0.113.7")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := limiter.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, ok)

	ttl, err := client.Client.TTL(ctx, "ratelimit:recommend:203.0.113.7").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0), "window expiry is set once")

	assert.Eventually(t, func() bool {
		ok, err := limiter.Allow(ctx, "203.0.113.7")
		return err == nil && ok
	}, 5*time.Second, 200*time.Millisecond)
}
