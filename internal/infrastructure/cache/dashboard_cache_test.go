package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestDashboardCache_UnreachableRedisReturnsError(t *testing.T) {
	c := NewDashboardCacheWithClient(unreachableClient(t))

	s, err := c.Get(context.Background())
	require.Error(t, err)
	assert.Nil(t, s)
}

func TestNewDashboardCache_FailsFast(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewDashboardCache(ctx, RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
