// Package cache provides the redis-backed dashboard summary cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"inventario/internal/domain/dashboard"
)

// DefaultSummaryKey is where the dashboard summary is stored.
const DefaultSummaryKey = "inventario:dashboard:summary"

// RedisConfig holds the redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DashboardCache implements dashboard.Cache using redis.
type DashboardCache struct {
	client     *redis.Client
	ownsClient bool
	key        string
}

var _ dashboard.Cache = (*DashboardCache)(nil)

// NewDashboardCache connects to redis and verifies the connection.
func NewDashboardCache(ctx context.Context, cfg RedisConfig) (*DashboardCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &DashboardCache{client: client, ownsClient: true, key: DefaultSummaryKey}, nil
}

// NewDashboardCacheWithClient wraps an existing client. The caller keeps
// ownership of it.
func NewDashboardCacheWithClient(client *redis.Client) *DashboardCache {
	return &DashboardCache{client: client, key: DefaultSummaryKey}
}

// Get implements dashboard.Cache. A miss is (nil, nil).
func (c *DashboardCache) Get(ctx context.Context) (*dashboard.Summary, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get dashboard summary: %w", err)
	}

	var s dashboard.Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode dashboard summary: %w", err)
	}
	return &s, nil
}

// Set implements dashboard.Cache.
func (c *DashboardCache) Set(ctx context.Context, s *dashboard.Summary, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode dashboard summary: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("set dashboard summary: %w", err)
	}
	return nil
}

// Invalidate drops the cached summary.
func (c *DashboardCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}

// Ping reports whether redis is reachable.
func (c *DashboardCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the client if this cache created it.
func (c *DashboardCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}
