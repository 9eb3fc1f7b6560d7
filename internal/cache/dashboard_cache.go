// Package cache stores derived read models in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// DefaultDashboardKey is where the stats snapshot lives.
const DefaultDashboardKey = "helpdesk:dashboard:stats"

// DashboardCache keeps dashboard stats as a JSON string with a TTL.
type DashboardCache struct {
	client redis.UniversalClient
	key    string
}

// NewDashboardCache builds the cache. An empty key uses DefaultDashboardKey.
func NewDashboardCache(client redis.UniversalClient, key string) *DashboardCache {
	if key == "" {
		key = DefaultDashboardKey
	}
	return &DashboardCache{client: client, key: key}
}

// Get returns the cached stats, or nil when nothing is cached.
func (c *DashboardCache) Get(ctx context.Context) (*domain.DashboardStats, error) {
	body, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stats domain.DashboardStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Set stores stats for ttl.
func (c *DashboardCache) Set(ctx context.Context, stats *domain.DashboardStats, ttl time.Duration) error {
	body, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, body, ttl).Err()
}

// Invalidate removes the snapshot.
func (c *DashboardCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
