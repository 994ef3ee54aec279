package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kodestudio/requirements-api/internal/core/ports"
)

const statsKey = "stats:requirements"

// StatsCache stores requirement statistics snapshots in Redis with a short
// TTL so repeated dashboard polls do not re-run the aggregation.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache wraps the given Redis client. A non-positive ttl defaults
// to one minute.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &StatsCache{client: client, ttl: ttl}
}

// Get returns the cached snapshot, or (nil, nil) on a miss.
func (c *StatsCache) Get(ctx context.Context) (*ports.RequirementStats, error) {
	raw, err := c.client.Get(ctx, statsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("stats cache get: %w", err)
	}

	var stats ports.RequirementStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, fmt.Errorf("stats cache decode: %w", err)
	}
	return &stats, nil
}

// Set stores a fresh snapshot, replacing any previous one.
func (c *StatsCache) Set(ctx context.Context, stats *ports.RequirementStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("stats cache encode: %w", err)
	}
	if err := c.client.Set(ctx, statsKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("stats cache set: %w", err)
	}
	return nil
}
