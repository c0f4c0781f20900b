package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vibestack/vibestack-backend/internal/stacks/domain"
)

const (
	pageKeyPrefix = "vibestack:stacks:" // vibestack:stacks:{kind}:{query}
	scanBatch     = 100
)

// PageCache keeps serialized listing pages in Redis for a fixed TTL.
// Entries are not invalidated on writes; they simply age out.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	return &PageCache{client: client, ttl: ttl}
}

// Get returns the cached page, or nil on a miss.
func (c *PageCache) Get(ctx context.Context, key string) (*domain.StackPage, error) {
	data, err := c.client.Get(ctx, pageKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached page: %w", err)
	}

	var page domain.StackPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached page: %w", err)
	}
	return &page, nil
}

func (c *PageCache) Set(ctx context.Context, key string, page *domain.StackPage) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to marshal page: %w", err)
	}
	if err := c.client.Set(ctx, pageKeyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache page: %w", err)
	}
	return nil
}

// Purge drops every cached page and returns how many keys were removed.
func (c *PageCache) Purge(ctx context.Context) (int, error) {
	var cursor uint64
	removed := 0
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pageKeyPrefix+"*", scanBatch).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to scan cached pages: %w", err)
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("failed to purge cached pages: %w", err)
			}
			removed += int(n)
		}
		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}
