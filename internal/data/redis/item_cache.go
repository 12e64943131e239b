// Package redis caches item reads in front of the PostgreSQL item store.
// The cache only serves GET endpoints; the ledger engine never reads from it.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/inventory-sales-ledger/internal/domain/item"
	"github.com/redis/go-redis/v9"
)

const (
	itemKeyPrefix = "item:"

	// tombstone occupies an invalidated key so a snapshot read before the change
	// cannot be written back over it
	tombstone        = "invalidated"
	invalidationHold = 5 * time.Second
)

// cmdable is the subset of *redis.Client the cache uses
type cmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// ItemCache stores JSON snapshots of items with a fixed TTL
type ItemCache struct {
	client cmdable
	ttl    time.Duration
	hold   time.Duration
	logger *slog.Logger
}

func NewItemCache(logger *slog.Logger, client *redis.Client, ttl time.Duration) *ItemCache {
	return &ItemCache{
		client: client,
		ttl:    ttl,
		hold:   min(invalidationHold, ttl),
		logger: logger,
	}
}

func itemKey(id int64) string {
	return itemKeyPrefix + strconv.FormatInt(id, 10)
}

// Get returns nil, nil on a cache miss
func (c *ItemCache) Get(ctx context.Context, id int64) (*item.Item, error) {
	raw, err := c.client.Get(ctx, itemKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached item: %w", err)
	}
	if string(raw) == tombstone {
		return nil, nil
	}

	var it item.Item
	if err := json.Unmarshal(raw, &it); err != nil {
		// a corrupt entry is treated as a miss and dropped
		c.logger.Warn("Discarding undecodable cached item", "item_id", id, "error", err)
		_ = c.client.Del(ctx, itemKey(id)).Err()
		return nil, nil
	}

	return &it, nil
}

// Set caches it unless the key is occupied. While an invalidation tombstone is in
// place the snapshot is skipped, since it may have been read before the change.
func (c *ItemCache) Set(ctx context.Context, it *item.Item) error {
	raw, err := json.Marshal(it)
	if err != nil {
		return fmt.Errorf("failed to encode item for cache: %w", err)
	}

	stored, err := c.client.SetNX(ctx, itemKey(it.ID), raw, c.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to cache item: %w", err)
	}
	if !stored {
		c.logger.Debug("Skipped caching item, key is occupied", "item_id", it.ID)
	}
	return nil
}

// Invalidate replaces the cached snapshot with a tombstone after the item changed.
// Reads miss until the tombstone expires.
func (c *ItemCache) Invalidate(ctx context.Context, id int64) error {
	if err := c.client.Set(ctx, itemKey(id), tombstone, c.hold).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached item: %w", err)
	}
	return nil
}
