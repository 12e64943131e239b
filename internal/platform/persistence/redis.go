package persistence

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inventory-sales-ledger/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to the item read cache and verifies it answers
func NewRedisClient(ctx context.Context, logger *slog.Logger, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("connected to Redis", "addr", cfg.Addr, "db", cfg.DB)
	return client, nil
}
