package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"IMA_BACK-END/internal/config"
)

// NewClient creates the shared Redis client. The client pools connections
// internally and is safe for concurrent use.
func NewClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(Options(cfg))
}

// Options maps configuration onto go-redis options
func Options(cfg *config.Config) *redis.Options {
	return &redis.Options{
		Addr:         cfg.RedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		// Fail fast instead of retrying behind a health probe's deadline
		MaxRetries: 1,
	}
}

// Ping checks the client can reach the server
func Ping(ctx context.Context, client *redis.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", client.Options().Addr, err)
	}
	return nil
}
