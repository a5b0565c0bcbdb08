package repository

import (
	"context"
	"fmt"
	"time"

	"touragency/internal/config"

	"github.com/redis/go-redis/v9"
)

const attemptKeyPrefix = "attempts:"

// RedisAttemptLimiter keeps fixed-window counters in Redis so that several
// server processes share one view of recent login and register attempts.
type RedisAttemptLimiter struct {
	client *redis.Client
}

// NewRedisClient builds a client from config without connecting.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisAttemptLimiter(client *redis.Client) *RedisAttemptLimiter {
	return &RedisAttemptLimiter{client: client}
}

func (r *RedisAttemptLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	if limit <= 0 {
		return true, nil
	}

	redisKey := attemptKeyPrefix + key
	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	if _, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		ttl = pipe.TTL(ctx, redisKey)
		return nil
	}); err != nil {
		return false, fmt.Errorf("failed to increment attempts: %w", err)
	}

	// A counter without a TTL would never reset, so any attempt that finds one
	// (first hit, or an earlier EXPIRE that failed) sets the window.
	if ttl.Val() < 0 {
		if err := r.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set attempts expiry: %w", err)
		}
	}

	return incr.Val() <= int64(limit), nil
}

// Ping checks that Redis answers.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
