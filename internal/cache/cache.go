// Package cache holds the optional redis-backed helpers: view de-duplication
// and per-client comment rate limiting. Without redis both degrade to no-ops.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/blog-content-api/internal/config"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// ViewRecorder decides whether a read counts as a new view
type ViewRecorder interface {
	ShouldCount(ctx context.Context, articleID int64, visitor string) (bool, error)
}

// RateLimiter decides whether another request under key is allowed
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// NewClient connects to redis. An empty address returns (nil, nil).
func NewClient(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*redis.Client, error) {
	if cfg.Addr == "" {
		log.Info().Msg("Redis disabled, view de-duplication and rate limiting are off")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	log.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Msg("Redis connection established")
	return client, nil
}

// ViewKey is the de-duplication key for one visitor of one article
func ViewKey(articleID int64, visitor string) string {
	return fmt.Sprintf("view:%d:%s", articleID, visitor)
}

// RateKey is the counter key for one client in the comment limiter
func RateKey(key string) string {
	return "rate:comment:" + key
}

type redisViewRecorder struct {
	client *redis.Client
	window time.Duration
}

// NewViewRecorder counts a visitor once per window. A nil client or a
// non-positive window counts every read.
func NewViewRecorder(client *redis.Client, window time.Duration) ViewRecorder {
	if client == nil || window <= 0 {
		return NoopViewRecorder{}
	}
	return &redisViewRecorder{client: client, window: window}
}

func (r *redisViewRecorder) ShouldCount(ctx context.Context, articleID int64, visitor string) (bool, error) {
	if visitor == "" {
		return true, nil
	}
	return r.client.SetNX(ctx, ViewKey(articleID, visitor), 1, r.window).Result()
}

type redisRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRateLimiter allows limit requests per key per window. A nil client or
// a non-positive limit allows everything.
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) RateLimiter {
	if client == nil || limit <= 0 || window <= 0 {
		return NoopRateLimiter{}
	}
	return &redisRateLimiter{client: client, limit: limit, window: window}
}

func (r *redisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := RateKey(key)

	// SETNX opens the window with its TTL in the same MULTI as the INCR
	var n *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, k, 0, r.window)
		n = pipe.Incr(ctx, k)
		return nil
	})
	if err != nil {
		return false, err
	}
	return n.Val() <= int64(r.limit), nil
}

// NoopViewRecorder counts every read
type NoopViewRecorder struct{}

func (NoopViewRecorder) ShouldCount(ctx context.Context, articleID int64, visitor string) (bool, error) {
	return true, nil
}

// NoopRateLimiter allows every request
type NoopRateLimiter struct{}

func (NoopRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return true, nil
}
