// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/dvrguide/internal/log"
	"github.com/ManuGH/dvrguide/internal/resilience"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultKeyPrefix namespaces every key this service writes.
const DefaultKeyPrefix = "dvrguide:view:"

// RedisCache is a Redis-backed implementation of Cache. Replicas pointed at
// the same Redis share rendered views.
type RedisCache struct {
	client  *redis.Client
	prefix  string
	logger  zerolog.Logger
	stats   counters
	breaker *resilience.Breaker
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string // Redis server address (host:port)
	Password string // Redis password (optional)
	DB       int    // Redis database number
	Prefix   string // key prefix, DefaultKeyPrefix when empty
}

// NewRedisCache connects and pings Redis.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	logger := log.WithComponent("cache")
	logger.Info().
		Str("addr", cfg.Addr).
		Int("db", cfg.DB).
		Msg("connected to Redis cache")

	return &RedisCache{
		client:  client,
		prefix:  prefix,
		logger:  logger,
		breaker: resilience.New("redis_cache", 3, 30*time.Second),
	}, nil
}

// Get treats every failure as a miss. While Redis keeps failing the
// breaker skips the round trip entirely.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	var val []byte
	err := c.breaker.Execute(func() error {
		var err error
		val, err = c.client.Get(ctx, c.prefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			return resilience.Ignore(err)
		}
		return err
	})
	if err != nil {
		if !errors.Is(err, redis.Nil) && !errors.Is(err, resilience.ErrOpen) {
			c.logger.Warn().Err(err).Str("key", key).Msg("redis get failed")
		}
		c.stats.misses.Add(1)
		return nil, false
	}
	c.stats.hits.Add(1)
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	err := c.breaker.Execute(func() error {
		return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
	})
	if err != nil {
		if !errors.Is(err, resilience.ErrOpen) {
			c.logger.Warn().Err(err).Str("key", key).Msg("redis set failed")
		}
		return
	}
	c.stats.sets.Add(1)
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	err := c.breaker.Execute(func() error {
		return c.client.Del(ctx, c.prefix+key).Err()
	})
	if err != nil && !errors.Is(err, resilience.ErrOpen) {
		c.logger.Warn().Err(err).Str("key", key).Msg("redis delete failed")
	}
}

// Stats returns local counters. CurrentSize is not tracked for Redis.
func (c *RedisCache) Stats() Stats {
	return c.stats.snapshot(0)
}

// Ping checks that Redis is reachable.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
