package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/bobby-s-dev/weather-app/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "weather:view:"

// RedisCache shares built view models between instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
	hits   atomic.Int64
	misses atomic.Int64
	errs   atomic.Int64
}

func NewRedisCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

// NewRedisCacheFromURL parses a redis:// URL and checks connectivity.
func NewRedisCacheFromURL(ctx context.Context, rawURL string, ttl time.Duration, logger *zap.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return NewRedisCache(client, ttl, logger), nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (*models.ViewModel, bool) {
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.errs.Add(1)
			c.logger.Warn("Redis cache read failed", zap.String("key", key), zap.Error(err))
		}
		c.misses.Add(1)
		return nil, false
	}

	var vm models.ViewModel
	if err := json.Unmarshal(data, &vm); err != nil {
		c.errs.Add(1)
		c.misses.Add(1)
		c.logger.Warn("Discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	c.hits.Add(1)
	return &vm, true
}

func (c *RedisCache) Set(ctx context.Context, key string, vm *models.ViewModel) {
	if c.ttl <= 0 {
		return
	}
	data, err := json.Marshal(vm)
	if err != nil {
		c.errs.Add(1)
		c.logger.Warn("Failed to encode view model", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, data, c.ttl).Err(); err != nil {
		c.errs.Add(1)
		c.logger.Warn("Redis cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *RedisCache) Stop() {
	if err := c.client.Close(); err != nil {
		c.logger.Warn("Failed to close redis client", zap.Error(err))
	}
}

func (c *RedisCache) Stats() map[string]interface{} {
	return map[string]interface{}{
		"backend":          "redis",
		"hits":             c.hits.Load(),
		"misses":           c.misses.Load(),
		"errors":           c.errs.Load(),
		"default_duration": c.ttl.String(),
	}
}
