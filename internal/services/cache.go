package services

import (
	"context"
	"sync"
	"time"

	"github.com/bobby-s-dev/weather-app/internal/models"
	"go.uber.org/zap"
)

// ViewCache stores built view models by normalized query key.
type ViewCache interface {
	Get(ctx context.Context, key string) (*models.ViewModel, bool)
	Set(ctx context.Context, key string, vm *models.ViewModel)
	Stats() map[string]interface{}
	Stop()
}

type CacheItem struct {
	Data      *models.ViewModel
	ExpiresAt time.Time
}

// WeatherCache is the in-process ViewCache.
type WeatherCache struct {
	mu              sync.RWMutex
	items           map[string]CacheItem
	logger          *zap.Logger
	defaultDuration time.Duration
	maxSize         int
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
	hits            int
	misses          int
}

func NewWeatherCache(defaultDuration time.Duration, maxSize int, logger *zap.Logger) *WeatherCache {
	if maxSize < 1 {
		maxSize = 1
	}
	cache := &WeatherCache{
		items:           make(map[string]CacheItem),
		logger:          logger,
		defaultDuration: defaultDuration,
		maxSize:         maxSize,
		cleanupInterval: time.Minute,
		stopCleanup:     make(chan struct{}),
	}

	go cache.startCleanup()

	return cache
}

func (c *WeatherCache) Set(_ context.Context, key string, vm *models.ViewModel) {
	if c.defaultDuration <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Evict if cache is too large
	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxSize {
		c.evictOldest()
	}

	expiresAt := time.Now().Add(c.defaultDuration)
	c.items[key] = CacheItem{
		Data:      vm,
		ExpiresAt: expiresAt,
	}

	c.logger.Debug("View model cached",
		zap.String("key", key),
		zap.Time("expires_at", expiresAt))
}

func (c *WeatherCache) Get(_ context.Context, key string) (*models.ViewModel, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.items[key]
	if !exists {
		c.misses++
		return nil, false
	}

	if time.Now().After(item.ExpiresAt) {
		delete(c.items, key)
		c.misses++
		return nil, false
	}

	c.hits++
	return item.Data, true
}

func (c *WeatherCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, item := range c.items {
		if oldestKey == "" || item.ExpiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = item.ExpiresAt
		}
	}

	if oldestKey != "" {
		delete(c.items, oldestKey)
		c.logger.Debug("Evicted oldest view model from cache",
			zap.String("key", oldestKey))
	}
}

func (c *WeatherCache) startCleanup() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *WeatherCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	expiredCount := 0

	for key, item := range c.items {
		if now.After(item.ExpiresAt) {
			delete(c.items, key)
			expiredCount++
		}
	}

	if expiredCount > 0 {
		c.logger.Debug("Cleaned expired cache items",
			zap.Int("count", expiredCount))
	}
}

func (c *WeatherCache) Stop() {
	c.stopOnce.Do(func() { close(c.stopCleanup) })
}

func (c *WeatherCache) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]interface{}{
		"backend":          "memory",
		"items":            len(c.items),
		"hits":             c.hits,
		"misses":           c.misses,
		"max_size":         c.maxSize,
		"default_duration": c.defaultDuration.String(),
	}
}
