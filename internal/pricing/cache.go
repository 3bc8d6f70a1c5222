package pricing

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	interfaces "github.com/sheikh-saqib/bank-account-simulator/internal/interfaces"
	"github.com/shopspring/decimal"
)

const (
	DefaultCacheTTL = 30 * time.Second

	// KeyPrefix namespaces cached prices in Redis.
	KeyPrefix = "price:"
)

// Cache stores quoted prices as decimal strings.
type Cache interface {
	// Get reports false on a miss.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// Cached serves recent quotes from a cache and asks next on a miss.
// A broken cache never fails a lookup; it is logged and bypassed.
type Cached struct {
	next   interfaces.PriceClient
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCached(next interfaces.PriceClient, cache Cache, ttl time.Duration, logger *slog.Logger) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (c *Cached) CurrentPrice(ctx context.Context, cryptoName string) (decimal.Decimal, error) {
	key := KeyPrefix + strings.ToUpper(cryptoName)

	cached, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		c.logger.Warn("price cache read failed", "key", key, "error", err)
	case ok:
		if price, err := decimal.NewFromString(cached); err == nil {
			return price, nil
		}
		c.logger.Warn("discarding malformed cached price", "key", key, "value", cached)
	}

	price, err := c.next.CurrentPrice(ctx, cryptoName)
	if err != nil {
		return decimal.Zero, err
	}
	if price.IsPositive() {
		if err := c.cache.Set(ctx, key, price.String(), c.ttl); err != nil {
			c.logger.Warn("price cache write failed", "key", key, "error", err)
		}
	}
	return price, nil
}
