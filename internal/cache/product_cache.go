package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/GTDGit/pricelist_api/internal/models"
)

const productListKey = "pricelist:products:all"

// ProductCache keeps the full product list, as served to the public price
// table, in Redis.
type ProductCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewProductCache creates a new ProductCache.
func NewProductCache(redis *RedisClient, ttl time.Duration) *ProductCache {
	return &ProductCache{redis: redis, ttl: ttl}
}

// GetProducts returns the cached list. ok is false on a miss.
func (c *ProductCache) GetProducts(ctx context.Context) (products []models.Product, ok bool, err error) {
	raw, err := c.redis.Get(ctx, productListKey)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get cached products: %w", err)
	}
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, false, fmt.Errorf("decode cached products: %w", err)
	}
	return products, true, nil
}

// SetProducts stores the list with the configured TTL.
func (c *ProductCache) SetProducts(ctx context.Context, products []models.Product) error {
	raw, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("encode products: %w", err)
	}
	return c.redis.Set(ctx, productListKey, raw, c.ttl)
}

// InvalidateProducts drops the cached list.
func (c *ProductCache) InvalidateProducts(ctx context.Context) error {
	return c.redis.Delete(ctx, productListKey)
}
