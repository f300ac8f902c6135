// Package cache holds the Redis read-through cache for catalog products.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/metrics"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewProductCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ProductCache {
	return &ProductCache{client: client, ttl: ttl, logger: logging.OrNop(logger)}
}

func productKey(id string) string {
	return fmt.Sprintf("storefront:product:%s", id)
}

// Get reports a miss for absent keys and for any Redis or decode failure.
func (c *ProductCache) Get(ctx context.Context, id string) (*domain.Product, bool) {
	raw, err := c.client.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("product cache: get", zap.String("product_id", id), zap.Error(err))
		}
		metrics.ProductCacheRequestsTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	var p domain.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		c.logger.Warn("product cache: decode", zap.String("product_id", id), zap.Error(err))
		metrics.ProductCacheRequestsTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.ProductCacheRequestsTotal.WithLabelValues("hit").Inc()
	return &p, true
}

func (c *ProductCache) Set(ctx context.Context, p domain.Product) {
	raw, err := json.Marshal(p)
	if err != nil {
		c.logger.Warn("product cache: encode", zap.String("product_id", p.ID), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, productKey(p.ID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("product cache: set", zap.String("product_id", p.ID), zap.Error(err))
	}
}

func (c *ProductCache) Invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, productKey(id)).Err(); err != nil {
		c.logger.Warn("product cache: invalidate", zap.String("product_id", id), zap.Error(err))
	}
}
