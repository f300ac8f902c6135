package cache

import (
	"context"
	"time"

	"storefront/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Connect returns a client for addr after a successful ping.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// FromConfig connects the product cache when cfg.Addr is set. With no address it
// returns a nil cache. The returned close func is always safe to call.
func FromConfig(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*ProductCache, func(), error) {
	if cfg.Addr == "" {
		return nil, func() {}, nil
	}
	client, err := Connect(ctx, cfg.Addr, cfg.Password, cfg.DB)
	if err != nil {
		return nil, func() {}, err
	}
	return NewProductCache(client, cfg.TTL, logger), func() { client.Close() }, nil
}
