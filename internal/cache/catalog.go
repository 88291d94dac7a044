// Package cache keeps a short-lived Redis copy of the provider catalog so
// the proxy endpoint does not hit the third-party API on every request.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/brewhollow/shop-backend/internal/config"
	"github.com/brewhollow/shop-backend/internal/square"
)

const (
	catalogKey = "catalog:full"
	DefaultTTL = 5 * time.Minute
)

type CatalogCache struct {
	client *redis.Client
	TTL    time.Duration
}

func NewCatalogCache(cfg *config.Config) (*CatalogCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.REDIS_ADDR,
		Password: cfg.REDIS_PASSWORD,
		DB:       cfg.REDIS_DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	return &CatalogCache{client: client, TTL: DefaultTTL}, nil
}

// Get returns the cached catalog, reporting a miss (or any redis trouble)
// as ok=false so callers just fall through to the provider.
func (c *CatalogCache) Get(ctx context.Context) ([]square.Item, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, catalogKey).Bytes()
	if err != nil {
		return nil, false
	}

	var items []square.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}
	return items, true
}

func (c *CatalogCache) Set(ctx context.Context, items []square.Item) error {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, catalogKey, data, c.TTL).Err()
}

func (c *CatalogCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
