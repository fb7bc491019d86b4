// README: Redis read-through cache for the active fare config.
package fare

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is optional; a nil Cache disables caching.
type Cache interface {
	Get(ctx context.Context) (Config, bool, error)
	Set(ctx context.Context, cfg Config) error
	Invalidate(ctx context.Context) error
}

// The schema version is part of the key so a deploy that changes the shape
// never reads an old entry.
var activeConfigKey = fmt.Sprintf("fare:config:active:v%d", SchemaVersion)

type RedisCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{redis: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context) (Config, bool, error) {
	raw, err := c.redis.Get(ctx, activeConfigKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return Config{}, false, nil
	}
	if err != nil {
		return Config{}, false, err
	}
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, false, fmt.Errorf("decode cached fare config: %w", err)
	}
	if cfg.SchemaVersion != SchemaVersion {
		return Config{}, false, nil
	}
	return cfg, true, nil
}

func (c *RedisCache) Set(ctx context.Context, cfg Config) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, activeConfigKey, raw, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.redis.Del(ctx, activeConfigKey).Err()
}
