package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "crt:dashboard"
	versionKey = keyPrefix + ":version"
)

// DashboardCache memoizes dashboard payloads in Redis as JSON. Keys embed a global
// version so that Bump invalidates every cached dashboard at once. A nil cache, or
// one without a client, always calls the loader.
type DashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDashboardCache(client *redis.Client, ttl time.Duration) *DashboardCache {
	return &DashboardCache{client: client, ttl: ttl}
}

func (c *DashboardCache) enabled() bool {
	return c != nil && c.client != nil
}

func (c *DashboardCache) version(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return ver, err
}

// Key composes a versioned key from parts, e.g. Key(ctx, "college", "12").
func (c *DashboardCache) Key(ctx context.Context, parts ...string) (string, error) {
	joined := keyPrefix + ":" + strings.Join(parts, ":")
	if !c.enabled() {
		return joined, nil
	}

	ver, err := c.version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", joined, ver), nil
}

// FetchJSON fills dest from the cache, or from loader on a miss and stores the result.
// Redis errors degrade to calling the loader.
func (c *DashboardCache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}

	if c.enabled() {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			if jsonErr := json.Unmarshal(payload, dest); jsonErr == nil {
				return nil
			}
		}
	}

	value, err := loader(ctx)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if c.enabled() {
		_ = c.client.Set(ctx, key, raw, c.ttl).Err()
	}

	return json.Unmarshal(raw, dest)
}

// Bump invalidates all dashboards by moving to a new key version.
func (c *DashboardCache) Bump(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.client.Incr(ctx, versionKey).Err()
}
