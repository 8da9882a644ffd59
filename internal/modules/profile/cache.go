// README: Redis snapshot cache for cost profiles.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ada/internal/modules/pricing"
)

// RedisCache stores JSON snapshots under profile:<tenant>:<id>.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func cacheKey(tenantID int64, profileID string) string {
	return fmt.Sprintf("profile:%d:%s", tenantID, profileID)
}

// Get reports ok=false on a miss.
func (c *RedisCache) Get(ctx context.Context, tenantID int64, profileID string) (pricing.CostProfile, bool, error) {
	raw, err := c.client.Get(ctx, cacheKey(tenantID, profileID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return pricing.CostProfile{}, false, nil
	}
	if err != nil {
		return pricing.CostProfile{}, false, err
	}
	var p pricing.CostProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return pricing.CostProfile{}, false, err
	}
	return p, true, nil
}

func (c *RedisCache) Set(ctx context.Context, tenantID int64, p pricing.CostProfile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(tenantID, p.ProfileID), raw, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, tenantID int64, profileID string) error {
	return c.client.Del(ctx, cacheKey(tenantID, profileID)).Err()
}
