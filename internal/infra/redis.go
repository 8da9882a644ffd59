// README: Redis client initialization for the profile snapshot cache.
package infra

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewRedis returns nil when addr is empty so callers can run without a cache.
func NewRedis(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
