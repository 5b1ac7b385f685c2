package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyKeyPrefix = "order:req:"
	alertGuardKeyPrefix  = "lowstock:"
	idempotencyKeyTTL    = 24 * time.Hour
	alertGuardTTL        = 12 * time.Hour
)

// RedisAdapter implements port.CacheRepository on Redis SetNX keys.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	return r.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, idempotencyKeyTTL).Result()
}

func (r *RedisAdapter) SetAlertGuard(ctx context.Context, productID string) (bool, error) {
	return r.client.SetNX(ctx, alertGuardKeyPrefix+productID, 1, alertGuardTTL).Result()
}
