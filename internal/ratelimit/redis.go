package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window counter shared by every instance using the same Redis.
type RedisLimiter struct {
	client   redis.Cmdable
	attempts int64
	window   time.Duration
}

// NewRedisLimiter allows attempts requests per window for each key.
func NewRedisLimiter(client redis.Cmdable, attempts int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, attempts: int64(attempts), window: window}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	key = "ratelimit:" + key
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, r.window)
		return nil
	})
	if err != nil {
		return false, err
	}
	return incr.Val() <= r.attempts, nil
}
