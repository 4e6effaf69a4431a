package middlewares

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is the fixed-window limiter backed by redis, for deployments
// running more than one api instance against the same store.
type RedisLimiter struct {
	rdb    *redis.Client
	window time.Duration
	limit  int
}

func NewRedisLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		rdb:    rdb,
		limit:  limit,
		window: window,
	}
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	rkey := "ratelimit:v1:" + key

	count, err := rl.rdb.Incr(ctx, rkey).Result()

	if err != nil {
		return false, 0, err
	}

	// first hit in a window owns the expiry
	if count == 1 {
		err = rl.rdb.Expire(ctx, rkey, rl.window).Err()

		if err != nil {
			return false, 0, err
		}
	}

	if count > int64(rl.limit) {
		ttl, err := rl.rdb.TTL(ctx, rkey).Result()

		if err != nil || ttl < 0 {
			ttl = rl.window
		}

		return false, ttl, nil
	}

	return true, 0, nil
}
