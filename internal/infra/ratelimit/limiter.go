package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result результат проверки лимита
type Result struct {
	Allowed    bool
	Count      int64
	Limit      int
	RetryAfter time.Duration
}

// RedisLimiter счетчик фиксированного окна (INCR + EXPIRE)
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// NewRedisLimiter создает лимитер: не более limit запросов на ключ за window
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "ratelimit",
	}
}

// Allow увеличивает счетчик ключа и проверяет лимит
func (l *RedisLimiter) Allow(ctx context.Context, key string) (*Result, error) {
	windowStart := time.Now().Truncate(l.window)
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, windowStart.Unix())

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return nil, fmt.Errorf("ratelimit: increment %s: %w", redisKey, err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return nil, fmt.Errorf("ratelimit: expire %s: %w", redisKey, err)
		}
	}

	result := &Result{
		Allowed: count <= int64(l.limit),
		Count:   count,
		Limit:   l.limit,
	}
	if !result.Allowed {
		result.RetryAfter = time.Until(windowStart.Add(l.window))
	}
	return result, nil
}
