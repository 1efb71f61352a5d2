package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"anoa.com/campushub/pkg/apperror"
	"github.com/redis/go-redis/v9"
)

// RateLimitError is returned when a caller exhausted its attempts.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

func (e *RateLimitError) Unwrap() error {
	return apperror.ErrRateLimitExceeded
}

// Limiter counts attempts per key in fixed windows stored in Redis.
// A nil redis client disables limiting.
type Limiter struct {
	rdb    *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

func New(rdb *redis.Client, prefix string, limit int, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, prefix: prefix, limit: int64(limit), window: window}
}

// Hit records an attempt for key and returns a *RateLimitError when the
// window's budget is exceeded.
func (l *Limiter) Hit(ctx context.Context, key string) error {
	if l == nil || l.rdb == nil || l.limit <= 0 {
		return nil
	}

	redisKey := l.key(key)

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	if incr.Val() <= l.limit {
		return nil
	}

	ttl, err := l.rdb.TTL(ctx, redisKey).Result()
	if err != nil || ttl < 0 {
		ttl = l.window
	}

	return &RateLimitError{
		Message:    fmt.Sprintf("too many attempts, try again in %.0f seconds", ttl.Seconds()),
		RetryAfter: ttl,
	}
}

// Reset clears the attempts recorded for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Del(ctx, l.key(key)).Err()
}

func (l *Limiter) key(key string) string {
	return fmt.Sprintf("rate_limit:%s:%s", l.prefix, key)
}
