package persistence

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const attemptKeyPrefix = "visitor:verify:attempts:"

// AttemptLimiter counts verification attempts per key in fixed Redis windows.
// It fails open: without Redis, or when Redis errors, every attempt is allowed.
type AttemptLimiter struct {
	redis  *Redis
	limit  int
	window time.Duration
	logger *zap.Logger
}

// NewAttemptLimiter builds a limiter allowing limit attempts per window.
func NewAttemptLimiter(r *Redis, limit int, window time.Duration, logger *zap.Logger) *AttemptLimiter {
	return &AttemptLimiter{redis: r, limit: limit, window: window, logger: logger}
}

// Allow records one attempt for key and reports whether it is within the limit.
func (l *AttemptLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l == nil || l.limit <= 0 || !l.redis.Enabled() {
		return true, nil
	}

	redisKey := attemptKeyPrefix + key
	count, err := l.redis.Client.Incr(ctx, redisKey).Result()
	if err != nil {
		l.logger.Warn("attempt limiter unavailable", zap.Error(err))
		return true, nil
	}
	if count == 1 {
		if err := l.redis.Client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			l.logger.Warn("attempt limiter expire failed", zap.String("key", redisKey), zap.Error(err))
		}
	}
	return count <= int64(l.limit), nil
}
