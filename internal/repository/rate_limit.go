package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "servicen_platform/pkg/errors"
	"servicen_platform/pkg/logger"
)

// keyPrefix изолирует счетчики лимитов от остальных ключей Redis
const rateLimitKeyPrefix = "ratelimit:"

type RateLimitRepository interface {
	CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

type rateLimitRepository struct {
	redis *redis.Client
	log   logger.Logger
}

func NewRateLimitRepository(redis *redis.Client, log logger.Logger) RateLimitRepository {
	return &rateLimitRepository{redis: redis, log: log}
}

func (r *rateLimitRepository) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.redis.Get(ctx, rateLimitKeyPrefix+key).Int()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		r.log.Error("Failed to check rate limit", "error", err, "key", key)
		return false, apperrors.NewInfrastructureError("check rate limit", err)
	}

	return count < limit, nil
}

func (r *rateLimitRepository) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := r.redis.Incr(ctx, rateLimitKeyPrefix+key).Result()
	if err != nil {
		r.log.Error("Failed to increment rate limit", "error", err, "key", key)
		return 0, apperrors.NewInfrastructureError("increment rate limit", err)
	}

	// TTL ставится только на первый инкремент окна
	if count == 1 {
		r.redis.Expire(ctx, rateLimitKeyPrefix+key, window)
	}

	return count, nil
}
