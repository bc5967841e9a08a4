package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"biographer-server/internal/models"
)

// Compile-time check
var _ GenerationLeaseRepository = (*redisLeaseRepository)(nil)

type redisLeaseRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisLeaseRepository creates a Redis-backed GenerationLeaseRepository.
// The TTL bounds how long a crashed run can block re-generation.
func NewRedisLeaseRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) GenerationLeaseRepository {
	return &redisLeaseRepository{
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisLeaseRepo"),
	}
}

func leaseKey(storyID uuid.UUID) string {
	return fmt.Sprintf("generation_lease:%s", storyID)
}

func attemptKey(storyID uuid.UUID) string {
	return fmt.Sprintf("generation_attempts:%s", storyID)
}

func (r *redisLeaseRepository) Acquire(ctx context.Context, storyID uuid.UUID) (int64, error) {
	ok, err := r.client.SetNX(ctx, leaseKey(storyID), time.Now().UTC().Format(time.RFC3339), r.ttl).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to acquire generation lease for story %s: %w", storyID, err)
	}
	if !ok {
		r.logger.Warn("Generation lease already held", zap.String("storyID", storyID.String()))
		return 0, models.ErrGenerationInProgress
	}

	attempt, err := r.client.Incr(ctx, attemptKey(storyID)).Result()
	if err != nil {
		// The lease itself is held; attempt accounting is best-effort.
		r.logger.Warn("Failed to increment generation attempt counter",
			zap.String("storyID", storyID.String()), zap.Error(err))
		return 0, nil
	}
	r.logger.Debug("Generation lease acquired",
		zap.String("storyID", storyID.String()), zap.Int64("attempt", attempt))
	return attempt, nil
}

func (r *redisLeaseRepository) Release(ctx context.Context, storyID uuid.UUID) error {
	if err := r.client.Del(ctx, leaseKey(storyID)).Err(); err != nil {
		r.logger.Error("Failed to release generation lease",
			zap.String("storyID", storyID.String()), zap.Error(err))
		return fmt.Errorf("failed to release generation lease for story %s: %w", storyID, err)
	}
	return nil
}
