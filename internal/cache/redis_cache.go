package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/analytics-service/internal/models"
	"github.com/SAP-F-2025/analytics-service/internal/utils"
)

const analyticsKeyPrefix = "analytics:faculty:"

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger utils.Logger
	now    func() time.Time
}

// NewRedisCache builds a Redis-backed analytics cache. A zero ttl stores
// entries without expiry; staleness is then decided by callers from
// CacheEntry.ComputedAt.
func NewRedisCache(client *redis.Client, ttl time.Duration, logger utils.Logger) AnalyticsCache {
	return &redisCache{
		client: client,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

func (r *redisCache) Get(ctx context.Context, facultyID string) (*models.CacheEntry, error) {
	payload, err := r.client.Get(ctx, analyticsKey(facultyID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("read analytics cache: %w", err)
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		// A corrupt entry behaves like a miss; the next Put repairs it.
		r.logger.Warn("Dropping corrupt analytics cache entry", "faculty_id", facultyID, "error", err)
		return nil, nil
	}
	return &entry, nil
}

func (r *redisCache) Put(ctx context.Context, facultyID string, bundle models.AnalyticsBundle) error {
	entry := models.CacheEntry{
		FacultyID:  facultyID,
		Bundle:     bundle,
		ComputedAt: r.now(),
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal analytics cache entry: %w", err)
	}

	if err := r.client.Set(ctx, analyticsKey(facultyID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("write analytics cache: %w", err)
	}
	return nil
}

func (r *redisCache) Invalidate(ctx context.Context, facultyID string) error {
	if err := r.client.Del(ctx, analyticsKey(facultyID)).Err(); err != nil {
		return fmt.Errorf("invalidate analytics cache: %w", err)
	}
	return nil
}

func analyticsKey(facultyID string) string {
	return analyticsKeyPrefix + facultyID
}
