// internal/engine/submission/redis_store.go
package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"compliance-copilot/internal/common/database"
	"compliance-copilot/internal/common/errors"
	"compliance-copilot/internal/models"
)

const redisKeyPrefix = "submission:"

// RedisStore persists submissions as JSON documents with a TTL, so idle
// conversations expire without a separate cleanup job.
type RedisStore struct {
	client *database.RedisClient
	ttl    time.Duration
}

func NewRedisStore(client *database.RedisClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Submission, error) {
	raw, err := s.client.Get(ctx, redisKey(id))
	if err == redis.Nil {
		return nil, errors.NewSubmissionNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewCacheOperationFailedError("get", err)
	}

	var sub models.Submission
	if err := json.Unmarshal([]byte(raw), &sub); err != nil {
		return nil, errors.NewCacheOperationFailedError("get", fmt.Errorf("corrupt submission %s: %w", id, err))
	}
	return &sub, nil
}

func (s *RedisStore) Put(ctx context.Context, sub *models.Submission) error {
	raw, err := json.Marshal(sub)
	if err != nil {
		return errors.NewCacheOperationFailedError("put", err)
	}
	if err := s.client.Set(ctx, redisKey(sub.ID), raw, s.ttl); err != nil {
		return errors.NewCacheOperationFailedError("put", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKey(id)); err != nil {
		return errors.NewCacheOperationFailedError("delete", err)
	}
	return nil
}
