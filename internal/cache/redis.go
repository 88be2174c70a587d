package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JonnyWalker81/fittrack/backend/internal/models"
)

const keyPrefix = "fittrack:"

// Redis is a SummaryCache backed by one hash per user (field = reference date),
// so that invalidation is a single DEL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// Connect parses a redis:// URL and pings the server
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewRedis creates a summary cache whose entries expire after ttl
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func summaryKey(userID string) string {
	return keyPrefix + "summary:" + userID
}

func (r *Redis) GetSummary(ctx context.Context, userID string, asOf models.Date) (*models.StatsSummary, bool, error) {
	raw, err := r.client.HGet(ctx, summaryKey(userID), asOf.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis hget: %w", err)
	}

	var summary models.StatsSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		// a stale layout is just a miss
		return nil, false, nil
	}
	return &summary, true, nil
}

func (r *Redis) SetSummary(ctx context.Context, userID string, asOf models.Date, summary *models.StatsSummary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	key := summaryKey(userID)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, asOf.String(), raw)
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

func (r *Redis) Invalidate(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, summaryKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// IdempotencyStore keeps replayable responses in Redis with a TTL.
// It satisfies repository.IdempotencyRepository.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore creates a Redis idempotency store
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl}
}

func idempotencyKey(key, route, userID string) string {
	return fmt.Sprintf("%sidem:%s:%s:%s", keyPrefix, userID, route, key)
}

func (s *IdempotencyStore) Get(ctx context.Context, key, route, userID string) (*models.IdempotencyKey, error) {
	raw, err := s.client.Get(ctx, idempotencyKey(key, route, userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var rec models.IdempotencyKey
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode idempotency record: %w", err)
	}
	return &rec, nil
}

func (s *IdempotencyStore) Store(ctx context.Context, key, route, userID string, responseBody []byte, statusCode int) error {
	raw, err := json.Marshal(models.IdempotencyKey{
		Key:          key,
		Route:        route,
		UserID:       userID,
		ResponseBody: json.RawMessage(responseBody),
		StatusCode:   statusCode,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode idempotency record: %w", err)
	}

	// SETNX: the first stored response wins
	if err := s.client.SetNX(ctx, idempotencyKey(key, route, userID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	return nil
}
