package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JonnyWalker81/fittrack/backend/internal/models"
	"github.com/JonnyWalker81/fittrack/backend/pkg/supabase"
)

type idempotencyRepository struct {
	client *supabase.Client
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(client *supabase.Client) IdempotencyRepository {
	return &idempotencyRepository{client: client}
}

func (r *idempotencyRepository) Get(ctx context.Context, key, route, userID string) (*models.IdempotencyKey, error) {
	cutoff := time.Now().Add(-models.IdempotencyTTL).UTC().Format(time.RFC3339)
	query := map[string]interface{}{
		"key":        "eq." + key,
		"route":      "eq." + route,
		"user_id":    "eq." + userID,
		"created_at": "gt." + cutoff,
	}

	body, err := r.client.Query(ctx, "idempotency_keys", query)
	if err != nil {
		return nil, fmt.Errorf("failed to query idempotency key: %w", err)
	}

	keys, err := decodeRows[models.IdempotencyKey](body)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}
	return &keys[0], nil
}

func (r *idempotencyRepository) Store(ctx context.Context, key, route, userID string, responseBody []byte, statusCode int) error {
	data := map[string]interface{}{
		"key":           key,
		"route":         route,
		"user_id":       userID,
		"response_body": json.RawMessage(responseBody),
		"status_code":   statusCode,
	}

	_, err := r.client.InsertIgnoreDuplicates(ctx, "idempotency_keys", data, "key,route,user_id")
	if err != nil {
		return fmt.Errorf("failed to store idempotency key: %w", err)
	}

	return nil
}
