package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/JonnyWalker81/fittrack/backend/internal/models"
)

type IdempotencyRepo struct {
	db *DB
}

func (r *IdempotencyRepo) Get(ctx context.Context, key, route, userID string) (*models.IdempotencyKey, error) {
	row := r.db.QueryRowContext(ctx, r.db.rebind(`
		SELECT key, route, user_id, response_body, status_code, created_at
		FROM idempotency_keys
		WHERE key = ? AND route = ? AND user_id = ?
	`), key, route, userID)

	var k models.IdempotencyKey
	var body, createdAt string
	if err := row.Scan(&k.Key, &k.Route, &k.UserID, &body, &k.StatusCode, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("idempotency get: %w", err)
	}
	k.ResponseBody = []byte(body)

	var err error
	if k.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if k.Expired(time.Now()) {
		return nil, nil
	}
	return &k, nil
}

func (r *IdempotencyRepo) Store(ctx context.Context, key, route, userID string, responseBody []byte, statusCode int) error {
	_, err := r.db.ExecContext(ctx, r.db.rebind(`
		INSERT INTO idempotency_keys (key, route, user_id, response_body, status_code, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (key, route, user_id) DO NOTHING
	`), key, route, userID, string(responseBody), statusCode, now())
	if err != nil {
		return fmt.Errorf("idempotency store: %w", err)
	}
	return nil
}
