package models

import (
	"encoding/json"
	"time"
)

// IdempotencyTTL bounds how long a stored response can be replayed
const IdempotencyTTL = 24 * time.Hour

// IdempotencyKey is the stored first response of a keyed POST, scoped to
// (key, route, user_id)
type IdempotencyKey struct {
	Key          string          `json:"key"`
	Route        string          `json:"route"`
	UserID       string          `json:"user_id"`
	ResponseBody json.RawMessage `json:"response_body"`
	StatusCode   int             `json:"status_code"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Expired reports whether the record is older than IdempotencyTTL at now
func (k *IdempotencyKey) Expired(now time.Time) bool {
	return now.Sub(k.CreatedAt) > IdempotencyTTL
}
