// Package cache holds the read-through cache for stats summaries and the
// Redis-backed idempotency store.
package cache

import (
	"context"

	"github.com/JonnyWalker81/fittrack/backend/internal/models"
)

// SummaryCache stores computed stats summaries per user and reference date.
// A miss is (nil, false, nil); errors are reserved for an unreachable backend.
type SummaryCache interface {
	GetSummary(ctx context.Context, userID string, asOf models.Date) (*models.StatsSummary, bool, error)
	SetSummary(ctx context.Context, userID string, asOf models.Date, summary *models.StatsSummary) error
	Invalidate(ctx context.Context, userID string) error
}

// Nop is a SummaryCache that never hits
type Nop struct{}

func (Nop) GetSummary(context.Context, string, models.Date) (*models.StatsSummary, bool, error) {
	return nil, false, nil
}

func (Nop) SetSummary(context.Context, string, models.Date, *models.StatsSummary) error { return nil }

func (Nop) Invalidate(context.Context, string) error { return nil }
