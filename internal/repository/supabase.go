package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JonnyWalker81/fittrack/backend/internal/models"
	"github.com/JonnyWalker81/fittrack/backend/pkg/supabase"
)

type userTokenKey struct{}

// WithUserToken attaches the caller's JWT so PostgREST reads run under row level security
func WithUserToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, userTokenKey{}, token)
}

func userToken(ctx context.Context) string {
	if token, ok := ctx.Value(userTokenKey{}).(string); ok {
		return token
	}
	return ""
}

// NewSupabaseRepositories wires every repository against a PostgREST backend
func NewSupabaseRepositories(client *supabase.Client) *Repositories {
	return &Repositories{
		Habits:      NewHabitRepository(client),
		Progress:    NewHabitProgressRepository(client),
		Workouts:    NewWorkoutRepository(client),
		Nutrition:   NewNutritionRepository(client),
		UserStats:   NewUserStatsRepository(client),
		DailyStats:  NewDailyStatsRepository(client),
		Idempotency: NewIdempotencyRepository(client),
	}
}

func decodeRows[T any](body []byte) ([]T, error) {
	var rows []T
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return rows, nil
}

func decodeFirst[T any](body []byte, what string) (*T, error) {
	rows, err := decodeRows[T](body)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return &rows[0], nil
}

// dateRange builds an inclusive PostgREST range filter on the date column
func dateRange(start, end models.Date) string {
	return fmt.Sprintf("(date.gte.%s,date.lte.%s)", start, end)
}

func lastDate(body []byte) (*models.Date, error) {
	rows, err := decodeRows[struct {
		Date models.Date `json:"date"`
	}](body)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || rows[0].Date.IsZero() {
		return nil, nil
	}
	d := rows[0].Date
	return &d, nil
}
