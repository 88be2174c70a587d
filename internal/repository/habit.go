package repository

import (
	"context"
	"fmt"

	"github.com/JonnyWalker81/fittrack/backend/internal/models"
	"github.com/JonnyWalker81/fittrack/backend/pkg/supabase"
)

type habitRepository struct {
	client *supabase.Client
}

// NewHabitRepository creates a new habit repository
func NewHabitRepository(client *supabase.Client) HabitRepository {
	return &habitRepository{client: client}
}

func (r *habitRepository) Create(ctx context.Context, habit *models.Habit) (*models.Habit, error) {
	data := map[string]interface{}{
		"user_id":      habit.UserID,
		"title":        habit.Title,
		"kind":         habit.Kind,
		"target_value": habit.TargetValue,
		"color_hex":    habit.ColorHex,
	}

	// Client-generated ids (UUIDv7) are kept as-is
	if habit.ID != "" {
		data["id"] = habit.ID
	}

	body, err := r.client.Insert(ctx, "habits", data)
	if err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	return decodeFirst[models.Habit](body, "no habit returned")
}

func (r *habitRepository) GetByID(ctx context.Context, id string) (*models.Habit, error) {
	query := map[string]interface{}{
		"id": fmt.Sprintf("eq.%s", id),
	}

	body, err := r.client.QueryWithToken(ctx, "habits", query, userToken(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}

	return decodeFirst[models.Habit](body, "habit "+id)
}

func (r *habitRepository) GetByUserID(ctx context.Context, userID string) ([]models.Habit, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"order":   "created_at.asc",
	}

	body, err := r.client.QueryWithToken(ctx, "habits", query, userToken(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get habits: %w", err)
	}

	return decodeRows[models.Habit](body)
}
