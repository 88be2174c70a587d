package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonnyWalker81/fittrack/backend/internal/models"
	"github.com/JonnyWalker81/fittrack/backend/pkg/supabase"
)

type userStatsRepository struct {
	client *supabase.Client
}

// NewUserStatsRepository creates a new user stats repository
func NewUserStatsRepository(client *supabase.Client) UserStatsRepository {
	return &userStatsRepository{client: client}
}

func (r *userStatsRepository) get(ctx context.Context, userID string) (*models.UserStats, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
	}

	body, err := r.client.QueryWithToken(ctx, "user_stats", query, userToken(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	return decodeFirst[models.UserStats](body, "user stats")
}

func (r *userStatsRepository) GetOrCreate(ctx context.Context, userID string) (*models.UserStats, error) {
	stats, err := r.get(ctx, userID)
	if err == nil {
		return stats, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	// A concurrent first access may insert between the read and here;
	// ignore-duplicates keeps the existing row and the re-read returns it.
	data := map[string]interface{}{
		"user_id": userID,
	}
	if _, err := r.client.InsertIgnoreDuplicates(ctx, "user_stats", data, "user_id"); err != nil {
		return nil, fmt.Errorf("failed to create user stats: %w", err)
	}

	return r.get(ctx, userID)
}

func (r *userStatsRepository) SaveRollup(ctx context.Context, stats *models.UserStats) (*models.UserStats, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", stats.UserID),
	}

	var lastActivity interface{}
	if stats.LastActivityDate != nil {
		lastActivity = stats.LastActivityDate.String()
	}

	data := map[string]interface{}{
		"total_workouts":         stats.TotalWorkouts,
		"total_habits_completed": stats.TotalHabitsCompleted,
		"current_streak":         stats.CurrentStreak,
		"last_activity_date":     lastActivity,
		"updated_at":             time.Now().UTC().Format(time.RFC3339Nano),
	}

	body, err := r.client.UpdateWhere(ctx, "user_stats", query, data)
	if err != nil {
		return nil, fmt.Errorf("failed to save user stats: %w", err)
	}
	saved, err := decodeFirst[models.UserStats](body, "user stats")
	if err != nil {
		return nil, err
	}
	if saved.LongestStreak >= stats.LongestStreak {
		return saved, nil
	}

	// Conditional so a concurrent refresh with a higher maximum is never lowered
	raise := map[string]interface{}{
		"user_id":        fmt.Sprintf("eq.%s", stats.UserID),
		"longest_streak": fmt.Sprintf("lt.%d", stats.LongestStreak),
	}
	body, err = r.client.UpdateWhere(ctx, "user_stats", raise, map[string]interface{}{
		"longest_streak": stats.LongestStreak,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to raise longest streak: %w", err)
	}

	raised, err := decodeFirst[models.UserStats](body, "user stats")
	if errors.Is(err, ErrNotFound) {
		// another refresh already stored a higher maximum
		return r.get(ctx, stats.UserID)
	}
	return raised, err
}
