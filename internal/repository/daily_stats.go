package repository

import (
	"context"
	"fmt"

	"github.com/JonnyWalker81/fittrack/backend/internal/models"
	"github.com/JonnyWalker81/fittrack/backend/pkg/supabase"
)

type dailyStatsRepository struct {
	client *supabase.Client
}

// NewDailyStatsRepository creates a new daily stats repository
func NewDailyStatsRepository(client *supabase.Client) DailyStatsRepository {
	return &dailyStatsRepository{client: client}
}

func (r *dailyStatsRepository) UpsertWorkoutStats(ctx context.Context, stats *models.WorkoutStats) (*models.WorkoutStats, error) {
	data := map[string]interface{}{
		"user_id":               stats.UserID,
		"date":                  stats.Date.String(),
		"total_duration":        stats.TotalDuration,
		"total_calories_burned": stats.TotalCaloriesBurned,
		"workout_count":         stats.WorkoutCount,
	}

	body, err := r.client.Upsert(ctx, "workout_stats", data, "user_id,date")
	if err != nil {
		return nil, fmt.Errorf("failed to upsert workout stats: %w", err)
	}

	return decodeFirst[models.WorkoutStats](body, "no workout stats returned")
}

func (r *dailyStatsRepository) UpsertNutritionStats(ctx context.Context, stats *models.NutritionStats) (*models.NutritionStats, error) {
	data := map[string]interface{}{
		"user_id":        stats.UserID,
		"date":           stats.Date.String(),
		"total_calories": stats.TotalCalories,
		"total_protein":  stats.TotalProtein,
		"total_carbs":    stats.TotalCarbs,
		"total_fat":      stats.TotalFat,
		"meal_count":     stats.MealCount,
	}

	body, err := r.client.Upsert(ctx, "nutrition_stats", data, "user_id,date")
	if err != nil {
		return nil, fmt.Errorf("failed to upsert nutrition stats: %w", err)
	}

	return decodeFirst[models.NutritionStats](body, "no nutrition stats returned")
}

func (r *dailyStatsRepository) GetWorkoutStats(ctx context.Context, userID string, start, end models.Date) ([]models.WorkoutStats, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"and":     dateRange(start, end),
		"order":   "date.asc",
	}

	body, err := r.client.QueryWithToken(ctx, "workout_stats", query, userToken(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get workout stats: %w", err)
	}

	return decodeRows[models.WorkoutStats](body)
}

func (r *dailyStatsRepository) GetNutritionStats(ctx context.Context, userID string, start, end models.Date) ([]models.NutritionStats, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"and":     dateRange(start, end),
		"order":   "date.asc",
	}

	body, err := r.client.QueryWithToken(ctx, "nutrition_stats", query, userToken(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get nutrition stats: %w", err)
	}

	return decodeRows[models.NutritionStats](body)
}
