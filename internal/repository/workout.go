package repository

import (
	"context"
	"fmt"

	"github.com/JonnyWalker81/fittrack/backend/internal/models"
	"github.com/JonnyWalker81/fittrack/backend/pkg/supabase"
)

type workoutRepository struct {
	client *supabase.Client
}

// NewWorkoutRepository creates a new workout repository
func NewWorkoutRepository(client *supabase.Client) WorkoutRepository {
	return &workoutRepository{client: client}
}

func (r *workoutRepository) Create(ctx context.Context, workout *models.Workout) (*models.Workout, error) {
	data := map[string]interface{}{
		"user_id":          workout.UserID,
		"date":             workout.Date.String(),
		"name":             workout.Name,
		"workout_type":     workout.WorkoutType,
		"duration_minutes": workout.DurationMinutes,
		"calories":         workout.Calories,
		"notes":            workout.Notes,
	}
	if workout.ID != "" {
		data["id"] = workout.ID
	}

	body, err := r.client.Insert(ctx, "workouts", data)
	if err != nil {
		return nil, fmt.Errorf("failed to create workout: %w", err)
	}

	return decodeFirst[models.Workout](body, "no workout returned")
}

func (r *workoutRepository) GetByUserAndDateRange(ctx context.Context, userID string, start, end models.Date) ([]models.Workout, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"and":     dateRange(start, end),
		"order":   "date.asc",
	}

	body, err := r.client.QueryWithToken(ctx, "workouts", query, userToken(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get workouts: %w", err)
	}

	return decodeRows[models.Workout](body)
}

// CountByUser returns total workouts for a user
func (r *workoutRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
	}

	n, err := r.client.Count(ctx, "workouts", query)
	if err != nil {
		return 0, fmt.Errorf("failed to count workouts: %w", err)
	}
	return n, nil
}

// LastWorkoutDate returns the most recent workout date, or nil when the user has none
func (r *workoutRepository) LastWorkoutDate(ctx context.Context, userID string) (*models.Date, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"select":  "date",
		"order":   "date.desc",
		"limit":   1,
	}

	body, err := r.client.QueryWithToken(ctx, "workouts", query, userToken(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get last workout date: %w", err)
	}

	return lastDate(body)
}
