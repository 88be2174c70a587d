package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonnyWalker81/fittrack/backend/internal/models"
	"github.com/JonnyWalker81/fittrack/backend/pkg/supabase"
)

// Progress rows carry no user_id; user scoping goes through an inner join on habits.
const progressWithOwner = "*,habits!inner(user_id)"

type habitProgressRepository struct {
	client *supabase.Client
}

// NewHabitProgressRepository creates a new habit progress repository
func NewHabitProgressRepository(client *supabase.Client) HabitProgressRepository {
	return &habitProgressRepository{client: client}
}

func (r *habitProgressRepository) GetByHabitAndDate(ctx context.Context, habitID string, date models.Date) (*models.HabitProgress, error) {
	query := map[string]interface{}{
		"habit_id": fmt.Sprintf("eq.%s", habitID),
		"date":     fmt.Sprintf("eq.%s", date),
	}

	body, err := r.client.QueryWithToken(ctx, "habit_progress", query, userToken(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get habit progress: %w", err)
	}

	return decodeFirst[models.HabitProgress](body, "habit progress")
}

func (r *habitProgressRepository) Upsert(ctx context.Context, progress *models.HabitProgress) (*models.HabitProgress, bool, error) {
	_, err := r.GetByHabitAndDate(ctx, progress.HabitID, progress.Date)
	created := errors.Is(err, ErrNotFound)
	if err != nil && !created {
		return nil, false, err
	}

	// merge-duplicates only touches the columns sent, so notes survive an update
	data := map[string]interface{}{
		"habit_id":     progress.HabitID,
		"date":         progress.Date.String(),
		"completed":    progress.Completed,
		"actual_value": progress.ActualValue,
	}

	body, err := r.client.Upsert(ctx, "habit_progress", data, "habit_id,date")
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert habit progress: %w", err)
	}

	saved, err := decodeFirst[models.HabitProgress](body, "no habit progress returned")
	if err != nil {
		return nil, false, err
	}
	return saved, created, nil
}

func (r *habitProgressRepository) SetCompleted(ctx context.Context, habitID string, date models.Date, completed bool) (*models.HabitProgress, error) {
	query := map[string]interface{}{
		"habit_id": fmt.Sprintf("eq.%s", habitID),
		"date":     fmt.Sprintf("eq.%s", date),
	}
	data := map[string]interface{}{
		"completed": completed,
	}

	body, err := r.client.UpdateWhere(ctx, "habit_progress", query, data)
	if err != nil {
		return nil, fmt.Errorf("failed to update habit progress: %w", err)
	}

	return decodeFirst[models.HabitProgress](body, "habit progress")
}

func (r *habitProgressRepository) GetByHabitAndDateRange(ctx context.Context, habitID string, start, end models.Date) ([]models.HabitProgress, error) {
	query := map[string]interface{}{
		"habit_id": fmt.Sprintf("eq.%s", habitID),
		"and":      dateRange(start, end),
		"order":    "date.asc",
	}

	body, err := r.client.QueryWithToken(ctx, "habit_progress", query, userToken(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get habit progress: %w", err)
	}

	return decodeRows[models.HabitProgress](body)
}

func (r *habitProgressRepository) GetByUserAndDateRange(ctx context.Context, userID string, start, end models.Date) ([]models.HabitProgress, error) {
	query := map[string]interface{}{
		"select":         progressWithOwner,
		"habits.user_id": fmt.Sprintf("eq.%s", userID),
		"and":            dateRange(start, end),
		"order":          "date.asc",
	}

	body, err := r.client.QueryWithToken(ctx, "habit_progress", query, userToken(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get habit progress: %w", err)
	}

	return decodeRows[models.HabitProgress](body)
}

func (r *habitProgressRepository) CompletedDates(ctx context.Context, userID string, start, end models.Date) ([]models.Date, error) {
	query := map[string]interface{}{
		"select":         "date,habits!inner(user_id)",
		"habits.user_id": fmt.Sprintf("eq.%s", userID),
		"completed":      "eq.true",
		"and":            dateRange(start, end),
		"order":          "date.desc",
	}

	body, err := r.client.QueryWithToken(ctx, "habit_progress", query, userToken(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get completed dates: %w", err)
	}

	rows, err := decodeRows[struct {
		Date models.Date `json:"date"`
	}](body)
	if err != nil {
		return nil, err
	}

	dates := make([]models.Date, 0, len(rows))
	for _, row := range rows {
		dates = append(dates, row.Date)
	}
	return dates, nil
}

func (r *habitProgressRepository) CountCompletedByUser(ctx context.Context, userID string) (int, error) {
	query := map[string]interface{}{
		"select":         "id,habits!inner(user_id)",
		"habits.user_id": fmt.Sprintf("eq.%s", userID),
		"completed":      "eq.true",
	}

	n, err := r.client.Count(ctx, "habit_progress", query)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed habits: %w", err)
	}
	return n, nil
}

func (r *habitProgressRepository) LastCompletedDate(ctx context.Context, userID string) (*models.Date, error) {
	query := map[string]interface{}{
		"select":         "date,habits!inner(user_id)",
		"habits.user_id": fmt.Sprintf("eq.%s", userID),
		"completed":      "eq.true",
		"order":          "date.desc",
		"limit":          1,
	}

	body, err := r.client.QueryWithToken(ctx, "habit_progress", query, userToken(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get last completed date: %w", err)
	}

	return lastDate(body)
}
