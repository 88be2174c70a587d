package sqlstore

import (
	"context"
	"fmt"

	"github.com/JonnyWalker81/fittrack/backend/internal/models"
)

type DailyStatsRepo struct {
	db *DB
}

func (r *DailyStatsRepo) UpsertWorkoutStats(ctx context.Context, s *models.WorkoutStats) (*models.WorkoutStats, error) {
	id, err := newID()
	if err != nil {
		return nil, err
	}

	_, err = r.db.ExecContext(ctx, r.db.rebind(`
		INSERT INTO workout_stats (id, user_id, date, total_duration, total_calories_burned, workout_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, date) DO UPDATE SET
			total_duration = excluded.total_duration,
			total_calories_burned = excluded.total_calories_burned,
			workout_count = excluded.workout_count
	`), id, s.UserID, s.Date, s.TotalDuration, s.TotalCaloriesBurned, s.WorkoutCount, now())
	if err != nil {
		return nil, fmt.Errorf("workout stats upsert: %w", err)
	}

	rows, err := r.GetWorkoutStats(ctx, s.UserID, s.Date, s.Date)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("workout stats upsert: row missing after write")
	}
	return &rows[0], nil
}

func (r *DailyStatsRepo) UpsertNutritionStats(ctx context.Context, s *models.NutritionStats) (*models.NutritionStats, error) {
	id, err := newID()
	if err != nil {
		return nil, err
	}

	_, err = r.db.ExecContext(ctx, r.db.rebind(`
		INSERT INTO nutrition_stats (id, user_id, date, total_calories, total_protein, total_carbs, total_fat, meal_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, date) DO UPDATE SET
			total_calories = excluded.total_calories,
			total_protein = excluded.total_protein,
			total_carbs = excluded.total_carbs,
			total_fat = excluded.total_fat,
			meal_count = excluded.meal_count
	`), id, s.UserID, s.Date, s.TotalCalories, s.TotalProtein, s.TotalCarbs, s.TotalFat, s.MealCount, now())
	if err != nil {
		return nil, fmt.Errorf("nutrition stats upsert: %w", err)
	}

	rows, err := r.GetNutritionStats(ctx, s.UserID, s.Date, s.Date)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("nutrition stats upsert: row missing after write")
	}
	return &rows[0], nil
}

func (r *DailyStatsRepo) GetWorkoutStats(ctx context.Context, userID string, start, end models.Date) ([]models.WorkoutStats, error) {
	rows, err := r.db.QueryContext(ctx, r.db.rebind(`
		SELECT id, user_id, date, total_duration, total_calories_burned, workout_count, created_at
		FROM workout_stats
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`), userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("workout stats list: %w", err)
	}
	defer rows.Close()

	var out []models.WorkoutStats
	for rows.Next() {
		var s models.WorkoutStats
		var createdAt string
		if err := rows.Scan(&s.ID, &s.UserID, &s.Date, &s.TotalDuration, &s.TotalCaloriesBurned, &s.WorkoutCount, &createdAt); err != nil {
			return nil, fmt.Errorf("workout stats scan: %w", err)
		}
		if s.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("workout stats rows: %w", err)
	}
	return out, nil
}

func (r *DailyStatsRepo) GetNutritionStats(ctx context.Context, userID string, start, end models.Date) ([]models.NutritionStats, error) {
	rows, err := r.db.QueryContext(ctx, r.db.rebind(`
		SELECT id, user_id, date, total_calories, total_protein, total_carbs, total_fat, meal_count, created_at
		FROM nutrition_stats
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`), userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("nutrition stats list: %w", err)
	}
	defer rows.Close()

	var out []models.NutritionStats
	for rows.Next() {
		var s models.NutritionStats
		var createdAt string
		if err := rows.Scan(&s.ID, &s.UserID, &s.Date, &s.TotalCalories, &s.TotalProtein, &s.TotalCarbs, &s.TotalFat, &s.MealCount, &createdAt); err != nil {
			return nil, fmt.Errorf("nutrition stats scan: %w", err)
		}
		if s.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("nutrition stats rows: %w", err)
	}
	return out, nil
}
