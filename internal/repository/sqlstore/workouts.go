package sqlstore

import (
	"context"
	"fmt"

	"github.com/JonnyWalker81/fittrack/backend/internal/models"
)

type WorkoutRepo struct {
	db *DB
}

func (r *WorkoutRepo) Create(ctx context.Context, w *models.Workout) (*models.Workout, error) {
	out := *w
	if out.ID == "" {
		id, err := newID()
		if err != nil {
			return nil, err
		}
		out.ID = id
	}

	ts := now()
	_, err := r.db.ExecContext(ctx, r.db.rebind(`
		INSERT INTO workouts (id, user_id, date, name, workout_type, duration_minutes, calories, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), out.ID, out.UserID, out.Date, out.Name, out.WorkoutType, out.DurationMinutes, out.Calories, out.Notes, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("workout insert: %w", err)
	}

	if out.CreatedAt, err = parseTime(ts); err != nil {
		return nil, err
	}
	out.UpdatedAt = out.CreatedAt
	return &out, nil
}

func (r *WorkoutRepo) GetByUserAndDateRange(ctx context.Context, userID string, start, end models.Date) ([]models.Workout, error) {
	rows, err := r.db.QueryContext(ctx, r.db.rebind(`
		SELECT id, user_id, date, name, workout_type, duration_minutes, calories, notes, created_at, updated_at
		FROM workouts
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC, created_at ASC
	`), userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("workout list: %w", err)
	}
	defer rows.Close()

	var out []models.Workout
	for rows.Next() {
		var w models.Workout
		var createdAt, updatedAt string
		if err := rows.Scan(&w.ID, &w.UserID, &w.Date, &w.Name, &w.WorkoutType, &w.DurationMinutes, &w.Calories, &w.Notes, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("workout scan: %w", err)
		}
		if w.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if w.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("workout rows: %w", err)
	}
	return out, nil
}

func (r *WorkoutRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	row := r.db.QueryRowContext(ctx, r.db.rebind(`SELECT COUNT(*) FROM workouts WHERE user_id = ?`), userID)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("workout count: %w", err)
	}
	return n, nil
}

func (r *WorkoutRepo) LastWorkoutDate(ctx context.Context, userID string) (*models.Date, error) {
	row := r.db.QueryRowContext(ctx, r.db.rebind(`
		SELECT date FROM workouts WHERE user_id = ? ORDER BY date DESC LIMIT 1
	`), userID)
	return scanLastDate(row)
}
