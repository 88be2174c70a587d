package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/JonnyWalker81/fittrack/backend/internal/models"
	"github.com/JonnyWalker81/fittrack/backend/internal/repository"
)

type UserStatsRepo struct {
	db *DB
}

func (r *UserStatsRepo) get(ctx context.Context, q querier, userID string) (*models.UserStats, error) {
	row := q.QueryRowContext(ctx, r.db.rebind(`
		SELECT id, user_id, total_workouts, total_habits_completed, total_calories_consumed,
			total_calories_burned, current_streak, longest_streak, last_activity_date, created_at, updated_at
		FROM user_stats WHERE user_id = ?
	`), userID)

	var s models.UserStats
	var last models.Date
	var createdAt, updatedAt string
	err := row.Scan(&s.ID, &s.UserID, &s.TotalWorkouts, &s.TotalHabitsCompleted, &s.TotalCaloriesConsumed,
		&s.TotalCaloriesBurned, &s.CurrentStreak, &s.LongestStreak, &last, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user stats %s: %w", userID, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("user stats get: %w", err)
	}

	if !last.IsZero() {
		s.LastActivityDate = &last
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *UserStatsRepo) GetOrCreate(ctx context.Context, userID string) (*models.UserStats, error) {
	id, err := newID()
	if err != nil {
		return nil, err
	}

	ts := now()
	_, err = r.db.ExecContext(ctx, r.db.rebind(`
		INSERT INTO user_stats (id, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO NOTHING
	`), id, userID, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("user stats insert: %w", err)
	}

	return r.get(ctx, r.db, userID)
}

func (r *UserStatsRepo) SaveRollup(ctx context.Context, stats *models.UserStats) (*models.UserStats, error) {
	var last any
	if stats.LastActivityDate != nil {
		last = *stats.LastActivityDate
	}

	// longest_streak only ever rises, even when a stale refresh writes last
	res, err := r.db.ExecContext(ctx, r.db.rebind(columnTypes[r.db.dialect].Replace(`
		UPDATE user_stats SET
			total_workouts = ?,
			total_habits_completed = ?,
			current_streak = ?,
			longest_streak = {{greatest}}(longest_streak, ?),
			last_activity_date = ?,
			updated_at = ?
		WHERE user_id = ?
	`)), stats.TotalWorkouts, stats.TotalHabitsCompleted, stats.CurrentStreak, stats.LongestStreak, last, now(), stats.UserID)
	if err != nil {
		return nil, fmt.Errorf("user stats update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("user stats rows affected: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("user stats %s: %w", stats.UserID, repository.ErrNotFound)
	}

	return r.get(ctx, r.db, stats.UserID)
}
