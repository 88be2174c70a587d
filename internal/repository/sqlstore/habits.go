package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/JonnyWalker81/fittrack/backend/internal/models"
	"github.com/JonnyWalker81/fittrack/backend/internal/repository"
)

const habitColumns = `id, user_id, title, kind, target_value, color_hex, created_at, updated_at`

type HabitRepo struct {
	db *DB
}

func (r *HabitRepo) Create(ctx context.Context, habit *models.Habit) (*models.Habit, error) {
	id := habit.ID
	if id == "" {
		var err error
		if id, err = newID(); err != nil {
			return nil, err
		}
	}
	kind := habit.Kind
	if kind == "" {
		kind = models.HabitKindDaily
	}

	ts := now()
	_, err := r.db.ExecContext(ctx, r.db.rebind(`
		INSERT INTO habits (id, user_id, title, kind, target_value, color_hex, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), id, habit.UserID, habit.Title, string(kind), habit.TargetValue, habit.ColorHex, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("habit insert: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *HabitRepo) GetByID(ctx context.Context, id string) (*models.Habit, error) {
	row := r.db.QueryRowContext(ctx, r.db.rebind(`SELECT `+habitColumns+` FROM habits WHERE id = ?`), id)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("habit %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("habit get: %w", err)
	}
	return h, nil
}

func (r *HabitRepo) GetByUserID(ctx context.Context, userID string) ([]models.Habit, error) {
	rows, err := r.db.QueryContext(ctx, r.db.rebind(`
		SELECT `+habitColumns+` FROM habits WHERE user_id = ? ORDER BY created_at ASC
	`), userID)
	if err != nil {
		return nil, fmt.Errorf("habit list: %w", err)
	}
	defer rows.Close()

	var out []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("habit scan: %w", err)
		}
		out = append(out, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("habit rows: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHabit(s scanner) (*models.Habit, error) {
	var h models.Habit
	var kind, createdAt, updatedAt string
	if err := s.Scan(&h.ID, &h.UserID, &h.Title, &kind, &h.TargetValue, &h.ColorHex, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	h.Kind = models.HabitKind(kind)

	var err error
	if h.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if h.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &h, nil
}
