package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/JonnyWalker81/fittrack/backend/internal/models"
	"github.com/JonnyWalker81/fittrack/backend/internal/repository"
)

const progressColumns = `p.id, p.habit_id, p.date, p.completed, p.actual_value, p.notes, p.created_at`

type ProgressRepo struct {
	db *DB
}

func (r *ProgressRepo) get(ctx context.Context, q querier, habitID string, date models.Date) (*models.HabitProgress, error) {
	row := q.QueryRowContext(ctx, r.db.rebind(`
		SELECT `+progressColumns+` FROM habit_progress p WHERE p.habit_id = ? AND p.date = ?
	`), habitID, date)
	p, err := scanProgress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("habit progress %s@%s: %w", habitID, date, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("progress get: %w", err)
	}
	return p, nil
}

func (r *ProgressRepo) GetByHabitAndDate(ctx context.Context, habitID string, date models.Date) (*models.HabitProgress, error) {
	return r.get(ctx, r.db, habitID, date)
}

func (r *ProgressRepo) Upsert(ctx context.Context, progress *models.HabitProgress) (*models.HabitProgress, bool, error) {
	var saved *models.HabitProgress
	var created bool

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := r.get(ctx, tx, progress.HabitID, progress.Date)
		created = errors.Is(err, repository.ErrNotFound)
		if err != nil && !created {
			return err
		}

		id, err := newID()
		if err != nil {
			return err
		}

		// ON CONFLICT keeps the unique (habit_id, date) row authoritative
		// even if another writer inserted it after the read above.
		_, err = tx.ExecContext(ctx, r.db.rebind(`
			INSERT INTO habit_progress (id, habit_id, date, completed, actual_value, notes, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (habit_id, date) DO UPDATE SET
				completed = excluded.completed,
				actual_value = excluded.actual_value
		`), id, progress.HabitID, progress.Date, progress.Completed, progress.ActualValue, progress.Notes, now())
		if err != nil {
			return fmt.Errorf("progress upsert: %w", err)
		}

		saved, err = r.get(ctx, tx, progress.HabitID, progress.Date)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return saved, created, nil
}

func (r *ProgressRepo) SetCompleted(ctx context.Context, habitID string, date models.Date, completed bool) (*models.HabitProgress, error) {
	res, err := r.db.ExecContext(ctx, r.db.rebind(`
		UPDATE habit_progress SET completed = ? WHERE habit_id = ? AND date = ?
	`), completed, habitID, date)
	if err != nil {
		return nil, fmt.Errorf("progress update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("progress rows affected: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("habit progress %s@%s: %w", habitID, date, repository.ErrNotFound)
	}
	return r.get(ctx, r.db, habitID, date)
}

func (r *ProgressRepo) GetByHabitAndDateRange(ctx context.Context, habitID string, start, end models.Date) ([]models.HabitProgress, error) {
	return r.list(ctx, `
		SELECT `+progressColumns+` FROM habit_progress p
		WHERE p.habit_id = ? AND p.date >= ? AND p.date <= ?
		ORDER BY p.date ASC
	`, habitID, start, end)
}

func (r *ProgressRepo) GetByUserAndDateRange(ctx context.Context, userID string, start, end models.Date) ([]models.HabitProgress, error) {
	return r.list(ctx, `
		SELECT `+progressColumns+` FROM habit_progress p
		JOIN habits h ON h.id = p.habit_id
		WHERE h.user_id = ? AND p.date >= ? AND p.date <= ?
		ORDER BY p.date ASC
	`, userID, start, end)
}

func (r *ProgressRepo) list(ctx context.Context, query string, args ...any) ([]models.HabitProgress, error) {
	rows, err := r.db.QueryContext(ctx, r.db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("progress list: %w", err)
	}
	defer rows.Close()

	var out []models.HabitProgress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("progress scan: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("progress rows: %w", err)
	}
	return out, nil
}

func (r *ProgressRepo) CompletedDates(ctx context.Context, userID string, start, end models.Date) ([]models.Date, error) {
	rows, err := r.db.QueryContext(ctx, r.db.rebind(`
		SELECT DISTINCT p.date FROM habit_progress p
		JOIN habits h ON h.id = p.habit_id
		WHERE h.user_id = ? AND p.completed = ? AND p.date >= ? AND p.date <= ?
		ORDER BY p.date DESC
	`), userID, true, start, end)
	if err != nil {
		return nil, fmt.Errorf("completed dates: %w", err)
	}
	defer rows.Close()

	var out []models.Date
	for rows.Next() {
		var d models.Date
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("completed dates scan: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("completed dates rows: %w", err)
	}
	return out, nil
}

func (r *ProgressRepo) CountCompletedByUser(ctx context.Context, userID string) (int, error) {
	row := r.db.QueryRowContext(ctx, r.db.rebind(`
		SELECT COUNT(*) FROM habit_progress p
		JOIN habits h ON h.id = p.habit_id
		WHERE h.user_id = ? AND p.completed = ?
	`), userID, true)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("completed count: %w", err)
	}
	return n, nil
}

func (r *ProgressRepo) LastCompletedDate(ctx context.Context, userID string) (*models.Date, error) {
	row := r.db.QueryRowContext(ctx, r.db.rebind(`
		SELECT p.date FROM habit_progress p
		JOIN habits h ON h.id = p.habit_id
		WHERE h.user_id = ? AND p.completed = ?
		ORDER BY p.date DESC
		LIMIT 1
	`), userID, true)
	return scanLastDate(row)
}

func scanProgress(s scanner) (*models.HabitProgress, error) {
	var p models.HabitProgress
	var createdAt string
	if err := s.Scan(&p.ID, &p.HabitID, &p.Date, &p.Completed, &p.ActualValue, &p.Notes, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanLastDate(row *sql.Row) (*models.Date, error) {
	var d models.Date
	if err := row.Scan(&d); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last date: %w", err)
	}
	return &d, nil
}
