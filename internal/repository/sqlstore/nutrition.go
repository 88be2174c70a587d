package sqlstore

import (
	"context"
	"fmt"

	"github.com/JonnyWalker81/fittrack/backend/internal/models"
)

type NutritionRepo struct {
	db *DB
}

func (r *NutritionRepo) Create(ctx context.Context, e *models.NutritionEntry) (*models.NutritionEntry, error) {
	out := *e
	if out.ID == "" {
		id, err := newID()
		if err != nil {
			return nil, err
		}
		out.ID = id
	}

	// decimal.Decimal values bind as their exact string form
	ts := now()
	_, err := r.db.ExecContext(ctx, r.db.rebind(`
		INSERT INTO nutrition_entries (id, user_id, date, name, calories, protein_g, carbs_g, fat_g, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), out.ID, out.UserID, out.Date, out.Name, out.Calories, out.ProteinG, out.CarbsG, out.FatG, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("nutrition insert: %w", err)
	}

	if out.CreatedAt, err = parseTime(ts); err != nil {
		return nil, err
	}
	out.UpdatedAt = out.CreatedAt
	return &out, nil
}

func (r *NutritionRepo) GetByUserAndDateRange(ctx context.Context, userID string, start, end models.Date) ([]models.NutritionEntry, error) {
	rows, err := r.db.QueryContext(ctx, r.db.rebind(`
		SELECT id, user_id, date, name, calories, protein_g, carbs_g, fat_g, created_at, updated_at
		FROM nutrition_entries
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC, created_at ASC
	`), userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("nutrition list: %w", err)
	}
	defer rows.Close()

	var out []models.NutritionEntry
	for rows.Next() {
		var e models.NutritionEntry
		var createdAt, updatedAt string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Date, &e.Name, &e.Calories, &e.ProteinG, &e.CarbsG, &e.FatG, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("nutrition scan: %w", err)
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("nutrition rows: %w", err)
	}
	return out, nil
}
