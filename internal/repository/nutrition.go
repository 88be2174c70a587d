package repository

import (
	"context"
	"fmt"

	"github.com/JonnyWalker81/fittrack/backend/internal/models"
	"github.com/JonnyWalker81/fittrack/backend/pkg/supabase"
)

type nutritionRepository struct {
	client *supabase.Client
}

// NewNutritionRepository creates a new nutrition entry repository
func NewNutritionRepository(client *supabase.Client) NutritionRepository {
	return &nutritionRepository{client: client}
}

func (r *nutritionRepository) Create(ctx context.Context, entry *models.NutritionEntry) (*models.NutritionEntry, error) {
	// decimals marshal as JSON strings; PostgREST casts them into numeric
	data := map[string]interface{}{
		"user_id":   entry.UserID,
		"date":      entry.Date.String(),
		"name":      entry.Name,
		"calories":  entry.Calories,
		"protein_g": entry.ProteinG,
		"carbs_g":   entry.CarbsG,
		"fat_g":     entry.FatG,
	}
	if entry.ID != "" {
		data["id"] = entry.ID
	}

	body, err := r.client.Insert(ctx, "nutrition_entries", data)
	if err != nil {
		return nil, fmt.Errorf("failed to create nutrition entry: %w", err)
	}

	return decodeFirst[models.NutritionEntry](body, "no nutrition entry returned")
}

func (r *nutritionRepository) GetByUserAndDateRange(ctx context.Context, userID string, start, end models.Date) ([]models.NutritionEntry, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"and":     dateRange(start, end),
		"order":   "date.asc,created_at.asc",
	}

	body, err := r.client.QueryWithToken(ctx, "nutrition_entries", query, userToken(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get nutrition entries: %w", err)
	}

	return decodeRows[models.NutritionEntry](body)
}
