package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/JonnyWalker81/fittrack/backend/internal/clock"
	"github.com/JonnyWalker81/fittrack/backend/internal/models"
	"github.com/JonnyWalker81/fittrack/backend/internal/repository"
)

type nutritionService struct {
	nutrition repository.NutritionRepository
	clock     clock.Clock
}

// NewNutritionService creates a new nutrition summary service
func NewNutritionService(nutrition repository.NutritionRepository, clk clock.Clock) NutritionService {
	return &nutritionService{nutrition: nutrition, clock: clk}
}

// DailySummary totals one day of entries; a nil date means today
func (s *nutritionService) DailySummary(ctx context.Context, userID string, date *models.Date) (*models.DailyNutritionSummary, error) {
	day := clock.Today(s.clock)
	if date != nil {
		day = *date
	}

	entries, err := s.nutrition.GetByUserAndDateRange(ctx, userID, day, day)
	if err != nil {
		return nil, fmt.Errorf("failed to load nutrition entries: %w", err)
	}

	var agg models.NutritionAggregate
	summary := &models.DailyNutritionSummary{
		Date:    day,
		Entries: make([]models.NutritionEntrySummary, 0, len(entries)),
	}
	for _, e := range entries {
		agg.Add(e)
		summary.Entries = append(summary.Entries, models.NutritionEntrySummary{
			ID:       e.ID,
			Name:     e.Name,
			Calories: e.Calories,
		})
	}

	summary.TotalCalories = agg.TotalCalories
	summary.TotalProteinG = agg.ProteinG
	summary.TotalCarbsG = agg.CarbsG
	summary.TotalFatG = agg.FatG
	summary.EntryCount = agg.Count
	return summary, nil
}

// WeeklyAverages returns per-entry averages for the last weeksBack ISO weeks, oldest first
func (s *nutritionService) WeeklyAverages(ctx context.Context, userID string, weeksBack int) ([]models.WeeklyNutritionAverage, error) {
	if weeksBack < 1 || weeksBack > MaxWeeksBack {
		return nil, validationErr("weeks_back", CodeOutOfRange, "weeks_back must be between 1 and %d", MaxWeeksBack)
	}

	today := clock.Today(s.clock)
	out := make([]models.WeeklyNutritionAverage, 0, weeksBack)
	for k := 0; k < weeksBack; k++ {
		start, end := weekBucket(today, k)
		entries, err := s.nutrition.GetByUserAndDateRange(ctx, userID, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to load nutrition entries: %w", err)
		}

		var agg models.NutritionAggregate
		for _, e := range entries {
			agg.Add(e)
		}
		out = append(out, weeklyAverage(start, agg))
	}

	slices.Reverse(out)
	return out, nil
}

// weeklyAverage divides by entry count (not days), rounded to one decimal
func weeklyAverage(week models.Date, agg models.NutritionAggregate) models.WeeklyNutritionAverage {
	avg := models.WeeklyNutritionAverage{
		Week:         week,
		TotalEntries: agg.Count,
	}
	if agg.Count == 0 {
		return avg
	}

	n := decimal.NewFromInt(int64(agg.Count))
	avg.AvgCalories = decimal.NewFromInt(int64(agg.TotalCalories)).DivRound(n, 1)
	avg.AvgProteinG = agg.ProteinG.DivRound(n, 1)
	avg.AvgCarbsG = agg.CarbsG.DivRound(n, 1)
	avg.AvgFatG = agg.FatG.DivRound(n, 1)
	return avg
}
