package service

import (
	"context"
	"fmt"

	"github.com/JonnyWalker81/fittrack/backend/internal/cache"
	"github.com/JonnyWalker81/fittrack/backend/internal/clock"
	"github.com/JonnyWalker81/fittrack/backend/internal/logger"
	"github.com/JonnyWalker81/fittrack/backend/internal/models"
	"github.com/JonnyWalker81/fittrack/backend/internal/repository"
)

type dailyStatsService struct {
	daily repository.DailyStatsRepository
	agg   *Aggregator
	cache cache.SummaryCache
	clock clock.Clock
}

// NewDailyStatsService creates the service that maintains the daily pre-aggregates.
// summaryCache is the cache GetSummary reads; a nil cache disables invalidation.
func NewDailyStatsService(repos *repository.Repositories, summaryCache cache.SummaryCache, clk clock.Clock) DailyStatsService {
	if summaryCache == nil {
		summaryCache = cache.Nop{}
	}
	return &dailyStatsService{
		daily: repos.DailyStats,
		agg:   NewAggregator(repos.Workouts, repos.Nutrition, repos.Progress),
		cache: summaryCache,
		clock: clk,
	}
}

// Rebuild recomputes the (user, date) WorkoutStats and NutritionStats rows from
// raw rows and upserts them. A nil date means today. Rebuild runs after raw
// workout or nutrition rows change, so it also drops the cached summary.
func (s *dailyStatsService) Rebuild(ctx context.Context, userID string, date *models.Date) (*models.DailyStats, error) {
	day := clock.Today(s.clock)
	if date != nil {
		day = *date
	}

	workouts, err := s.agg.Workouts(ctx, userID, day, day)
	if err != nil {
		return nil, err
	}
	nutrition, err := s.agg.Nutrition(ctx, userID, day, day)
	if err != nil {
		return nil, err
	}

	ws, err := s.daily.UpsertWorkoutStats(ctx, &models.WorkoutStats{
		UserID:              userID,
		Date:                day,
		TotalDuration:       workouts.TotalDuration,
		TotalCaloriesBurned: workouts.TotalCaloriesBurned,
		WorkoutCount:        workouts.Count,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert workout stats: %w", err)
	}

	ns, err := s.daily.UpsertNutritionStats(ctx, &models.NutritionStats{
		UserID:        userID,
		Date:          day,
		TotalCalories: nutrition.TotalCalories,
		TotalProtein:  nutrition.ProteinG,
		TotalCarbs:    nutrition.CarbsG,
		TotalFat:      nutrition.FatG,
		MealCount:     nutrition.Count,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert nutrition stats: %w", err)
	}

	if err := s.cache.Invalidate(ctx, userID); err != nil {
		logger.Ctx(ctx).Warn("failed to invalidate summary cache", logger.Err(err), logger.String("user_id", userID))
	}

	logger.Ctx(ctx).Debug("daily stats rebuilt",
		logger.String("user_id", userID),
		logger.String("date", day.String()),
		logger.Int("workout_count", ws.WorkoutCount),
		logger.Int("meal_count", ns.MealCount),
	)

	return &models.DailyStats{Workout: *ws, Nutrition: *ns}, nil
}
