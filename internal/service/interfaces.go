package service

import (
	"context"

	"github.com/JonnyWalker81/fittrack/backend/internal/models"
)

// ProgressService defines the interface for habit progress tracking
type ProgressService interface {
	// MarkCompleted upserts the (habit, date) row with completed=true. A nil date
	// means today; a nil value means the habit's target. The bool reports whether
	// the row was created.
	MarkCompleted(ctx context.Context, userID, habitID string, date *models.Date, actualValue *float64) (*models.HabitProgress, bool, error)
	// MarkIncomplete flips completed to false. (nil, false, nil) means there was no
	// row to update, which is not an error.
	MarkIncomplete(ctx context.Context, userID, habitID string, date *models.Date) (*models.HabitProgress, bool, error)
	CompletionRate(ctx context.Context, userID, habitID string, daysBack int) (float64, error)
	GetProgressReport(ctx context.Context, userID, habitID string) (*models.HabitProgressReport, error)
}

// StatsService defines the interface for the stats rollup
type StatsService interface {
	GetOrCreateUserStats(ctx context.Context, userID string) (*models.UserStats, error)
	Refresh(ctx context.Context, userID string) (*models.UserStats, error)
	Aggregate(ctx context.Context, userID string, entity models.EntityType, start, end models.Date) (models.Aggregate, error)
	WeeklySummary(ctx context.Context, userID string) (models.PeriodProgress, error)
	MonthlySummary(ctx context.Context, userID string) (models.PeriodProgress, error)
	GetSummary(ctx context.Context, userID string) (*models.StatsSummary, error)
	WeeklySeries(ctx context.Context, userID string, weeksBack int) ([]models.SeriesBucket, error)
	MonthlySeries(ctx context.Context, userID string, monthsBack int) ([]models.SeriesBucket, error)
	GetDashboard(ctx context.Context, userID string) (*models.Dashboard, error)
}

// NutritionService defines the interface for nutrition summaries
type NutritionService interface {
	DailySummary(ctx context.Context, userID string, date *models.Date) (*models.DailyNutritionSummary, error)
	WeeklyAverages(ctx context.Context, userID string, weeksBack int) ([]models.WeeklyNutritionAverage, error)
}

// DailyStatsService defines the interface for the daily pre-aggregate rows
type DailyStatsService interface {
	Rebuild(ctx context.Context, userID string, date *models.Date) (*models.DailyStats, error)
}
