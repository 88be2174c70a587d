package repository

import (
	"context"
	"errors"

	"github.com/JonnyWalker81/fittrack/backend/internal/models"
)

// ErrNotFound is returned (wrapped) when a single-row lookup finds nothing
var ErrNotFound = errors.New("not found")

// HabitRepository defines the interface for habit data access
type HabitRepository interface {
	Create(ctx context.Context, habit *models.Habit) (*models.Habit, error)
	GetByID(ctx context.Context, id string) (*models.Habit, error)
	GetByUserID(ctx context.Context, userID string) ([]models.Habit, error)
}

// HabitProgressRepository defines the interface for habit progress data access.
// Implementations must enforce uniqueness of (habit_id, date) at the storage layer.
type HabitProgressRepository interface {
	GetByHabitAndDate(ctx context.Context, habitID string, date models.Date) (*models.HabitProgress, error)
	// Upsert writes completed/actual_value for (habit_id, date), creating the row
	// if needed. Notes and created_at of an existing row are left untouched.
	Upsert(ctx context.Context, progress *models.HabitProgress) (*models.HabitProgress, bool, error)
	// SetCompleted flips only the completed flag. Returns ErrNotFound when no row exists.
	SetCompleted(ctx context.Context, habitID string, date models.Date, completed bool) (*models.HabitProgress, error)
	GetByHabitAndDateRange(ctx context.Context, habitID string, start, end models.Date) ([]models.HabitProgress, error)
	GetByUserAndDateRange(ctx context.Context, userID string, start, end models.Date) ([]models.HabitProgress, error)
	CompletedDates(ctx context.Context, userID string, start, end models.Date) ([]models.Date, error)
	CountCompletedByUser(ctx context.Context, userID string) (int, error)
	LastCompletedDate(ctx context.Context, userID string) (*models.Date, error)
}

// WorkoutRepository defines the interface for workout data access
type WorkoutRepository interface {
	Create(ctx context.Context, workout *models.Workout) (*models.Workout, error)
	GetByUserAndDateRange(ctx context.Context, userID string, start, end models.Date) ([]models.Workout, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	LastWorkoutDate(ctx context.Context, userID string) (*models.Date, error)
}

// NutritionRepository defines the interface for nutrition entry data access
type NutritionRepository interface {
	Create(ctx context.Context, entry *models.NutritionEntry) (*models.NutritionEntry, error)
	GetByUserAndDateRange(ctx context.Context, userID string, start, end models.Date) ([]models.NutritionEntry, error)
}

// UserStatsRepository defines the interface for the per-user stats snapshot
type UserStatsRepository interface {
	// GetOrCreate returns the snapshot, inserting a zero-valued row on first access
	GetOrCreate(ctx context.Context, userID string) (*models.UserStats, error)
	// SaveRollup persists the recomputed columns only (totals of workouts and
	// completed habits, streaks, last activity). Calorie totals are not written.
	// longest_streak is only ever raised: a lower value leaves the stored one.
	SaveRollup(ctx context.Context, stats *models.UserStats) (*models.UserStats, error)
}

// DailyStatsRepository defines the interface for the daily pre-aggregate rows
type DailyStatsRepository interface {
	UpsertWorkoutStats(ctx context.Context, stats *models.WorkoutStats) (*models.WorkoutStats, error)
	UpsertNutritionStats(ctx context.Context, stats *models.NutritionStats) (*models.NutritionStats, error)
	GetWorkoutStats(ctx context.Context, userID string, start, end models.Date) ([]models.WorkoutStats, error)
	GetNutritionStats(ctx context.Context, userID string, start, end models.Date) ([]models.NutritionStats, error)
}

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// Get retrieves an existing idempotency record if it exists
	Get(ctx context.Context, key, route, userID string) (*models.IdempotencyKey, error)

	// Store saves a new idempotency record
	Store(ctx context.Context, key, route, userID string, responseBody []byte, statusCode int) error
}

// Repositories bundles every repository a storage backend provides
type Repositories struct {
	Habits      HabitRepository
	Progress    HabitProgressRepository
	Workouts    WorkoutRepository
	Nutrition   NutritionRepository
	UserStats   UserStatsRepository
	DailyStats  DailyStatsRepository
	Idempotency IdempotencyRepository
}
