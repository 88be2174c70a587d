package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonnyWalker81/fittrack/backend/internal/clock"
	"github.com/JonnyWalker81/fittrack/backend/internal/logger"
	"github.com/JonnyWalker81/fittrack/backend/internal/models"
	"github.com/JonnyWalker81/fittrack/backend/internal/repository"
)

const (
	// DefaultCompletionWindow is the days_back used by the progress report
	DefaultCompletionWindow = 30
	MaxCompletionWindow     = 365

	progressListingDays = 30
)

type progressService struct {
	habits   repository.HabitRepository
	progress repository.HabitProgressRepository
	stats    StatsService
	clock    clock.Clock
}

// NewProgressService creates the habit progress tracker. Every mutation is
// followed by a synchronous stats.Refresh for the habit's owner.
func NewProgressService(habits repository.HabitRepository, progress repository.HabitProgressRepository, stats StatsService, clk clock.Clock) ProgressService {
	return &progressService{
		habits:   habits,
		progress: progress,
		stats:    stats,
		clock:    clk,
	}
}

// ownedHabit resolves habitID and checks it belongs to userID. Someone else's
// habit is reported exactly like a missing one.
func (s *progressService) ownedHabit(ctx context.Context, userID, habitID string) (*models.Habit, error) {
	if err := ValidateID(habitID); err != nil {
		return nil, ErrHabitNotFound
	}

	habit, err := s.habits.GetByID(ctx, habitID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrHabitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}
	if habit.UserID != userID {
		return nil, ErrHabitNotFound
	}
	return habit, nil
}

func (s *progressService) MarkCompleted(ctx context.Context, userID, habitID string, date *models.Date, actualValue *float64) (*models.HabitProgress, bool, error) {
	ctx = logger.WithFields(ctx, logger.String("habit_id", habitID))
	if actualValue != nil && *actualValue < 0 {
		return nil, false, validationErr("actual_value", CodeNegative, "actual_value must not be negative")
	}

	habit, err := s.ownedHabit(ctx, userID, habitID)
	if err != nil {
		return nil, false, err
	}

	day := clock.Today(s.clock)
	if date != nil {
		day = *date
	}
	value := habit.TargetValue
	if actualValue != nil {
		value = *actualValue
	}

	progress, created, err := s.progress.Upsert(ctx, &models.HabitProgress{
		HabitID:     habit.ID,
		Date:        day,
		Completed:   true,
		ActualValue: value,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to record progress: %w", err)
	}

	if _, err := s.stats.Refresh(ctx, habit.UserID); err != nil {
		return nil, false, fmt.Errorf("failed to refresh stats: %w", err)
	}

	logger.Ctx(ctx).Debug("habit marked completed",
		logger.String("date", day.String()),
		logger.Float64("actual_value", progress.ActualValue),
		logger.Bool("created", created),
	)

	return progress, created, nil
}

func (s *progressService) MarkIncomplete(ctx context.Context, userID, habitID string, date *models.Date) (*models.HabitProgress, bool, error) {
	ctx = logger.WithFields(ctx, logger.String("habit_id", habitID))
	habit, err := s.ownedHabit(ctx, userID, habitID)
	if err != nil {
		return nil, false, err
	}

	day := clock.Today(s.clock)
	if date != nil {
		day = *date
	}

	// only the flag flips; actual_value is retained
	progress, err := s.progress.SetCompleted(ctx, habit.ID, day, false)
	if errors.Is(err, repository.ErrNotFound) {
		logger.Ctx(ctx).Debug("no progress to mark incomplete", logger.String("date", day.String()))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to update progress: %w", err)
	}

	if _, err := s.stats.Refresh(ctx, habit.UserID); err != nil {
		return nil, false, fmt.Errorf("failed to refresh stats: %w", err)
	}

	logger.Ctx(ctx).Debug("habit marked incomplete", logger.String("date", day.String()))
	return progress, true, nil
}

func (s *progressService) CompletionRate(ctx context.Context, userID, habitID string, daysBack int) (float64, error) {
	if daysBack < 0 || daysBack > MaxCompletionWindow {
		return 0, validationErr("days_back", CodeOutOfRange, "days_back must be between 0 and %d", MaxCompletionWindow)
	}

	habit, err := s.ownedHabit(ctx, userID, habitID)
	if err != nil {
		return 0, err
	}
	return s.completionRate(ctx, habit.ID, clock.Today(s.clock), daysBack)
}

// completionRate is completed/recorded*100 over [today-daysBack, today].
// Days without a row count in neither numerator nor denominator.
func (s *progressService) completionRate(ctx context.Context, habitID string, today models.Date, daysBack int) (float64, error) {
	rows, err := s.progress.GetByHabitAndDateRange(ctx, habitID, today.AddDays(-daysBack), today)
	if err != nil {
		return 0, fmt.Errorf("failed to load progress: %w", err)
	}
	if len(rows) == 0 {
		return 0.0, nil
	}

	completed := 0
	for _, p := range rows {
		if p.Completed {
			completed++
		}
	}
	return float64(completed) / float64(len(rows)) * 100, nil
}

// GetProgressReport returns the completion rate and a zero-filled listing of
// the 30 days starting at today-30. Unlike the rate, missing days appear here
// as completed=false with actual_value=0.
func (s *progressService) GetProgressReport(ctx context.Context, userID, habitID string) (*models.HabitProgressReport, error) {
	habit, err := s.ownedHabit(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	today := clock.Today(s.clock)
	rate, err := s.completionRate(ctx, habit.ID, today, DefaultCompletionWindow)
	if err != nil {
		return nil, err
	}

	start := today.AddDays(-progressListingDays)
	end := start.AddDays(progressListingDays - 1)
	rows, err := s.progress.GetByHabitAndDateRange(ctx, habit.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	byDate := make(map[string]models.HabitProgress, len(rows))
	for _, p := range rows {
		byDate[p.Date.String()] = p
	}

	days := make([]models.ProgressDay, 0, progressListingDays)
	for i := 0; i < progressListingDays; i++ {
		d := start.AddDays(i)
		day := models.ProgressDay{Date: d}
		if p, ok := byDate[d.String()]; ok {
			day.Completed = p.Completed
			day.ActualValue = p.ActualValue
		}
		days = append(days, day)
	}

	return &models.HabitProgressReport{
		Habit: models.HabitSummary{
			ID:          habit.ID,
			Title:       habit.Title,
			Kind:        habit.Kind,
			TargetValue: habit.TargetValue,
			ColorHex:    habit.ColorHex,
		},
		CompletionRate: rate,
		ProgressData:   days,
	}, nil
}
