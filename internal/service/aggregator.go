package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/JonnyWalker81/fittrack/backend/internal/models"
	"github.com/JonnyWalker81/fittrack/backend/internal/repository"
)

// Aggregator sums a user's rows of one entity type over an inclusive date range.
// Empty ranges produce zero-valued aggregates, never an error.
type Aggregator struct {
	workouts  repository.WorkoutRepository
	nutrition repository.NutritionRepository
	progress  repository.HabitProgressRepository
}

// NewAggregator creates a period aggregator
func NewAggregator(workouts repository.WorkoutRepository, nutrition repository.NutritionRepository, progress repository.HabitProgressRepository) *Aggregator {
	return &Aggregator{
		workouts:  workouts,
		nutrition: nutrition,
		progress:  progress,
	}
}

// Aggregate dispatches on entity type
func (a *Aggregator) Aggregate(ctx context.Context, userID string, entity models.EntityType, start, end models.Date) (models.Aggregate, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}

	switch entity {
	case models.EntityWorkouts:
		return a.Workouts(ctx, userID, start, end)
	case models.EntityNutrition:
		return a.Nutrition(ctx, userID, start, end)
	case models.EntityHabitProgress:
		return a.Habits(ctx, userID, start, end)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntityType, entity)
	}
}

func (a *Aggregator) Workouts(ctx context.Context, userID string, start, end models.Date) (models.WorkoutAggregate, error) {
	var agg models.WorkoutAggregate
	rows, err := a.workouts.GetByUserAndDateRange(ctx, userID, start, end)
	if err != nil {
		return agg, fmt.Errorf("failed to load workouts: %w", err)
	}
	for _, w := range rows {
		agg.Add(w)
	}
	return agg, nil
}

func (a *Aggregator) Nutrition(ctx context.Context, userID string, start, end models.Date) (models.NutritionAggregate, error) {
	var agg models.NutritionAggregate
	rows, err := a.nutrition.GetByUserAndDateRange(ctx, userID, start, end)
	if err != nil {
		return agg, fmt.Errorf("failed to load nutrition entries: %w", err)
	}
	for _, n := range rows {
		agg.Add(n)
	}
	return agg, nil
}

func (a *Aggregator) Habits(ctx context.Context, userID string, start, end models.Date) (models.HabitAggregate, error) {
	var agg models.HabitAggregate
	rows, err := a.progress.GetByUserAndDateRange(ctx, userID, start, end)
	if err != nil {
		return agg, fmt.Errorf("failed to load habit progress: %w", err)
	}
	for _, p := range rows {
		agg.Add(p)
	}
	return agg, nil
}

// Period runs all three aggregates for one bucket
func (a *Aggregator) Period(ctx context.Context, userID string, start, end models.Date) (models.PeriodProgress, error) {
	out := models.PeriodProgress{Start: start, End: end}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Workouts, err = a.Workouts(gctx, userID, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		out.Nutrition, err = a.Nutrition(gctx, userID, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		out.Habits, err = a.Habits(gctx, userID, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.PeriodProgress{}, err
	}
	return out, nil
}

func checkRange(start, end models.Date) error {
	if start.IsZero() {
		return validationErr("start_date", CodeInvalidDate, "start_date is required")
	}
	if end.IsZero() {
		return validationErr("end_date", CodeInvalidDate, "end_date is required")
	}
	if end.Before(start) {
		return validationErr("end_date", CodeInvalidRange, "end_date %s is before start_date %s", end, start)
	}
	return nil
}
