package service

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/JonnyWalker81/fittrack/backend/internal/cache"
	"github.com/JonnyWalker81/fittrack/backend/internal/clock"
	"github.com/JonnyWalker81/fittrack/backend/internal/logger"
	"github.com/JonnyWalker81/fittrack/backend/internal/models"
	"github.com/JonnyWalker81/fittrack/backend/internal/repository"
)

const (
	DefaultWeeksBack  = 4
	DefaultMonthsBack = 6
	MaxWeeksBack      = 104
	MaxMonthsBack     = 36
)

type statsService struct {
	stats     repository.UserStatsRepository
	workouts  repository.WorkoutRepository
	progress  repository.HabitProgressRepository
	agg       *Aggregator
	streaks   *StreakCalculator
	nutrition NutritionService
	cache     cache.SummaryCache
	clock     clock.Clock
}

// NewStatsService creates a new stats rollup service. A nil cache disables caching.
func NewStatsService(repos *repository.Repositories, summaryCache cache.SummaryCache, clk clock.Clock) StatsService {
	if summaryCache == nil {
		summaryCache = cache.Nop{}
	}
	return &statsService{
		stats:     repos.UserStats,
		workouts:  repos.Workouts,
		progress:  repos.Progress,
		agg:       NewAggregator(repos.Workouts, repos.Nutrition, repos.Progress),
		streaks:   NewStreakCalculator(repos.Progress),
		nutrition: NewNutritionService(repos.Nutrition, clk),
		cache:     summaryCache,
		clock:     clk,
	}
}

func (s *statsService) GetOrCreateUserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	stats, err := s.stats.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	return stats, nil
}

// Refresh recomputes the snapshot from source rows. It is idempotent for the
// same data, so concurrent refreshes converge on the next call. SaveRollup
// stores longest_streak as a running maximum, so a stale snapshot cannot lower it.
func (s *statsService) Refresh(ctx context.Context, userID string) (*models.UserStats, error) {
	today := clock.Today(s.clock)

	stats, err := s.GetOrCreateUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	var (
		totalWorkouts  int
		totalCompleted int
		current        int
		lastWorkout    *models.Date
		lastHabit      *models.Date
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if totalWorkouts, err = s.workouts.CountByUser(gctx, userID); err != nil {
			return fmt.Errorf("failed to count workouts: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if totalCompleted, err = s.progress.CountCompletedByUser(gctx, userID); err != nil {
			return fmt.Errorf("failed to count completed habits: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		current, err = s.streaks.Current(gctx, userID, today, DefaultStreakLookback)
		return err
	})
	g.Go(func() (err error) {
		if lastWorkout, err = s.workouts.LastWorkoutDate(gctx, userID); err != nil {
			return fmt.Errorf("failed to get last workout date: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if lastHabit, err = s.progress.LastCompletedDate(gctx, userID); err != nil {
			return fmt.Errorf("failed to get last completed date: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.TotalWorkouts = totalWorkouts
	stats.TotalHabitsCompleted = totalCompleted
	stats.CurrentStreak = current
	stats.LongestStreak = max(stats.LongestStreak, current)
	stats.LastActivityDate = latest(lastWorkout, lastHabit)

	saved, err := s.stats.SaveRollup(ctx, stats)
	if err != nil {
		logger.Ctx(ctx).Error("failed to persist user stats", logger.Err(err), logger.String("user_id", userID))
		return nil, fmt.Errorf("failed to save user stats: %w", err)
	}

	if err := s.cache.Invalidate(ctx, userID); err != nil {
		logger.Ctx(ctx).Warn("failed to invalidate summary cache", logger.Err(err), logger.String("user_id", userID))
	}

	logger.Ctx(ctx).Debug("stats refreshed",
		logger.String("user_id", userID),
		logger.Int("total_workouts", saved.TotalWorkouts),
		logger.Int("total_habits_completed", saved.TotalHabitsCompleted),
		logger.Int("current_streak", saved.CurrentStreak),
		logger.Int("longest_streak", saved.LongestStreak),
	)

	return saved, nil
}

func (s *statsService) Aggregate(ctx context.Context, userID string, entity models.EntityType, start, end models.Date) (models.Aggregate, error) {
	return s.agg.Aggregate(ctx, userID, entity, start, end)
}

func (s *statsService) WeeklySummary(ctx context.Context, userID string) (models.PeriodProgress, error) {
	start, end := WeekBounds(clock.Today(s.clock))
	return s.agg.Period(ctx, userID, start, end)
}

func (s *statsService) MonthlySummary(ctx context.Context, userID string) (models.PeriodProgress, error) {
	start, end := MonthBounds(clock.Today(s.clock))
	return s.agg.Period(ctx, userID, start, end)
}

// GetSummary returns the snapshot totals plus the current week and month.
// Reading never triggers a recompute of the snapshot.
func (s *statsService) GetSummary(ctx context.Context, userID string) (*models.StatsSummary, error) {
	today := clock.Today(s.clock)

	if cached, ok, err := s.cache.GetSummary(ctx, userID, today); err != nil {
		logger.Ctx(ctx).Warn("summary cache unavailable", logger.Err(err))
	} else if ok {
		return cached, nil
	}

	var (
		stats   *models.UserStats
		weekly  models.PeriodProgress
		monthly models.PeriodProgress
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats, err = s.GetOrCreateUserStats(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		weekly, err = s.WeeklySummary(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		monthly, err = s.MonthlySummary(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &models.StatsSummary{
		TotalWorkouts:         stats.TotalWorkouts,
		TotalHabitsCompleted:  stats.TotalHabitsCompleted,
		TotalCaloriesConsumed: stats.TotalCaloriesConsumed,
		TotalCaloriesBurned:   stats.TotalCaloriesBurned,
		CurrentStreak:         stats.CurrentStreak,
		LongestStreak:         stats.LongestStreak,
		WeeklyProgress:        weekly,
		MonthlyProgress:       monthly,
	}

	if err := s.cache.SetSummary(ctx, userID, today, summary); err != nil {
		logger.Ctx(ctx).Warn("failed to cache summary", logger.Err(err))
	}

	return summary, nil
}

// WeeklySeries returns weeksBack ISO-week buckets, oldest first, ending with the current week
func (s *statsService) WeeklySeries(ctx context.Context, userID string, weeksBack int) ([]models.SeriesBucket, error) {
	if weeksBack < 1 || weeksBack > MaxWeeksBack {
		return nil, validationErr("weeks_back", CodeOutOfRange, "weeks_back must be between 1 and %d", MaxWeeksBack)
	}
	today := clock.Today(s.clock)
	return s.series(ctx, userID, weeksBack, func(k int) (models.Date, models.Date) {
		return weekBucket(today, k)
	}, weekLabel)
}

// MonthlySeries returns monthsBack calendar-month buckets, oldest first, ending with the current month
func (s *statsService) MonthlySeries(ctx context.Context, userID string, monthsBack int) ([]models.SeriesBucket, error) {
	if monthsBack < 1 || monthsBack > MaxMonthsBack {
		return nil, validationErr("months_back", CodeOutOfRange, "months_back must be between 1 and %d", MaxMonthsBack)
	}
	today := clock.Today(s.clock)
	return s.series(ctx, userID, monthsBack, func(k int) (models.Date, models.Date) {
		return monthBucket(today, k)
	}, monthLabel)
}

// series walks buckets newest-first (k periods back from today) and returns them reversed
func (s *statsService) series(ctx context.Context, userID string, n int, bounds func(k int) (models.Date, models.Date), label func(models.Date) string) ([]models.SeriesBucket, error) {
	buckets := make([]models.SeriesBucket, 0, n)
	for k := 0; k < n; k++ {
		start, end := bounds(k)
		period, err := s.agg.Period(ctx, userID, start, end)
		if err != nil {
			return nil, err
		}
		buckets = append(buckets, models.SeriesBucket{
			Label:           label(start),
			PeriodProgress:  period,
			HabitsCompleted: period.Habits.CompletedCount,
			WorkoutsCount:   period.Workouts.Count,
			CaloriesBurned:  period.Workouts.TotalCaloriesBurned,
		})
	}
	slices.Reverse(buckets)
	return buckets, nil
}

func (s *statsService) GetDashboard(ctx context.Context, userID string) (*models.Dashboard, error) {
	var (
		stats     *models.UserStats
		weekly    []models.SeriesBucket
		nutrition *models.DailyNutritionSummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats, err = s.GetOrCreateUserStats(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		weekly, err = s.WeeklySeries(gctx, userID, DefaultWeeksBack)
		return err
	})
	g.Go(func() (err error) {
		nutrition, err = s.nutrition.DailySummary(gctx, userID, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.Dashboard{
		Stats: models.DashboardStats{
			TotalWorkouts:        stats.TotalWorkouts,
			TotalHabitsCompleted: stats.TotalHabitsCompleted,
			CurrentStreak:        stats.CurrentStreak,
		},
		WeeklyProgress: weekly,
		TodayNutrition: *nutrition,
	}, nil
}

func latest(a, b *models.Date) *models.Date {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.After(*a):
		return b
	default:
		return a
	}
}
