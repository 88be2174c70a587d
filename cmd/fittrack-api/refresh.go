package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonnyWalker81/fittrack/backend/internal/logger"
	"github.com/JonnyWalker81/fittrack/backend/internal/models"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Recompute a user's stats snapshot",
	Long: `Recompute the running totals and streaks of one user. With --daily the
workout and nutrition pre-aggregates for --date (default today) are rebuilt too.`,
	RunE: runRefresh,
}

var (
	refreshUser  string
	refreshDate  string
	refreshDaily bool
)

func init() {
	refreshCmd.Flags().StringVar(&refreshUser, "user", "", "User id to refresh (required)")
	refreshCmd.Flags().StringVar(&refreshDate, "date", "", "Day to rebuild with --daily, YYYY-MM-DD (default today)")
	refreshCmd.Flags().BoolVar(&refreshDaily, "daily", false, "Also rebuild the daily pre-aggregates")
	_ = refreshCmd.MarkFlagRequired("user")
}

func runRefresh(cmd *cobra.Command, args []string) error {
	var date *models.Date
	if refreshDate != "" {
		d, err := models.ParseDate(refreshDate)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		date = &d
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer a.Close()

	stats, err := a.stats.Refresh(ctx, refreshUser)
	if err != nil {
		return fmt.Errorf("refresh stats: %w", err)
	}
	logger.Info("stats refreshed",
		logger.String("user_id", refreshUser),
		logger.Int("current_streak", stats.CurrentStreak),
		logger.Int("longest_streak", stats.LongestStreak),
		logger.Int("total_workouts", stats.TotalWorkouts),
	)

	if refreshDaily {
		daily, err := a.daily.Rebuild(ctx, refreshUser, date)
		if err != nil {
			return fmt.Errorf("rebuild daily stats: %w", err)
		}
		logger.Info("daily stats rebuilt",
			logger.String("user_id", refreshUser),
			logger.String("date", daily.Workout.Date.String()),
			logger.Int("workouts", daily.Workout.WorkoutCount),
			logger.Int("meals", daily.Nutrition.MealCount),
		)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "user %s: current streak %d, longest %d\n",
		refreshUser, stats.CurrentStreak, stats.LongestStreak)
	return nil
}
