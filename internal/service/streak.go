package service

import (
	"context"
	"fmt"

	"github.com/JonnyWalker81/fittrack/backend/internal/models"
	"github.com/JonnyWalker81/fittrack/backend/internal/repository"
)

// DefaultStreakLookback caps the current streak; a longer run reports 30.
const DefaultStreakLookback = 30

// CurrentStreak counts consecutive hit days walking back from today.
// The run must include today: a miss today means 0 even if yesterday was hit.
func CurrentStreak(today models.Date, completed []models.Date, maxLookback int) int {
	hit := make(map[string]struct{}, len(completed))
	for _, d := range completed {
		hit[d.String()] = struct{}{}
	}

	streak := 0
	for i := 0; i < maxLookback; i++ {
		if _, ok := hit[today.AddDays(-i).String()]; !ok {
			break
		}
		streak++
	}
	return streak
}

// StreakCalculator computes a user's current streak across all their habits
type StreakCalculator struct {
	progress repository.HabitProgressRepository
}

// NewStreakCalculator creates a streak calculator
func NewStreakCalculator(progress repository.HabitProgressRepository) *StreakCalculator {
	return &StreakCalculator{progress: progress}
}

// Current returns the number of consecutive days ending at today on which any
// of the user's habits was completed, looking back at most maxLookback days.
func (c *StreakCalculator) Current(ctx context.Context, userID string, today models.Date, maxLookback int) (int, error) {
	if maxLookback <= 0 {
		return 0, nil
	}

	// one range read instead of one existence check per day
	dates, err := c.progress.CompletedDates(ctx, userID, today.AddDays(-(maxLookback - 1)), today)
	if err != nil {
		return 0, fmt.Errorf("failed to load completed dates: %w", err)
	}

	return CurrentStreak(today, dates, maxLookback), nil
}
