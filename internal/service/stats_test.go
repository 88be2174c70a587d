package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/JonnyWalker81/fittrack/backend/internal/clock"
	"github.com/JonnyWalker81/fittrack/backend/internal/models"
)

func newTestStatsService(today string) (*memDB, *clock.FixedClock, *spyCache, StatsService) {
	db := newMemDB()
	db.addHabit(models.Habit{ID: habitRunID, UserID: testUserID, TargetValue: 1})
	clk := clock.FixedDate(models.MustParseDate(today))
	c := newSpyCache()
	return db, clk, c, NewStatsService(db.repos(), c, clk)
}

func TestRefreshRecomputesFromSource(t *testing.T) {
	db, _, _, svc := newTestStatsService("2024-06-10")
	db.addWorkout(testUserID, "2024-06-01", 30, 200)
	db.addWorkout(testUserID, "2024-06-08", 40, 300)
	db.addWorkout(otherUserID, "2024-06-11", 40, 300)
	db.addProgress(habitRunID, "2024-06-09", true, 1)
	db.addProgress(habitRunID, "2024-06-10", true, 1)
	db.addProgress(habitRunID, "2024-06-05", false, 0)

	stats, err := svc.Refresh(context.Background(), testUserID)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if stats.TotalWorkouts != 2 {
		t.Errorf("total_workouts = %d, want 2", stats.TotalWorkouts)
	}
	if stats.TotalHabitsCompleted != 2 {
		t.Errorf("total_habits_completed = %d, want 2", stats.TotalHabitsCompleted)
	}
	if stats.CurrentStreak != 2 || stats.LongestStreak != 2 {
		t.Errorf("streaks = %d/%d, want 2/2", stats.CurrentStreak, stats.LongestStreak)
	}
	if stats.LastActivityDate == nil || stats.LastActivityDate.String() != "2024-06-10" {
		t.Errorf("last_activity_date = %v, want 2024-06-10", stats.LastActivityDate)
	}
}

func TestRefreshIsIdempotent(t *testing.T) {
	db, _, _, svc := newTestStatsService("2024-06-10")
	db.addWorkout(testUserID, "2024-06-10", 30, 200)
	db.addProgress(habitRunID, "2024-06-10", true, 1)
	ctx := context.Background()

	first, err := svc.Refresh(ctx, testUserID)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	second, err := svc.Refresh(ctx, testUserID)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if first.TotalWorkouts != second.TotalWorkouts ||
		first.TotalHabitsCompleted != second.TotalHabitsCompleted ||
		first.CurrentStreak != second.CurrentStreak ||
		first.LongestStreak != second.LongestStreak {
		t.Errorf("second refresh = %+v, want same as %+v", second, first)
	}
}

func TestLongestStreakNeverDecreases(t *testing.T) {
	db, clk, _, svc := newTestStatsService("2024-06-05")
	for _, d := range []string{"2024-06-01", "2024-06-02", "2024-06-03", "2024-06-04", "2024-06-05"} {
		db.addProgress(habitRunID, d, true, 1)
	}
	ctx := context.Background()

	stats, err := svc.Refresh(ctx, testUserID)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if stats.CurrentStreak != 5 || stats.LongestStreak != 5 {
		t.Fatalf("streaks = %d/%d, want 5/5", stats.CurrentStreak, stats.LongestStreak)
	}

	// two days later with nothing logged
	clk.Set(models.MustParseDate("2024-06-07").Time())
	stats, err = svc.Refresh(ctx, testUserID)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if stats.CurrentStreak != 0 {
		t.Errorf("current_streak = %d, want 0", stats.CurrentStreak)
	}
	if stats.LongestStreak < 5 {
		t.Errorf("longest_streak = %d, want >= 5", stats.LongestStreak)
	}
}

func TestRefreshLeavesCalorieTotals(t *testing.T) {
	db, _, _, svc := newTestStatsService("2024-06-10")
	ctx := context.Background()

	if _, err := svc.GetOrCreateUserStats(ctx, testUserID); err != nil {
		t.Fatalf("GetOrCreateUserStats() error = %v", err)
	}
	db.mu.Lock()
	db.stats[testUserID].TotalCaloriesConsumed = 12000
	db.stats[testUserID].TotalCaloriesBurned = 3400
	db.mu.Unlock()
	db.addWorkout(testUserID, "2024-06-10", 30, 500)

	stats, err := svc.Refresh(ctx, testUserID)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if stats.TotalCaloriesConsumed != 12000 || stats.TotalCaloriesBurned != 3400 {
		t.Errorf("calorie totals = %d/%d, want 12000/3400", stats.TotalCaloriesConsumed, stats.TotalCaloriesBurned)
	}
}

func TestRefreshPropagatesSaveError(t *testing.T) {
	db, _, c, svc := newTestStatsService("2024-06-10")
	db.saveRollupErr = errors.New("disk full")

	if _, err := svc.Refresh(context.Background(), testUserID); err == nil {
		t.Fatal("Refresh() error = nil, want save failure")
	}
	if len(c.invalidated) != 0 {
		t.Errorf("invalidated = %v, want none after a failed save", c.invalidated)
	}
}

func TestGetSummaryUsesCache(t *testing.T) {
	db, _, c, svc := newTestStatsService("2024-06-05")
	db.addWorkout(testUserID, "2024-06-04", 30, 250)
	ctx := context.Background()

	first, err := svc.GetSummary(ctx, testUserID)
	if err != nil {
		t.Fatalf("GetSummary() error = %v", err)
	}
	if first.WeeklyProgress.Workouts.Count != 1 || first.MonthlyProgress.Workouts.TotalCaloriesBurned != 250 {
		t.Errorf("summary = %+v", first)
	}
	if first.WeeklyProgress.Start.String() != "2024-06-03" || first.MonthlyProgress.End.String() != "2024-06-30" {
		t.Errorf("bounds = week from %s, month to %s", first.WeeklyProgress.Start, first.MonthlyProgress.End)
	}

	// a raw write without refresh is not visible until the cache is invalidated
	db.addWorkout(testUserID, "2024-06-05", 30, 250)
	second, err := svc.GetSummary(ctx, testUserID)
	if err != nil {
		t.Fatalf("GetSummary() error = %v", err)
	}
	if second.WeeklyProgress.Workouts.Count != 1 {
		t.Errorf("cached weekly count = %d, want 1", second.WeeklyProgress.Workouts.Count)
	}
	if c.sets != 1 {
		t.Errorf("cache sets = %d, want 1", c.sets)
	}

	if _, err := svc.Refresh(ctx, testUserID); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	third, err := svc.GetSummary(ctx, testUserID)
	if err != nil {
		t.Fatalf("GetSummary() error = %v", err)
	}
	if third.WeeklyProgress.Workouts.Count != 2 || third.TotalWorkouts != 2 {
		t.Errorf("after refresh = %d weekly / %d total, want 2 / 2", third.WeeklyProgress.Workouts.Count, third.TotalWorkouts)
	}
}

func TestGetSummaryCacheErrorFallsThrough(t *testing.T) {
	db, _, c, svc := newTestStatsService("2024-06-05")
	c.getErr = errors.New("redis: connection refused")
	db.addWorkout(testUserID, "2024-06-04", 30, 250)

	summary, err := svc.GetSummary(context.Background(), testUserID)
	if err != nil {
		t.Fatalf("GetSummary() error = %v", err)
	}
	if summary.WeeklyProgress.Workouts.Count != 1 {
		t.Errorf("weekly count = %d, want 1", summary.WeeklyProgress.Workouts.Count)
	}
}

func TestMonthlySummaryBounds(t *testing.T) {
	tests := []struct {
		today   string
		wantEnd string
	}{
		{"2024-02-14", "2024-02-29"},
		{"2023-02-14", "2023-02-28"},
		{"2024-04-02", "2024-04-30"},
	}

	for _, tt := range tests {
		t.Run(tt.today, func(t *testing.T) {
			_, _, _, svc := newTestStatsService(tt.today)
			got, err := svc.MonthlySummary(context.Background(), testUserID)
			if err != nil {
				t.Fatalf("MonthlySummary() error = %v", err)
			}
			if got.End.String() != tt.wantEnd {
				t.Errorf("end = %s, want %s", got.End, tt.wantEnd)
			}
			if got.Start.Day() != 1 {
				t.Errorf("start = %s, want first of month", got.Start)
			}
		})
	}
}

func TestWeeklySeriesOrdering(t *testing.T) {
	db, _, _, svc := newTestStatsService("2024-06-05")
	db.addWorkout(testUserID, "2024-05-14", 30, 100) // three weeks back
	db.addWorkout(testUserID, "2024-06-04", 30, 200) // current week
	db.addProgress(habitRunID, "2024-06-03", true, 1)

	series, err := svc.WeeklySeries(context.Background(), testUserID, 4)
	if err != nil {
		t.Fatalf("WeeklySeries() error = %v", err)
	}
	if len(series) != 4 {
		t.Fatalf("len(series) = %d, want 4", len(series))
	}

	wantLabels := []string{"2024-05-13", "2024-05-20", "2024-05-27", "2024-06-03"}
	for i, b := range series {
		if b.Label != wantLabels[i] {
			t.Errorf("series[%d].Label = %q, want %q", i, b.Label, wantLabels[i])
		}
		if i > 0 && !series[i-1].Start.Before(b.Start) {
			t.Errorf("series not ascending at %d: %s then %s", i, series[i-1].Start, b.Start)
		}
	}

	if series[0].CaloriesBurned != 100 || series[3].CaloriesBurned != 200 {
		t.Errorf("calories = %d..%d, want 100..200", series[0].CaloriesBurned, series[3].CaloriesBurned)
	}
	if series[3].HabitsCompleted != 1 || series[3].WorkoutsCount != 1 {
		t.Errorf("current week = %+v", series[3])
	}
}

func TestMonthlySeries(t *testing.T) {
	db, _, _, svc := newTestStatsService("2024-02-10")
	db.addWorkout(testUserID, "2023-12-31", 30, 100)

	series, err := svc.MonthlySeries(context.Background(), testUserID, 3)
	if err != nil {
		t.Fatalf("MonthlySeries() error = %v", err)
	}

	wantLabels := []string{"2023-12", "2024-01", "2024-02"}
	if len(series) != len(wantLabels) {
		t.Fatalf("len(series) = %d, want %d", len(series), len(wantLabels))
	}
	for i, b := range series {
		if b.Label != wantLabels[i] {
			t.Errorf("series[%d].Label = %q, want %q", i, b.Label, wantLabels[i])
		}
	}
	if series[0].WorkoutsCount != 1 {
		t.Errorf("December workouts = %d, want 1", series[0].WorkoutsCount)
	}
	if series[2].End.String() != "2024-02-29" {
		t.Errorf("February end = %s, want 2024-02-29", series[2].End)
	}
}

func TestSeriesRejectsOutOfRange(t *testing.T) {
	_, _, _, svc := newTestStatsService("2024-06-05")
	ctx := context.Background()

	for _, n := range []int{0, MaxWeeksBack + 1} {
		if _, err := svc.WeeklySeries(ctx, testUserID, n); !IsValidationError(err) {
			t.Errorf("WeeklySeries(%d) error = %v, want validation error", n, err)
		}
	}
	for _, n := range []int{0, MaxMonthsBack + 1} {
		if _, err := svc.MonthlySeries(ctx, testUserID, n); !IsValidationError(err) {
			t.Errorf("MonthlySeries(%d) error = %v, want validation error", n, err)
		}
	}
}

func TestGetDashboard(t *testing.T) {
	db, _, _, svc := newTestStatsService("2024-06-05")
	db.addProgress(habitRunID, "2024-06-05", true, 1)
	db.addNutrition(models.NutritionEntry{
		UserID: testUserID, Date: models.MustParseDate("2024-06-05"), Name: "Oats",
		Calories: 350, ProteinG: decimal.RequireFromString("12.5"),
	})
	db.addNutrition(models.NutritionEntry{
		UserID: testUserID, Date: models.MustParseDate("2024-06-04"), Name: "Pasta", Calories: 800,
	})
	ctx := context.Background()

	if _, err := svc.Refresh(ctx, testUserID); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	dash, err := svc.GetDashboard(ctx, testUserID)
	if err != nil {
		t.Fatalf("GetDashboard() error = %v", err)
	}

	if dash.Stats.TotalHabitsCompleted != 1 || dash.Stats.CurrentStreak != 1 {
		t.Errorf("stats = %+v", dash.Stats)
	}
	if len(dash.WeeklyProgress) != DefaultWeeksBack {
		t.Errorf("weekly buckets = %d, want %d", len(dash.WeeklyProgress), DefaultWeeksBack)
	}
	if dash.TodayNutrition.TotalCalories != 350 || dash.TodayNutrition.EntryCount != 1 {
		t.Errorf("today nutrition = %+v", dash.TodayNutrition)
	}
	if len(dash.TodayNutrition.Entries) != 1 || dash.TodayNutrition.Entries[0].Name != "Oats" {
		t.Errorf("entries = %+v", dash.TodayNutrition.Entries)
	}
}

func TestLatest(t *testing.T) {
	a := datePtr("2024-06-01")
	b := datePtr("2024-06-03")

	if got := latest(nil, nil); got != nil {
		t.Errorf("latest(nil, nil) = %v, want nil", got)
	}
	if got := latest(a, nil); got != a {
		t.Errorf("latest(a, nil) = %v, want a", got)
	}
	if got := latest(nil, b); got != b {
		t.Errorf("latest(nil, b) = %v, want b", got)
	}
	if got := latest(a, b); got != b {
		t.Errorf("latest(a, b) = %v, want b", got)
	}
	if got := latest(b, a); got != b {
		t.Errorf("latest(b, a) = %v, want b", got)
	}
}
