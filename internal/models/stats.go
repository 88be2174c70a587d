package models

import "github.com/shopspring/decimal"

// EntityType selects which table the period aggregator rolls up
type EntityType string

const (
	EntityWorkouts      EntityType = "workouts"
	EntityNutrition     EntityType = "nutrition"
	EntityHabitProgress EntityType = "habit_progress"
)

// ParseEntityType converts a query value into an EntityType
func ParseEntityType(s string) (EntityType, bool) {
	switch EntityType(s) {
	case EntityWorkouts, EntityNutrition, EntityHabitProgress:
		return EntityType(s), true
	}
	return "", false
}

// Aggregate is implemented by the per-entity aggregate records
type Aggregate interface {
	Entity() EntityType
}

// WorkoutAggregate sums workouts over a date range. Zero value means "no rows".
type WorkoutAggregate struct {
	TotalDuration       int `json:"total_duration"`
	TotalCaloriesBurned int `json:"total_calories_burned"`
	Count               int `json:"count"`
}

func (WorkoutAggregate) Entity() EntityType { return EntityWorkouts }

// Add folds one workout into the aggregate
func (a *WorkoutAggregate) Add(w Workout) {
	a.TotalDuration += w.DurationMinutes
	a.TotalCaloriesBurned += w.Calories
	a.Count++
}

// NutritionAggregate sums nutrition entries over a date range
type NutritionAggregate struct {
	TotalCalories int             `json:"calories"`
	ProteinG      decimal.Decimal `json:"protein"`
	CarbsG        decimal.Decimal `json:"carbs"`
	FatG          decimal.Decimal `json:"fat"`
	Count         int             `json:"count"`
}

func (NutritionAggregate) Entity() EntityType { return EntityNutrition }

// Add folds one entry into the aggregate
func (a *NutritionAggregate) Add(n NutritionEntry) {
	a.TotalCalories += n.Calories
	a.ProteinG = a.ProteinG.Add(n.ProteinG)
	a.CarbsG = a.CarbsG.Add(n.CarbsG)
	a.FatG = a.FatG.Add(n.FatG)
	a.Count++
}

// HabitAggregate counts habit progress rows over a date range
type HabitAggregate struct {
	CompletedCount int `json:"completed_count"`
	TotalCount     int `json:"total_count"`
}

func (HabitAggregate) Entity() EntityType { return EntityHabitProgress }

// Add folds one progress row into the aggregate
func (a *HabitAggregate) Add(p HabitProgress) {
	if p.Completed {
		a.CompletedCount++
	}
	a.TotalCount++
}

// PeriodProgress groups the three aggregates for one bucket
type PeriodProgress struct {
	Start     Date               `json:"start"`
	End       Date               `json:"end"`
	Workouts  WorkoutAggregate   `json:"workouts"`
	Nutrition NutritionAggregate `json:"nutrition"`
	Habits    HabitAggregate     `json:"habits"`
}

// SeriesBucket is one entry of a weekly or monthly progress series
type SeriesBucket struct {
	Label string `json:"label"`
	PeriodProgress

	HabitsCompleted int `json:"habits_completed"`
	WorkoutsCount   int `json:"workouts_count"`
	CaloriesBurned  int `json:"calories_burned"`
}

// StatsSummary is the payload of GET /stats/summary
type StatsSummary struct {
	TotalWorkouts         int            `json:"total_workouts"`
	TotalHabitsCompleted  int            `json:"total_habits_completed"`
	TotalCaloriesConsumed int64          `json:"total_calories_consumed"`
	TotalCaloriesBurned   int64          `json:"total_calories_burned"`
	CurrentStreak         int            `json:"current_streak"`
	LongestStreak         int            `json:"longest_streak"`
	WeeklyProgress        PeriodProgress `json:"weekly_progress"`
	MonthlyProgress       PeriodProgress `json:"monthly_progress"`
}

// ProgressDay is one entry of a habit's 30-day listing
type ProgressDay struct {
	Date        Date    `json:"date"`
	Completed   bool    `json:"completed"`
	ActualValue float64 `json:"actual_value"`
}

// HabitSummary is the habit header of a progress report
type HabitSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Kind        HabitKind `json:"kind"`
	TargetValue float64   `json:"target_value"`
	ColorHex    string    `json:"color_hex"`
}

// HabitProgressReport is the payload of GET /habits/:id/progress
type HabitProgressReport struct {
	Habit          HabitSummary  `json:"habit"`
	CompletionRate float64       `json:"completion_rate"`
	ProgressData   []ProgressDay `json:"progress_data"`
}

// NutritionEntrySummary is the trimmed entry listed in a daily summary
type NutritionEntrySummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Calories int    `json:"calories"`
}

// DailyNutritionSummary totals one day of nutrition entries
type DailyNutritionSummary struct {
	Date          Date                    `json:"date"`
	TotalCalories int                     `json:"total_calories"`
	TotalProteinG decimal.Decimal         `json:"total_protein_g"`
	TotalCarbsG   decimal.Decimal         `json:"total_carbs_g"`
	TotalFatG     decimal.Decimal         `json:"total_fat_g"`
	EntryCount    int                     `json:"entry_count"`
	Entries       []NutritionEntrySummary `json:"entries"`
}

// WeeklyNutritionAverage is the per-entry average over one week
type WeeklyNutritionAverage struct {
	Week         Date            `json:"week"`
	AvgCalories  decimal.Decimal `json:"avg_calories"`
	AvgProteinG  decimal.Decimal `json:"avg_protein_g"`
	AvgCarbsG    decimal.Decimal `json:"avg_carbs_g"`
	AvgFatG      decimal.Decimal `json:"avg_fat_g"`
	TotalEntries int             `json:"total_entries"`
}

// DashboardStats is the compact stats block shown on the dashboard
type DashboardStats struct {
	TotalWorkouts        int `json:"total_workouts"`
	TotalHabitsCompleted int `json:"total_habits_completed"`
	CurrentStreak        int `json:"current_streak"`
}

// Dashboard is the payload of GET /stats/dashboard
type Dashboard struct {
	Stats          DashboardStats        `json:"stats"`
	WeeklyProgress []SeriesBucket        `json:"weekly_progress"`
	TodayNutrition DailyNutritionSummary `json:"today_nutrition"`
}

// DailyStats is the pair of pre-aggregate rows rebuilt for one (user, date)
type DailyStats struct {
	Workout   WorkoutStats   `json:"workout_stats"`
	Nutrition NutritionStats `json:"nutrition_stats"`
}
