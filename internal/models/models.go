package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// macros go over the wire as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// HabitKind is the cadence/measurement tag of a habit
type HabitKind string

const (
	HabitKindDaily   HabitKind = "daily"
	HabitKindWeekly  HabitKind = "weekly"
	HabitKindMonthly HabitKind = "monthly"
	HabitKindCounter HabitKind = "counter"
	HabitKindTimer   HabitKind = "timer"
)

// IsValid reports whether k is one of the known habit kinds
func (k HabitKind) IsValid() bool {
	switch k {
	case HabitKindDaily, HabitKindWeekly, HabitKindMonthly, HabitKindCounter, HabitKindTimer:
		return true
	}
	return false
}

// Habit represents a user-defined recurring goal
type Habit struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Kind        HabitKind `json:"kind"`
	TargetValue float64   `json:"target_value"`
	ColorHex    string    `json:"color_hex"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HabitProgress is one day's completion record for one habit.
// At most one row exists per (habit_id, date).
type HabitProgress struct {
	ID          string    `json:"id"`
	HabitID     string    `json:"habit_id"`
	Date        Date      `json:"date"`
	Completed   bool      `json:"completed"`
	ActualValue float64   `json:"actual_value"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}

// Workout represents a logged training session
type Workout struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	Date            Date       `json:"date"`
	Name            string     `json:"name"`
	WorkoutType     string     `json:"workout_type"`
	DurationMinutes int        `json:"duration_minutes"`
	Calories        int        `json:"calories"`
	Notes           string     `json:"notes"`
	Exercises       []Exercise `json:"exercises,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Exercise is a sub-record of a workout
type Exercise struct {
	ID              string           `json:"id"`
	WorkoutID       string           `json:"workout_id"`
	Name            string           `json:"name"`
	Sets            int              `json:"sets"`
	Reps            *int             `json:"reps,omitempty"`
	WeightKg        *decimal.Decimal `json:"weight_kg,omitempty"`
	DurationSeconds *int             `json:"duration_seconds,omitempty"`
	RestSeconds     *int             `json:"rest_seconds,omitempty"`
	Notes           string           `json:"notes"`
}

// NutritionEntry is one logged food item. Macros are fixed-point grams.
type NutritionEntry struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Date      Date            `json:"date"`
	Name      string          `json:"name"`
	Calories  int             `json:"calories"`
	ProteinG  decimal.Decimal `json:"protein_g"`
	CarbsG    decimal.Decimal `json:"carbs_g"`
	FatG      decimal.Decimal `json:"fat_g"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// UserStats is the per-user running snapshot maintained by the stats rollup
type UserStats struct {
	ID                    string    `json:"id"`
	UserID                string    `json:"user_id"`
	TotalWorkouts         int       `json:"total_workouts"`
	TotalHabitsCompleted  int       `json:"total_habits_completed"`
	TotalCaloriesConsumed int64     `json:"total_calories_consumed"`
	TotalCaloriesBurned   int64     `json:"total_calories_burned"`
	CurrentStreak         int       `json:"current_streak"`
	LongestStreak         int       `json:"longest_streak"`
	LastActivityDate      *Date     `json:"last_activity_date"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// WorkoutStats is a daily workout pre-aggregate, unique per (user_id, date)
type WorkoutStats struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id"`
	Date                Date      `json:"date"`
	TotalDuration       int       `json:"total_duration"`
	TotalCaloriesBurned int       `json:"total_calories_burned"`
	WorkoutCount        int       `json:"workout_count"`
	CreatedAt           time.Time `json:"created_at"`
}

// NutritionStats is a daily nutrition pre-aggregate, unique per (user_id, date)
type NutritionStats struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Date          Date            `json:"date"`
	TotalCalories int             `json:"total_calories"`
	TotalProtein  decimal.Decimal `json:"total_protein"`
	TotalCarbs    decimal.Decimal `json:"total_carbs"`
	TotalFat      decimal.Decimal `json:"total_fat"`
	MealCount     int             `json:"meal_count"`
	CreatedAt     time.Time       `json:"created_at"`
}
