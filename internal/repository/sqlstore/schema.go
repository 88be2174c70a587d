package sqlstore

import (
	"context"
	"fmt"
	"strings"
)

var columnTypes = map[Dialect]*strings.Replacer{
	SQLite: strings.NewReplacer(
		"{{date}}", "TEXT",
		"{{timestamp}}", "TEXT",
		"{{decimal}}", "TEXT",
		"{{bool}}", "INTEGER",
		"{{false}}", "0",
		"{{float}}", "REAL",
		"{{greatest}}", "MAX",
	),
	Postgres: strings.NewReplacer(
		"{{date}}", "DATE",
		"{{timestamp}}", "TIMESTAMPTZ",
		"{{decimal}}", "NUMERIC(10,2)",
		"{{bool}}", "BOOLEAN",
		"{{false}}", "FALSE",
		"{{float}}", "DOUBLE PRECISION",
		"{{greatest}}", "GREATEST",
	),
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS habits (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT 'daily',
		target_value {{float}} NOT NULL DEFAULT 1,
		color_hex TEXT NOT NULL DEFAULT '',
		created_at {{timestamp}} NOT NULL,
		updated_at {{timestamp}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS habit_progress (
		id TEXT PRIMARY KEY,
		habit_id TEXT NOT NULL REFERENCES habits(id) ON DELETE CASCADE,
		date {{date}} NOT NULL,
		completed {{bool}} NOT NULL DEFAULT {{false}},
		actual_value {{float}} NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		created_at {{timestamp}} NOT NULL,
		UNIQUE (habit_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS workouts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		date {{date}} NOT NULL,
		name TEXT NOT NULL,
		workout_type TEXT NOT NULL DEFAULT '',
		duration_minutes INTEGER NOT NULL DEFAULT 0 CHECK (duration_minutes >= 0),
		calories INTEGER NOT NULL DEFAULT 0 CHECK (calories >= 0),
		notes TEXT NOT NULL DEFAULT '',
		created_at {{timestamp}} NOT NULL,
		updated_at {{timestamp}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS nutrition_entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		date {{date}} NOT NULL,
		name TEXT NOT NULL,
		calories INTEGER NOT NULL DEFAULT 0 CHECK (calories >= 0),
		protein_g {{decimal}} NOT NULL DEFAULT '0',
		carbs_g {{decimal}} NOT NULL DEFAULT '0',
		fat_g {{decimal}} NOT NULL DEFAULT '0',
		created_at {{timestamp}} NOT NULL,
		updated_at {{timestamp}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_stats (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		total_workouts INTEGER NOT NULL DEFAULT 0,
		total_habits_completed INTEGER NOT NULL DEFAULT 0,
		total_calories_consumed BIGINT NOT NULL DEFAULT 0,
		total_calories_burned BIGINT NOT NULL DEFAULT 0,
		current_streak INTEGER NOT NULL DEFAULT 0,
		longest_streak INTEGER NOT NULL DEFAULT 0,
		last_activity_date {{date}},
		created_at {{timestamp}} NOT NULL,
		updated_at {{timestamp}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS workout_stats (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		date {{date}} NOT NULL,
		total_duration INTEGER NOT NULL DEFAULT 0,
		total_calories_burned INTEGER NOT NULL DEFAULT 0,
		workout_count INTEGER NOT NULL DEFAULT 0,
		created_at {{timestamp}} NOT NULL,
		UNIQUE (user_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS nutrition_stats (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		date {{date}} NOT NULL,
		total_calories INTEGER NOT NULL DEFAULT 0,
		total_protein {{decimal}} NOT NULL DEFAULT '0',
		total_carbs {{decimal}} NOT NULL DEFAULT '0',
		total_fat {{decimal}} NOT NULL DEFAULT '0',
		meal_count INTEGER NOT NULL DEFAULT 0,
		created_at {{timestamp}} NOT NULL,
		UNIQUE (user_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS idempotency_keys (
		key TEXT NOT NULL,
		route TEXT NOT NULL,
		user_id TEXT NOT NULL,
		response_body TEXT NOT NULL,
		status_code INTEGER NOT NULL,
		created_at {{timestamp}} NOT NULL,
		PRIMARY KEY (key, route, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_habits_user_id ON habits(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_habit_progress_date ON habit_progress(date)`,
	`CREATE INDEX IF NOT EXISTS idx_workouts_user_date ON workouts(user_id, date)`,
	`CREATE INDEX IF NOT EXISTS idx_nutrition_entries_user_date ON nutrition_entries(user_id, date)`,
}

// Migrate creates every table and index that does not exist yet
func (db *DB) Migrate(ctx context.Context) error {
	types := columnTypes[db.dialect]
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, types.Replace(stmt)); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
