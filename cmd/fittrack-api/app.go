package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JonnyWalker81/fittrack/backend/internal/cache"
	"github.com/JonnyWalker81/fittrack/backend/internal/clock"
	"github.com/JonnyWalker81/fittrack/backend/internal/config"
	"github.com/JonnyWalker81/fittrack/backend/internal/handlers"
	"github.com/JonnyWalker81/fittrack/backend/internal/logger"
	"github.com/JonnyWalker81/fittrack/backend/internal/models"
	"github.com/JonnyWalker81/fittrack/backend/internal/repository"
	"github.com/JonnyWalker81/fittrack/backend/internal/repository/sqlstore"
	"github.com/JonnyWalker81/fittrack/backend/internal/service"
	"github.com/JonnyWalker81/fittrack/backend/pkg/supabase"
)

// app holds the storage, cache and services shared by every subcommand
type app struct {
	cfg      *config.Config
	clock    clock.Clock
	supabase *supabase.Client
	db       *sqlstore.DB
	redis    *redis.Client
	repos    *repository.Repositories

	stats     service.StatsService
	progress  service.ProgressService
	nutrition service.NutritionService
	daily     service.DailyStatsService
}

// newApp opens the configured store and builds the services. Redis is
// optional: when it cannot be reached the summary cache is disabled.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, clock: clock.System(loc)}

	if cfg.Supabase.URL != "" && cfg.Supabase.ServiceKey != "" {
		a.supabase = supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
	}

	switch cfg.Database.Driver {
	case config.DriverSupabase:
		a.repos = repository.NewSupabaseRepositories(a.supabase)
	case config.DriverSQLite, config.DriverPostgres:
		openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		db, err := sqlstore.Open(openCtx, sqlstore.Dialect(cfg.Database.Driver), cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		a.db = db
		a.repos = db.Repositories()
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	var summaryCache cache.SummaryCache = cache.Nop{}
	if cfg.Cache.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.Cache.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, summary cache disabled", logger.Err(err))
		} else {
			a.redis = client
			summaryCache = cache.NewRedis(client, cfg.Cache.TTL)
		}
	}

	a.stats = service.NewStatsService(a.repos, summaryCache, a.clock)
	a.progress = service.NewProgressService(a.repos.Habits, a.repos.Progress, a.stats, a.clock)
	a.nutrition = service.NewNutritionService(a.repos.Nutrition, a.clock)
	a.daily = service.NewDailyStatsService(a.repos, summaryCache, a.clock)

	return a, nil
}

// idempotencyStore prefers Redis and falls back to the storage table
func (a *app) idempotencyStore() repository.IdempotencyRepository {
	if a.redis != nil {
		return cache.NewIdempotencyStore(a.redis, models.IdempotencyTTL)
	}
	return a.repos.Idempotency
}

// healthChecks lists the dependencies reported by GET /health
func (a *app) healthChecks() map[string]handlers.Pinger {
	checks := make(map[string]handlers.Pinger)
	if a.db != nil {
		checks["database"] = handlers.PingFunc(a.db.PingContext)
	}
	if a.cfg.Database.Driver == config.DriverSupabase {
		checks["database"] = handlers.PingFunc(func(ctx context.Context) error {
			_, err := a.supabase.Query(ctx, "habits", map[string]interface{}{"select": "id", "limit": "1"})
			return err
		})
	}
	if a.redis != nil {
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		})
	}
	return checks
}

func (a *app) Close() error {
	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	return errors.Join(errs...)
}
