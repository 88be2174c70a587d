package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/JonnyWalker81/fittrack/backend/internal/handlers"
	"github.com/JonnyWalker81/fittrack/backend/internal/logger"
	"github.com/JonnyWalker81/fittrack/backend/internal/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server and listen for requests.`,
	RunE:  runServe,
}

var (
	port         string
	migrateFirst bool
)

func init() {
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&migrateFirst, "migrate", false, "Apply the SQL schema before serving (sqlite/postgres only)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Override port from flag if provided
	if port != "" {
		cfg.Server.Port = port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting FitTrack API server",
		logger.String("env", cfg.Server.Env),
		logger.String("driver", cfg.Database.Driver),
		logger.Bool("redis", cfg.Cache.RedisURL != ""),
	)

	a, err := newApp(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("shutdown: closing connections failed", logger.Err(err))
		}
	}()

	if migrateFirst {
		if a.db == nil {
			return errors.New("--migrate requires the sqlite or postgres driver")
		}
		if err := a.db.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))

	router.GET("/health", handlers.NewHealthHandler(a.healthChecks()).Health)

	var verifier middleware.TokenVerifier
	if cfg.Auth.JWTSecret != "" {
		verifier = middleware.NewJWTVerifier(cfg.Auth.JWTSecret)
	} else {
		verifier = middleware.NewSupabaseVerifier(a.supabase)
	}

	api := &handlers.Handlers{
		Progress:  handlers.NewProgressHandler(a.progress),
		Stats:     handlers.NewStatsHandler(a.stats, a.daily),
		Nutrition: handlers.NewNutritionHandler(a.nutrition),
	}
	api.Register(router.Group("/api/v1"),
		middleware.Auth(verifier),
		middleware.RateLimitMutations(cfg.RateLimit.Mutations, cfg.RateLimit.Window),
		middleware.Idempotency(a.idempotencyStore()),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", logger.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
