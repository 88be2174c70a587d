package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonnyWalker81/fittrack/backend/internal/config"
	"github.com/JonnyWalker81/fittrack/backend/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "fittrack-api",
	Short: "FitTrack API server",
	Long:  `A REST API server for FitTrack habit, workout and nutrition statistics.`,
	// usage is noise when a subcommand fails at runtime
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(refreshCmd)
}

// loadConfig loads configuration and installs the default logger from it
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logCfg := logger.Config{
		Level:     logger.ParseLevel(cfg.Log.Level),
		Format:    cfg.Log.Format,
		AddSource: !cfg.IsProduction(),
	}
	if cfg.Log.File != "" {
		logCfg.File = &logger.FileConfig{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
		}
	}
	logger.SetDefault(logger.NewSlogLogger(logCfg))

	return cfg, nil
}
