package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonnyWalker81/fittrack/backend/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the SQL schema",
	Long: `Create the tables and indexes used by the sqlite and postgres drivers.
The statements are idempotent. Supabase projects manage their own schema.`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer a.Close()

	if a.db == nil {
		return errors.New("migrate requires the sqlite or postgres driver")
	}
	if err := a.db.Migrate(cmd.Context()); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	logger.Info("schema applied",
		logger.String("driver", cfg.Database.Driver),
		logger.String("dialect", string(a.db.Dialect())),
	)
	return nil
}
