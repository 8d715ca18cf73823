// Package cli consolidates the initialization shared by cmd/spendify and
// cmd/spendify-worker.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"spendify/internal/config"
	applog "spendify/internal/log"
	"spendify/internal/storage"
)

// Bootstrap loads the environment, sets up logging, and validates the
// configuration. Exits the process on validation failure; a partially
// configured binary must not start.
func Bootstrap(component string) (*applog.Logger, *config.Config) {
	// .env is for local development; absence is not an error.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent(component)
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	return logger, cfg
}

// OpenStorage initializes the SQLite repository, exiting on failure.
func OpenStorage(logger *applog.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}
