package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// migrationsSource returns the migration directory URL for driver.
func migrationsSource(driver string) (string, error) {
	switch driver {
	case "postgres":
		return "file://migrations/postgresql", nil
	case "mysql":
		return "file://migrations/mysql", nil
	default:
		return "", fmt.Errorf("failed to create migrate instance: unsupported driver %q", driver)
	}
}

// RunMigrations applies all pending migrations for driver. The memory driver has no
// schema and is a no-op.
func RunMigrations(logger *slog.Logger, driver, connectionString string) error {
	if driver == "memory" {
		logger.Info("memory driver selected, nothing to migrate")
		return nil
	}

	logger.Info("running database migrations", slog.String("driver", driver))

	source, err := migrationsSource(driver)
	if err != nil {
		return err
	}

	databaseURL := connectionString
	if driver == "mysql" && !strings.HasPrefix(connectionString, "mysql://") {
		databaseURL = "mysql://" + connectionString
	}

	m, err := migrate.New(source, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}
