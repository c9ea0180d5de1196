package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_engine/migrations"
	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// MigrateDirection selects which way RunMigrations moves the schema.
type MigrateDirection int

const (
	MigrateUp MigrateDirection = iota
	MigrateDown
)

// RunMigrations applies the embedded schema migrations. Up and down both
// treat migrate.ErrNoChange as success.
func RunMigrations(databaseURL string, direction MigrateDirection, logger *slog.Logger) (err error) {
	// Open a standard sql.DB through the pgx stdlib driver for migrate.
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database connection for migrations: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("could not create postgres driver instance for migrations: %w", err)
	}
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer func() {
		// Closing m also closes db through the driver.
		sourceErr, dbErr := m.Close()
		if err == nil {
			err = errors.Join(sourceErr, dbErr)
		}
	}()

	switch direction {
	case MigrateDown:
		err = m.Down()
	default:
		err = m.Up()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read migration version: %w", verr)
	}
	if dirty {
		return fmt.Errorf("database is dirty at migration version %d", version)
	}
	logger.Info("Database migrations applied successfully.", slog.Uint64("version", uint64(version)))
	return nil
}
