package migrations

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // postgres database driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // file:// revision source
	_ "github.com/jackc/pgx/v5/stdlib"                         // database/sql driver

	"github.com/autobus-platform/autobus/internal/logger"
)

// migrateApplier applies pending revisions with golang-migrate.
// golang-migrate takes a Postgres advisory lock, so concurrent instances
// cannot race each other during a rolling deploy.
type migrateApplier struct{}

func (migrateApplier) Apply(ctx context.Context, dir, databaseURL string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	m, err := migrate.New("file://"+abs, databaseURL)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Warn("closing migration source", "error", srcErr)
		}
		if dbErr != nil {
			logger.Warn("closing migration database", "error", dbErr)
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("no pending revisions")
			return nil
		}
		return fmt.Errorf("apply revisions: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read revision version: %w", err)
	}
	logger.Info("revisions applied", "version", version, "dirty", dirty)
	if dirty {
		logger.Warn("schema is in a dirty state, manual intervention may be required")
	}
	return nil
}
