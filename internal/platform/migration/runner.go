// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package migration applies the SQL files under data/migrations with
golang-migrate.

The api binary runs [Up] before it accepts traffic. [Down] exists for the
migrate command and is never called by the server.
*/
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// Registers the "pgx5" database scheme.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// Registers the "file" source scheme.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// ErrDirty means a previous run failed halfway and the schema needs a manual
// force before anything else is applied.
var ErrDirty = errors.New("migration: database is dirty")

// Up applies every pending migration in path.
func Up(dsn, path string, logger *slog.Logger) error {
	return run(dsn, path, logger, func(migrator *migrate.Migrate) error {
		return migrator.Up()
	})
}

// Down rolls back steps migrations.
func Down(dsn, path string, steps int, logger *slog.Logger) error {
	if steps <= 0 {
		return fmt.Errorf("migration: steps must be positive, got %d", steps)
	}
	return run(dsn, path, logger, func(migrator *migrate.Migrate) error {
		return migrator.Steps(-steps)
	})
}

func run(dsn, path string, logger *slog.Logger, apply func(*migrate.Migrate) error) error {
	migrator, err := migrate.New("file://"+path, PgxDSN(dsn))
	if err != nil {
		return fmt.Errorf("migration: init: %w", err)
	}
	defer func() {
		sourceErr, databaseErr := migrator.Close()
		if err := errors.Join(sourceErr, databaseErr); err != nil {
			logger.Warn("migration_close_failed", slog.Any("error", err))
		}
	}()
	migrator.Log = &slogBridge{logger: logger}

	from, dirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration: read version: %w", err)
	}
	if dirty {
		return fmt.Errorf("%w at version %d", ErrDirty, from)
	}

	if err := apply(migrator); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migration_no_change", slog.Uint64("version", uint64(from)))
			return nil
		}
		return fmt.Errorf("migration: apply: %w", err)
	}

	to, _, _ := migrator.Version()
	logger.Info("migration_applied",
		slog.Uint64("from_version", uint64(from)),
		slog.Uint64("to_version", uint64(to)),
	)
	return nil
}

// PgxDSN rewrites a postgres:// or postgresql:// URL to the pgx5:// scheme
// the driver registers. Other inputs pass through.
func PgxDSN(dsn string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if rest, ok := strings.CutPrefix(dsn, prefix); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

type slogBridge struct {
	logger *slog.Logger
}

func (bridge *slogBridge) Printf(format string, args ...any) {
	bridge.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (bridge *slogBridge) Verbose() bool { return false }
