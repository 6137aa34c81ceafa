package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isConnectionError reports transient connection problems. SQL errors such
// as syntax or constraint violations are never retried.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return false
	}
	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) {
		return true
	}
	msg := err.Error()
	for _, p := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"i/o timeout",
		"EOF",
		"server closed the connection unexpectedly",
		"could not connect",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// RunMigrations applies every *.up.sql file in dir of fsys in name order.
// Applied versions are recorded in schema_migrations and skipped later.
// Each file runs in its own transaction. Connection errors are retried.
func RunMigrations(ctx context.Context, db DBTX, fsys fs.FS, dir string, logger *slog.Logger) error {
	return retry(ctx, logger, "run migrations", isConnectionError, func() error {
		return runMigrationsOnce(ctx, db, fsys, dir, logger)
	})
}

func runMigrationsOnce(ctx context.Context, db DBTX, fsys fs.FS, dir string, logger *slog.Logger) error {
	if _, err := db.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}

		var exists bool
		if err := db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", name).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if exists {
			logger.DebugContext(ctx, "migration already applied", slog.String("version", name))
			continue
		}

		content, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if err := applyMigration(ctx, db, name, string(content)); err != nil {
			return err
		}
		logger.InfoContext(ctx, "migration applied", slog.String("version", name))
	}
	return nil
}

func applyMigration(ctx context.Context, db DBTX, name, sql string) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx for migration %s: %w", name, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, sql); err != nil {
		return fmt.Errorf("execute migration %s: %w", name, err)
	}
	if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", name); err != nil {
		return fmt.Errorf("record migration %s: %w", name, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migration %s: %w", name, err)
	}
	return nil
}
