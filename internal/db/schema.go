package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/ptyxes/recipebook/config"
	"github.com/ptyxes/recipebook/internal/logging"
)

//go:embed migrations
var migrationsFS embed.FS

// EnsureSchema creates every relation that does not exist yet. Running it
// against an up-to-date store is a no-op.
func EnsureSchema(ctx context.Context, db *sqlx.DB, cfg config.Config, logger *slog.Logger) error {
	logger = logging.Schema(logger)

	m, release, err := newMigrator(db, cfg, logger)
	if err != nil {
		return err
	}
	defer release()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Debug("schema up to date", "target", cfg.Database.Target())
			return nil
		}
		return fmt.Errorf("migrate up failed: %w", err)
	}

	logger.Info("schema applied", "target", cfg.Database.Target())
	return nil
}

// Reset drops every relation and recreates the schema from scratch. All
// data is lost.
func Reset(ctx context.Context, db *sqlx.DB, cfg config.Config, logger *slog.Logger) error {
	logger = logging.Schema(logger)
	logger.Warn("resetting database, all data will be dropped", "target", cfg.Database.Target())

	m, release, err := newMigrator(db, cfg, logger)
	if err != nil {
		return err
	}
	defer release()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down failed: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up failed: %w", err)
	}

	logger.Info("database reset", "target", cfg.Database.Target())
	return nil
}

// IsEmpty reports whether no user has registered yet.
func IsEmpty(ctx context.Context, db sqlx.QueryerContext) (bool, error) {
	var count int
	if err := sqlx.GetContext(ctx, db, &count, `SELECT COUNT(1) FROM users`); err != nil {
		return false, err
	}
	return count == 0, nil
}

// newMigrator builds a migrator for the configured dialect. SQLite reuses
// the open handle so in-memory databases see the schema; Postgres gets its
// own connection, released by the returned func.
func newMigrator(db *sqlx.DB, cfg config.Config, logger *slog.Logger) (*migrate.Migrate, func(), error) {
	driver := cfg.Database.Driver
	if driver == "" {
		driver = config.DriverSQLite
	}

	src, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s migrations: %w", driver, err)
	}

	var m *migrate.Migrate
	release := func() {}

	switch driver {
	case config.DriverSQLite:
		instance, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
		if err != nil {
			return nil, nil, fmt.Errorf("init migration driver failed: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", src, driver, instance)
		if err != nil {
			return nil, nil, fmt.Errorf("init migrator failed: %w", err)
		}
	case config.DriverPostgres:
		dsn, err := DSN(cfg)
		if err != nil {
			return nil, nil, err
		}
		m, err = migrate.NewWithSourceInstance("iofs", src, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("init migrator failed: %w", err)
		}
		release = func() {
			_, _ = m.Close()
		}
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	m.Log = &migrateLogger{logger: logger}
	return m, release, nil
}

// migrateLogger adapts slog to the golang-migrate logger interface.
type migrateLogger struct {
	logger *slog.Logger
}

func (l *migrateLogger) Printf(format string, v ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *migrateLogger) Verbose() bool {
	return false
}
