package db

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/ptyxes/recipebook/config"
	_ "modernc.org/sqlite"
)

const (
	defaultPingTimeout  = 5 * time.Second
	defaultConnMaxIdle  = 2 * time.Minute
	defaultConnMaxLife  = 30 * time.Minute
	defaultMaxIdleConns = 5
	defaultMaxOpenConns = 25
	sqliteBusyTimeout   = 5000
)

func init() {
	sqlx.BindDriver(config.DriverSQLite, sqlx.QUESTION)
}

// Open connects to the configured store and verifies it is reachable.
// SQLite databases are created on first connect.
func Open(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	driver := cfg.Database.Driver
	if driver == "" {
		driver = config.DriverSQLite
	}

	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == config.DriverSQLite {
		// One connection serializes writers and keeps ":memory:" databases
		// alive for the lifetime of the handle.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxIdleTime(0)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetConnMaxIdleTime(defaultConnMaxIdle)
		db.SetConnMaxLifetime(defaultConnMaxLife)
		db.SetMaxIdleConns(defaultMaxIdleConns)
		db.SetMaxOpenConns(defaultMaxOpenConns)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect %s: %w", cfg.Database.Target(), err)
	}

	return db, nil
}

// DSN renders the driver specific connection string for cfg.
func DSN(cfg config.Config) (string, error) {
	switch cfg.Database.Driver {
	case "", config.DriverSQLite:
		return sqliteDSN(cfg.Database.Path), nil
	case config.DriverPostgres:
		return postgresURL(cfg.Database), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func sqliteDSN(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		path = ":memory:"
	}

	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", sqliteBusyTimeout))
	q.Set("_time_format", "sqlite")
	return "file:" + path + "?" + q.Encode()
}

func postgresURL(cfg config.DatabaseConfig) string {
	sslmode := "disable"
	if cfg.UseSSL {
		sslmode = "require"
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		User:   url.UserPassword(cfg.User, cfg.Password),
		Path:   cfg.DBName,
	}

	q := u.Query()
	q.Set("sslmode", sslmode)
	u.RawQuery = q.Encode()
	return u.String()
}
