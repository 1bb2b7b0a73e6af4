package db

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lib/pq"
	sqlite3 "github.com/mattn/go-sqlite3"

	"weatherdash/internal/config"
)

// Open connects to the configured database through the statement logger and
// checks connectivity before returning.
func Open(cfg config.DBConfig, logger *slog.Logger) (*sql.DB, error) {
	drv, dsn, err := driverFor(cfg)
	if err != nil {
		return nil, err
	}

	connector, err := NewLoggingConnector(drv, dsn, logger)
	if err != nil {
		return nil, err
	}
	db := sql.OpenDB(connector)

	// SQLite is typically best with low concurrency; tune if needed.
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns >= 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return db, nil
}

func Close(db *sql.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

func driverFor(cfg config.DBConfig) (driver.Driver, string, error) {
	switch cfg.Driver {
	case "postgres":
		if cfg.DSN == "" {
			return nil, "", fmt.Errorf("postgres requires a DSN")
		}
		return &pq.Driver{}, cfg.DSN, nil
	case "sqlite3", "":
		dsn, err := buildSQLiteDSN(cfg)
		if err != nil {
			return nil, "", err
		}
		return &sqlite3.SQLiteDriver{}, dsn, nil
	default:
		return nil, "", fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}

func buildSQLiteDSN(cfg config.DBConfig) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}

	path := cfg.Path
	if path == ":memory:" {
		return path, nil
	}
	dir := filepath.Dir(strings.TrimPrefix(path, "file:"))
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	// foreign_keys=on enforces FK constraints; busy_timeout and WAL help with
	// "database is locked" under concurrent requests.
	params := []string{
		"_foreign_keys=on",
		"_busy_timeout=5000",
		"_journal_mode=WAL",
	}

	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}

	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}
