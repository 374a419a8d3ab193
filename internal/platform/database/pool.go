// Package database opens the embedded SQLite database used by the dev node vault.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Config holds database connection configuration.
type Config struct {
	// DSN is a modernc.org/sqlite data source, e.g. "file:vault.db" or ":memory:".
	DSN string
	// BusyTimeout makes writers wait for a lock instead of failing; 0 leaves the driver default.
	BusyTimeout     time.Duration
	ConnMaxLifetime time.Duration
}

func DefaultConfig() Config {
	return Config{
		DSN: ":memory:",
	}
}

// Pool wraps a *sql.DB with health checking.
type Pool struct {
	db  *sql.DB
	cfg Config
}

// New opens the database and verifies it answers.
//
// SQLite allows one writer at a time and every ":memory:" connection is its
// own database, so the pool is limited to a single connection.
func New(ctx context.Context, cfg Config) (*Pool, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database dsn is required")
	}

	db, err := sql.Open("sqlite", withPragmas(cfg))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{db: db, cfg: cfg}, nil
}

func withPragmas(cfg Config) string {
	if cfg.BusyTimeout <= 0 {
		return cfg.DSN
	}
	sep := "?"
	if strings.Contains(cfg.DSN, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_pragma=busy_timeout(%d)", cfg.DSN, sep, cfg.BusyTimeout.Milliseconds())
}

func (p *Pool) DB() *sql.DB {
	return p.db
}

// Health checks if the database is reachable.
func (p *Pool) Health(ctx context.Context) error {
	if p == nil || p.db == nil {
		return fmt.Errorf("database not configured")
	}
	return p.db.PingContext(ctx)
}

func (p *Pool) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}
