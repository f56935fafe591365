// Package db stores render history in SQLite: connection management,
// embedded schema migrations, a repository and retention cleanup.
package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"time"

	// SQLite driver (pure Go, no CGO required)
	_ "modernc.org/sqlite"
)

// ConnectionConfig holds configuration for SQLite connections.
type ConnectionConfig struct {
	// Path is the database file path
	Path string
	// BusyTimeout is how long to wait for locks
	BusyTimeout time.Duration
	// MaxOpenConns limits concurrent connections (SQLite recommends 1 for writes)
	MaxOpenConns int
}

// DefaultConnectionConfig returns sensible defaults for SQLite: a single
// connection with a 5 second busy timeout.
func DefaultConnectionConfig(path string) ConnectionConfig {
	return ConnectionConfig{
		Path:         path,
		BusyTimeout:  5 * time.Second,
		MaxOpenConns: 1,
	}
}

// dsn builds a modernc DSN that applies the pragmas on every new connection.
func (c ConnectionConfig) dsn() string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", c.BusyTimeout.Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "foreign_keys(1)")
	return "file:" + c.Path + "?" + q.Encode()
}

// NewSQLiteConnection opens a SQLite database in WAL mode with foreign keys
// enforced, and verifies that WAL mode is active.
//
// Example:
//
//	conn, err := NewSQLiteConnection(DefaultConnectionConfig("history.db"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
func NewSQLiteConnection(config ConnectionConfig) (*sql.DB, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	conn, err := sql.Open("sqlite", config.dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if config.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(config.MaxOpenConns)
		conn.SetMaxIdleConns(config.MaxOpenConns)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	var journalMode string
	if err := conn.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		conn.Close()
		return nil, fmt.Errorf("WAL mode not enabled, got: %s", journalMode)
	}

	return conn, nil
}
