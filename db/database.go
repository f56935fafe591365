package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrClosed is returned by operations on a closed Database.
var ErrClosed = errors.New("db: database connection is closed")

// Database owns the SQLite connection used for render history.
//
// Usage:
//
//	database, err := db.Open("history.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer database.Close()
//	repo := db.NewRepository(database, nil)
type Database struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// Open creates the database file and its parent directories if needed,
// applies pending migrations and opens the shared connection.
func Open(path string) (*Database, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	if err := MigrateUp(path); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	conn, err := NewSQLiteConnection(DefaultConnectionConfig(path))
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	return &Database{db: conn, path: path}, nil
}

// Path returns the database file path.
func (d *Database) Path() string {
	return d.path
}

// Ping verifies the database connection is alive.
func (d *Database) Ping() error {
	conn, err := d.conn()
	if err != nil {
		return err
	}
	return conn.Ping()
}

// Close closes the connection. Calling Close twice is safe.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func (d *Database) conn() (*sql.DB, error) {
	if d == nil {
		return nil, ErrClosed
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.db == nil {
		return nil, ErrClosed
	}
	return d.db, nil
}
