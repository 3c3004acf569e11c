// Package db manages the local cache database
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"
)

// DB wraps the SQL database connection with application-specific methods.
type DB struct {
	*sql.DB
	path string
}

// New creates a new database connection and initializes the schema.
func New(path string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.PingContext(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		DB:   sqlDB,
		path: path,
	}

	if err := db.configure(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if err := db.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// configure sets up database pragmas for optimal performance.
func (db *DB) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-64000", // 64MB cache
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}

func (db *DB) createSchema() error {
	if err := db.createSpendSnapshotsTable(); err != nil {
		return err
	}
	return db.createEventCacheTable()
}

func (db *DB) createSpendSnapshotsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS spend_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		time_range TEXT NOT NULL DEFAULT '7d',
		total_cost REAL DEFAULT 0,
		total_calls INTEGER DEFAULT 0,
		total_tokens INTEGER DEFAULT 0,
		avg_latency_ms REAL DEFAULT 0,
		error_rate REAL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_spend_snapshots_timestamp ON spend_snapshots(timestamp);
	CREATE INDEX IF NOT EXISTS idx_spend_snapshots_range ON spend_snapshots(time_range, timestamp);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createEventCacheTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS event_cache (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		agent_name TEXT,
		model TEXT,
		provider TEXT,
		input_tokens INTEGER DEFAULT 0,
		output_tokens INTEGER DEFAULT 0,
		cost REAL DEFAULT 0,
		latency_ms REAL DEFAULT 0,
		status TEXT,
		error_message TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_event_cache_timestamp ON event_cache(timestamp);
	CREATE INDEX IF NOT EXISTS idx_event_cache_agent ON event_cache(agent_name);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

// Close closes the database connection gracefully.
func (db *DB) Close() error {
	// Checkpoint WAL before closing
	_, _ = db.ExecContext(context.Background(), "PRAGMA wal_checkpoint(TRUNCATE)")
	return db.DB.Close()
}

// Vacuum performs database maintenance to reclaim space.
func (db *DB) Vacuum() error {
	_, err := db.ExecContext(context.Background(), "VACUUM")
	return err
}
