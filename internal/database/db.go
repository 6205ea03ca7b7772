package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
	path string
}

// New creates a new database connection
func New(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Use WAL mode for better concurrency
	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Single-process batch tool, small pool is plenty
	conn.SetMaxOpenConns(4)
	conn.SetMaxIdleConns(2)

	return &DB{
		conn: conn,
		path: dbPath,
	}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB connection
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Begin starts a new transaction
func (db *DB) Begin() (*sql.Tx, error) {
	return db.conn.Begin()
}

// Migrate creates the schema if it does not exist
func (db *DB) Migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS deals (
			deal_id          TEXT PRIMARY KEY,
			created_date     TEXT NOT NULL,
			closed_date      TEXT NOT NULL,
			deal_amount      REAL NOT NULL,
			outcome          TEXT NOT NULL,
			sales_cycle_days REAL NOT NULL,
			industry         TEXT NOT NULL DEFAULT '',
			region           TEXT NOT NULL DEFAULT '',
			product_type     TEXT NOT NULL DEFAULT '',
			lead_source      TEXT NOT NULL DEFAULT '',
			deal_stage       TEXT NOT NULL DEFAULT '',
			sales_rep_id     TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_deals_created ON deals(created_date)`,
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			run_id         TEXT PRIMARY KEY,
			started_at     TEXT NOT NULL,
			finished_at    TEXT,
			deal_count     INTEGER NOT NULL,
			train_accuracy REAL,
			test_accuracy  REAL,
			report_path    TEXT,
			model_path     TEXT,
			status         TEXT NOT NULL
		)`,
	}

	for _, stmt := range schema {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
