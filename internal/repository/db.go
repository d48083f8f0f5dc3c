package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Supported database/sql driver names. The drivers themselves are registered
// by blank imports in the binary.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// PoolConfig tunes the connection pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to the database and applies the pool settings.
func Open(ctx context.Context, driver, dsn string, pool PoolConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// SQLite allows a single writer, and each :memory: connection is a
		// separate database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(pool.MaxOpenConns)
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	return db, nil
}

var schemas = map[string][]string{
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS issues (
			id          TEXT PRIMARY KEY,
			issue_title TEXT NOT NULL,
			issue_text  TEXT NOT NULL,
			created_by  TEXT NOT NULL,
			assigned_to TEXT NOT NULL DEFAULT '',
			status_text TEXT NOT NULL DEFAULT '',
			is_open     BOOLEAN NOT NULL DEFAULT TRUE,
			created_on  TIMESTAMPTZ NOT NULL,
			updated_on  TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			name TEXT PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS project_issues (
			seq          BIGSERIAL PRIMARY KEY,
			project_name TEXT NOT NULL REFERENCES projects (name),
			issue_id     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS project_issues_project_idx ON project_issues (project_name, seq)`,
	},
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS issues (
			id          TEXT PRIMARY KEY,
			issue_title TEXT NOT NULL,
			issue_text  TEXT NOT NULL,
			created_by  TEXT NOT NULL,
			assigned_to TEXT NOT NULL DEFAULT '',
			status_text TEXT NOT NULL DEFAULT '',
			is_open     BOOLEAN NOT NULL DEFAULT 1,
			created_on  TIMESTAMP NOT NULL,
			updated_on  TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			name TEXT PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS project_issues (
			seq          INTEGER PRIMARY KEY AUTOINCREMENT,
			project_name TEXT NOT NULL REFERENCES projects (name),
			issue_id     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS project_issues_project_idx ON project_issues (project_name, seq)`,
	},
}

// Migrate creates the tables if they do not exist yet. It is safe to run on
// every start.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	stmts, ok := schemas[db.DriverName()]
	if !ok {
		return fmt.Errorf("no schema for driver %q", db.DriverName())
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
