package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens dsn with the pure-Go sqlite driver and applies the schema.
// An in-memory DSN such as "file:hiring?mode=memory&cache=shared" works for
// tests.
func OpenSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// one writer; sqlite serialises anyway and this avoids SQLITE_BUSY
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}
	if err := MigrateSQLite(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// Timestamps are stored as unix milliseconds; JSON columns as TEXT.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS pipelines (
	   seq    INTEGER PRIMARY KEY AUTOINCREMENT,
	   id     TEXT NOT NULL UNIQUE,
	   name   TEXT NOT NULL,
	   stages TEXT NOT NULL DEFAULT '[]'
	 )`,
	`CREATE TABLE IF NOT EXISTS jobs (
	   seq          INTEGER PRIMARY KEY AUTOINCREMENT,
	   id           TEXT NOT NULL UNIQUE,
	   title        TEXT NOT NULL,
	   location     TEXT NOT NULL DEFAULT '',
	   description  TEXT NOT NULL DEFAULT '',
	   requirements TEXT NOT NULL DEFAULT '[]',
	   deadline     INTEGER NOT NULL,
	   status       TEXT NOT NULL,
	   pipeline_id  TEXT NOT NULL,
	   posted_date  INTEGER NOT NULL
	 )`,
	`CREATE TABLE IF NOT EXISTS applicants (
	   seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	   id          TEXT NOT NULL UNIQUE,
	   name        TEXT NOT NULL DEFAULT '',
	   email       TEXT NOT NULL,
	   phone       TEXT NOT NULL DEFAULT '',
	   resume_text TEXT NOT NULL DEFAULT '',
	   resume_url  TEXT NOT NULL DEFAULT '',
	   credentials TEXT NOT NULL DEFAULT '',
	   is_admin    INTEGER NOT NULL DEFAULT 0
	 )`,
	`CREATE UNIQUE INDEX IF NOT EXISTS applicants_email_key ON applicants (lower(email))`,
	`CREATE TABLE IF NOT EXISTS applications (
	   seq              INTEGER PRIMARY KEY AUTOINCREMENT,
	   id               TEXT NOT NULL UNIQUE,
	   job_id           TEXT NOT NULL,
	   applicant_id     TEXT NOT NULL,
	   applicant_name   TEXT NOT NULL,
	   applicant_email  TEXT NOT NULL,
	   submission_date  INTEGER NOT NULL,
	   current_stage    TEXT NOT NULL,
	   status_history   TEXT NOT NULL DEFAULT '[]',
	   screening_result TEXT
	 )`,
	`CREATE INDEX IF NOT EXISTS applications_job_idx ON applications (job_id, submission_date)`,
}

// MigrateSQLite applies the schema idempotently.
func MigrateSQLite(ctx context.Context, conn *sql.DB) error {
	for _, stmt := range sqliteSchema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}
