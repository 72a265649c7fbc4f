// Package db provides database connection helpers and the schema each SQL
// backend expects.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPostgresPool creates and verifies a pgxpool connection pool.
func NewPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return pool, nil
}

// postgresSchema creates the four flat collections. Stage lists, history and
// screening results are JSONB columns on their owning row.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS pipelines (
	   id     TEXT PRIMARY KEY,
	   name   TEXT NOT NULL,
	   stages JSONB NOT NULL DEFAULT '[]'::jsonb,
	   seq    BIGSERIAL
	 )`,
	`CREATE TABLE IF NOT EXISTS jobs (
	   id           TEXT PRIMARY KEY,
	   title        TEXT NOT NULL,
	   location     TEXT NOT NULL DEFAULT '',
	   description  TEXT NOT NULL DEFAULT '',
	   requirements TEXT[] NOT NULL DEFAULT '{}',
	   deadline     TIMESTAMPTZ NOT NULL,
	   status       TEXT NOT NULL,
	   pipeline_id  TEXT NOT NULL,
	   posted_date  TIMESTAMPTZ NOT NULL,
	   seq          BIGSERIAL
	 )`,
	`CREATE TABLE IF NOT EXISTS applicants (
	   id          TEXT PRIMARY KEY,
	   name        TEXT NOT NULL DEFAULT '',
	   email       TEXT NOT NULL,
	   phone       TEXT NOT NULL DEFAULT '',
	   resume_text TEXT NOT NULL DEFAULT '',
	   resume_url  TEXT NOT NULL DEFAULT '',
	   credentials TEXT NOT NULL DEFAULT '',
	   is_admin    BOOLEAN NOT NULL DEFAULT false,
	   seq         BIGSERIAL
	 )`,
	`CREATE UNIQUE INDEX IF NOT EXISTS applicants_email_key ON applicants (lower(email))`,
	`CREATE TABLE IF NOT EXISTS applications (
	   id               TEXT PRIMARY KEY,
	   job_id           TEXT NOT NULL,
	   applicant_id     TEXT NOT NULL,
	   applicant_name   TEXT NOT NULL,
	   applicant_email  TEXT NOT NULL,
	   submission_date  TIMESTAMPTZ NOT NULL,
	   current_stage    TEXT NOT NULL,
	   status_history   JSONB NOT NULL DEFAULT '[]'::jsonb,
	   screening_result JSONB,
	   seq              BIGSERIAL
	 )`,
	`CREATE INDEX IF NOT EXISTS applications_job_idx ON applications (job_id, submission_date)`,
	`CREATE INDEX IF NOT EXISTS applications_email_idx ON applications (lower(applicant_email), submission_date)`,
}

// MigratePostgres applies the schema idempotently.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}
	}
	return nil
}
