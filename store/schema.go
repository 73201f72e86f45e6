package store

import (
	"context"
	"database/sql"
	"fmt"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              SERIAL PRIMARY KEY,
		email           TEXT NOT NULL UNIQUE,
		hashed_password BYTEA NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS user_demographics (
		user_id           TEXT NOT NULL,
		age_group         TEXT,
		gender            TEXT,
		registration_date TIMESTAMPTZ,
		attributes        JSONB NOT NULL DEFAULT '{}'::jsonb
	)`,
	`CREATE TABLE IF NOT EXISTS campaigns (
		campaign_name           TEXT NOT NULL,
		channel                 TEXT NOT NULL,
		budget                  DOUBLE PRECISION NOT NULL DEFAULT 0,
		users_acquired          INTEGER NOT NULL DEFAULT 0,
		conversions             INTEGER NOT NULL DEFAULT 0,
		campaign_roi            DOUBLE PRECISION NOT NULL DEFAULT 0,
		cost_per_acquisition    DOUBLE PRECISION NOT NULL DEFAULT 0,
		cost_per_conversion     DOUBLE PRECISION NOT NULL DEFAULT 0,
		conversion_rate_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
		start_date              DATE,
		end_date                DATE
	)`,
}

// EnsurePostgresSchema creates the analyst, demographics and campaign tables.
func EnsurePostgresSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range postgresSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply postgres schema: %w", err)
		}
	}
	return nil
}
