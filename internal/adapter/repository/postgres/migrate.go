package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS class_languages (
		code TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS class_schedules (
		class_type TEXT NOT NULL,
		start_time TEXT NOT NULL,
		PRIMARY KEY (class_type, start_time)
	)`,
	`CREATE TABLE IF NOT EXISTS class_capacities (
		class_type   TEXT PRIMARY KEY,
		min_capacity INT NOT NULL CHECK (min_capacity >= 1),
		max_capacity INT NOT NULL CHECK (max_capacity >= min_capacity)
	)`,
	`CREATE TABLE IF NOT EXISTS class_prices (
		class_type TEXT NOT NULL,
		currency   CHAR(3) NOT NULL,
		category   TEXT NOT NULL CHECK (category IN ('ADULT', 'CHILD')),
		unit_price BIGINT NOT NULL CHECK (unit_price >= 0),
		PRIMARY KEY (class_type, currency, category)
	)`,
	`CREATE TABLE IF NOT EXISTS class_sessions (
		id                 UUID PRIMARY KEY,
		session_date       DATE NOT NULL,
		time_slot          TEXT NOT NULL,
		class_type         TEXT NOT NULL,
		language           TEXT NOT NULL,
		total_participants INT NOT NULL DEFAULT 0 CHECK (total_participants >= 0),
		is_closed          BOOLEAN NOT NULL DEFAULT FALSE,
		created_at         TIMESTAMPTZ NOT NULL,
		updated_at         TIMESTAMPTZ NOT NULL,
		UNIQUE (session_date, time_slot, class_type)
	)`,
	`CREATE TABLE IF NOT EXISTS class_registrations (
		id                 UUID PRIMARY KEY,
		session_id         UUID NOT NULL REFERENCES class_sessions(id),
		adults             INT NOT NULL CHECK (adults >= 0),
		children           INT NOT NULL CHECK (children >= 0),
		total_participants INT NOT NULL CHECK (total_participants >= 1),
		price_adults       BIGINT NOT NULL,
		price_children     BIGINT NOT NULL,
		total_price        BIGINT NOT NULL,
		currency           CHAR(3) NOT NULL,
		language           TEXT NOT NULL,
		status             TEXT NOT NULL CHECK (status IN ('PENDING', 'CONFIRMED', 'CANCELLED')),
		expires_at         TIMESTAMPTZ,
		customer_name      TEXT NOT NULL,
		customer_email     TEXT NOT NULL,
		customer_phone     TEXT NOT NULL,
		comments           TEXT NOT NULL DEFAULT '',
		payment_provider   TEXT NOT NULL DEFAULT '',
		payment_reference  TEXT NOT NULL DEFAULT '',
		payer_id           TEXT NOT NULL DEFAULT '',
		cancel_reason      TEXT NOT NULL DEFAULT '',
		created_at         TIMESTAMPTZ NOT NULL,
		confirmed_at       TIMESTAMPTZ,
		cancelled_at       TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_class_registrations_pending_expiry
		ON class_registrations (expires_at) WHERE status = 'PENDING'`,
	`CREATE INDEX IF NOT EXISTS idx_class_registrations_session
		ON class_registrations (session_id)`,
}

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
