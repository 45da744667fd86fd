package sqlite

import (
	"context"
	"fmt"
	"time"
)

// schemaStatements is applied in order on startup. Statements are idempotent so a
// restart against an existing database is a no-op.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              TEXT PRIMARY KEY,
		username        TEXT NOT NULL UNIQUE COLLATE NOCASE,
		email           TEXT NOT NULL UNIQUE,
		password_hash   TEXT NOT NULL,
		role            TEXT NOT NULL CHECK (role IN ('KNOWLEDGER', 'HOUSER', 'GUEST')),
		muted           INTEGER NOT NULL DEFAULT 0,
		multi_door_open INTEGER NOT NULL DEFAULT 0,
		push_ids        TEXT NOT NULL DEFAULT '',
		birthdate       TEXT,
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS parties (
		id                 TEXT PRIMARY KEY,
		host_id            TEXT NOT NULL REFERENCES users(id),
		name               TEXT NOT NULL,
		description        TEXT NOT NULL DEFAULT '',
		category           TEXT NOT NULL,
		status             TEXT NOT NULL CHECK (status IN ('SCHEDULED', 'IN_PROGRESS', 'COMPLETED', 'CANCELLED')),
		start_at           TEXT NOT NULL,
		end_at             TEXT NOT NULL,
		reminded_three_day INTEGER NOT NULL DEFAULT 0,
		reminded_one_day   INTEGER NOT NULL DEFAULT 0,
		reminded_one_hour  INTEGER NOT NULL DEFAULT 0,
		reminded_started   INTEGER NOT NULL DEFAULT 0,
		reminded_ended     INTEGER NOT NULL DEFAULT 0,
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS party_rooms (
		party_id TEXT NOT NULL REFERENCES parties(id) ON DELETE CASCADE,
		room     TEXT NOT NULL,
		PRIMARY KEY (party_id, room)
	)`,
	`CREATE TABLE IF NOT EXISTS party_guests (
		party_id   TEXT NOT NULL REFERENCES parties(id) ON DELETE CASCADE,
		user_id    TEXT NOT NULL REFERENCES users(id),
		status     TEXT NOT NULL CHECK (status IN ('GOING', 'NOT_GOING', 'UNDECIDED', 'LATE')),
		updated_at TEXT NOT NULL,
		PRIMARY KEY (party_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS logs (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		message    TEXT NOT NULL,
		type       TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_logs_user_type_created
		ON logs (user_id, type, created_at)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id           TEXT PRIMARY KEY,
		recipient_id TEXT NOT NULL,
		title        TEXT NOT NULL,
		message      TEXT NOT NULL,
		category     TEXT NOT NULL,
		party_id     TEXT NOT NULL DEFAULT '',
		read         INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_recipient_created
		ON notifications (recipient_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS house_state (
		id                   INTEGER PRIMARY KEY CHECK (id = 1),
		maintenance_active   INTEGER NOT NULL DEFAULT 0,
		registration_blocked INTEGER NOT NULL DEFAULT 0,
		updated_at           TEXT NOT NULL
	)`,
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, pool *ConnectionPool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", value, err)
	}
	return t, nil
}
