// Package store persists traffic counters, point-in-time snapshots, and
// webhook registrations to SQLite. Grounded on
// rishi-jat-console/pkg/store/sqlite.go for the open-then-migrate
// lifecycle and UUID-primary-key convention; uses modernc.org/sqlite (the
// teacher's own go.mod driver choice) so the store needs no cgo toolchain.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a *sql.DB opened against a SQLite file and owns schema
// migration for every store in this package.
type DB struct {
	conn *sql.DB
}

// Open opens (and creates, if missing) the SQLite database at path and
// runs the schema migration.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS traffic_counters (
	username TEXT NOT NULL,
	repo_full_name TEXT NOT NULL,
	metric TEXT NOT NULL,
	cumulative_count INTEGER NOT NULL DEFAULT 0,
	first_seen_date TEXT,
	last_seen_date TEXT,
	PRIMARY KEY (username, repo_full_name, metric)
);

CREATE TABLE IF NOT EXISTS snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	date TEXT NOT NULL,
	data TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_username_date ON snapshots(username, date);

CREATE TABLE IF NOT EXISTS webhooks (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	callback_url TEXT NOT NULL,
	conditions TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_webhooks_username ON webhooks(username);
`

func (db *DB) migrate() error {
	_, err := db.conn.Exec(schema)
	return err
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
