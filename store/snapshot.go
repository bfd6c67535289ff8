package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/leonardokr/ghstats/domain/ghstats"
)

// SnapshotStore is the append-only history of statistics snapshots,
// grounded on original_source/src/db/snapshots.py: usernames are stored
// lowercased, and a snapshot's reported Date is always the first 10
// characters of its stored timestamp.
type SnapshotStore struct {
	db *DB
}

func NewSnapshotStore(db *DB) *SnapshotStore { return &SnapshotStore{db: db} }

// Save appends a new snapshot for username at the given timestamp (RFC3339).
func (s *SnapshotStore) Save(username string, data map[string]any, timestamp time.Time) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	ts := timestamp.UTC().Format(time.RFC3339)
	_, err = s.db.conn.Exec(
		`INSERT INTO snapshots (username, timestamp, date, data) VALUES (?, ?, ?, ?)`,
		strings.ToLower(username), ts, ts[:10], string(payload),
	)
	return err
}

// List returns snapshots for username within [fromDate, toDate] (either may
// be empty to leave that bound open), oldest first, capped at limit.
func (s *SnapshotStore) List(username, fromDate, toDate string, limit int) ([]ghstats.Snapshot, error) {
	query := `SELECT id, timestamp, data FROM snapshots WHERE username = ?`
	args := []any{strings.ToLower(username)}
	if fromDate != "" {
		query += ` AND timestamp >= ?`
		args = append(args, fromDate)
	}
	if toDate != "" {
		query += ` AND timestamp <= ?`
		args = append(args, toDate+"T23:59:59")
	}
	query += ` ORDER BY timestamp ASC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ghstats.Snapshot
	for rows.Next() {
		var snap ghstats.Snapshot
		var raw string
		if err := rows.Scan(&snap.ID, &snap.Timestamp, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &snap.Data); err != nil {
			return nil, err
		}
		if len(snap.Timestamp) >= 10 {
			snap.Date = snap.Timestamp[:10]
		}
		snap.Username = strings.ToLower(username)
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Latest returns the most recent snapshot for username, or false if none
// exist.
func (s *SnapshotStore) Latest(username string) (ghstats.Snapshot, bool, error) {
	row := s.db.conn.QueryRow(
		`SELECT id, timestamp, data FROM snapshots WHERE username = ? ORDER BY timestamp DESC LIMIT 1`,
		strings.ToLower(username),
	)
	var snap ghstats.Snapshot
	var raw string
	if err := row.Scan(&snap.ID, &snap.Timestamp, &raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ghstats.Snapshot{}, false, nil
		}
		return ghstats.Snapshot{}, false, err
	}
	if err := json.Unmarshal([]byte(raw), &snap.Data); err != nil {
		return ghstats.Snapshot{}, false, err
	}
	if len(snap.Timestamp) >= 10 {
		snap.Date = snap.Timestamp[:10]
	}
	snap.Username = strings.ToLower(username)
	return snap, true, nil
}
