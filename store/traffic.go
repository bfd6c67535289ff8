package store

import (
	"database/sql"
	"time"

	"github.com/leonardokr/ghstats/domain/ghstats"
)

// sentinelDate mirrors the original JSON store's "0000-00-00" placeholder
// for "never recorded".
const sentinelDate = "0000-00-00"

// TrafficStore persists cumulative views/clones counters per (username,
// repository, metric), the relational equivalent of the original's
// db.json accumulator.
type TrafficStore struct {
	db *DB
}

// NewTrafficStore wraps an opened DB.
func NewTrafficStore(db *DB) *TrafficStore { return &TrafficStore{db: db} }

// Get fetches the stored counter, returning a zeroed, sentinel-dated
// counter when none exists yet.
func (s *TrafficStore) Get(username, repoFullName, metric string) (ghstats.TrafficCounter, error) {
	row := s.db.conn.QueryRow(
		`SELECT cumulative_count, first_seen_date, last_seen_date FROM traffic_counters WHERE username = ? AND repo_full_name = ? AND metric = ?`,
		username, repoFullName, metric,
	)
	var counter ghstats.TrafficCounter
	counter.Metric = metric
	var first, last sql.NullString
	err := row.Scan(&counter.Cumulative, &first, &last)
	if err == sql.ErrNoRows {
		counter.FirstSeen = sentinelDate
		counter.LastSeen = sentinelDate
		return counter, nil
	}
	if err != nil {
		return ghstats.TrafficCounter{}, err
	}
	counter.FirstSeen = valueOr(first, sentinelDate)
	counter.LastSeen = valueOr(last, sentinelDate)
	return counter, nil
}

// Accumulate adds newCount to the stored cumulative total and advances the
// first/last-seen bounds, inserting the row on first use. firstSeen is only
// set when the existing value is still the sentinel, matching the
// original's "only backfill first_viewed once" behavior.
func (s *TrafficStore) Accumulate(username, repoFullName, metric string, newCount int, observedDate string) error {
	existing, err := s.Get(username, repoFullName, metric)
	if err != nil {
		return err
	}
	cumulative := existing.Cumulative + newCount
	firstSeen := existing.FirstSeen
	if firstSeen == sentinelDate || firstSeen == "" {
		firstSeen = observedDate
	}
	lastSeen := observedDate
	_, err = s.db.conn.Exec(
		`INSERT INTO traffic_counters (username, repo_full_name, metric, cumulative_count, first_seen_date, last_seen_date)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(username, repo_full_name, metric) DO UPDATE SET
		   cumulative_count = excluded.cumulative_count,
		   first_seen_date = excluded.first_seen_date,
		   last_seen_date = excluded.last_seen_date`,
		username, repoFullName, metric, cumulative, firstSeen, lastSeen,
	)
	return err
}

// Yesterday returns yesterday's date in YYYY-MM-DD, the boundary the
// original accumulator advances last_seen_date to.
func Yesterday(now time.Time) string {
	return now.UTC().AddDate(0, 0, -1).Format("2006-01-02")
}

func valueOr(ns sql.NullString, fallback string) string {
	if ns.Valid {
		return ns.String
	}
	return fallback
}
