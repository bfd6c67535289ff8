package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leonardokr/ghstats/domain/ghstats"
)

// WebhookStore persists webhook registrations, grounded on
// original_source/src/db/webhooks.py: UUID primary keys, usernames stored
// lowercased, conditions stored as JSON text.
type WebhookStore struct {
	db *DB
}

func NewWebhookStore(db *DB) *WebhookStore { return &WebhookStore{db: db} }

// Create registers a new webhook and returns it with its generated ID.
func (s *WebhookStore) Create(username, callbackURL string, conditions map[string]any) (ghstats.WebhookRegistration, error) {
	id := uuid.New().String()
	createdAt := time.Now().UTC().Format(time.RFC3339)
	payload, err := json.Marshal(conditions)
	if err != nil {
		return ghstats.WebhookRegistration{}, err
	}
	username = strings.ToLower(username)
	_, err = s.db.conn.Exec(
		`INSERT INTO webhooks (id, username, callback_url, conditions, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, username, callbackURL, string(payload), createdAt,
	)
	if err != nil {
		return ghstats.WebhookRegistration{}, err
	}
	return ghstats.WebhookRegistration{
		ID: id, Username: username, CallbackURL: callbackURL, Conditions: conditions, CreatedAt: createdAt,
	}, nil
}

// ListByUser returns every webhook registered for username, oldest first.
func (s *WebhookStore) ListByUser(username string) ([]ghstats.WebhookRegistration, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, username, callback_url, conditions, created_at FROM webhooks WHERE username = ? ORDER BY created_at`,
		strings.ToLower(username),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWebhooks(rows)
}

// Get fetches a single webhook by ID.
func (s *WebhookStore) Get(id string) (ghstats.WebhookRegistration, bool, error) {
	row := s.db.conn.QueryRow(
		`SELECT id, username, callback_url, conditions, created_at FROM webhooks WHERE id = ?`, id,
	)
	var w ghstats.WebhookRegistration
	var raw string
	if err := row.Scan(&w.ID, &w.Username, &w.CallbackURL, &raw, &w.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ghstats.WebhookRegistration{}, false, nil
		}
		return ghstats.WebhookRegistration{}, false, err
	}
	if err := json.Unmarshal([]byte(raw), &w.Conditions); err != nil {
		return ghstats.WebhookRegistration{}, false, err
	}
	return w, true, nil
}

// Delete removes a webhook by ID, reporting whether a row was deleted.
func (s *WebhookStore) Delete(id string) (bool, error) {
	res, err := s.db.conn.Exec(`DELETE FROM webhooks WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListAllActive returns every registered webhook, used by the dispatcher
// sweep.
func (s *WebhookStore) ListAllActive() ([]ghstats.WebhookRegistration, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, username, callback_url, conditions, created_at FROM webhooks ORDER BY username`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWebhooks(rows)
}

func scanWebhooks(rows *sql.Rows) ([]ghstats.WebhookRegistration, error) {
	var out []ghstats.WebhookRegistration
	for rows.Next() {
		var w ghstats.WebhookRegistration
		var raw string
		if err := rows.Scan(&w.ID, &w.Username, &w.CallbackURL, &raw, &w.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &w.Conditions); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
