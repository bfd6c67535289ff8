package store

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "ghstats-test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSnapshotStoreSaveListLatest(t *testing.T) {
	db := openTestDB(t)
	s := NewSnapshotStore(db)

	_, ok, err := s.Latest("octocat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected no snapshot yet")
	}

	ts := time.Date(2026, 7, 29, 12, 0, 0, 0, time.UTC)
	if err := s.Save("Octocat", map[string]any{"total_stars": float64(3)}, ts); err != nil {
		t.Fatalf("save: %v", err)
	}
	ts2 := ts.Add(24 * time.Hour)
	if err := s.Save("Octocat", map[string]any{"total_stars": float64(5)}, ts2); err != nil {
		t.Fatalf("save: %v", err)
	}

	latest, ok, err := s.Latest("octocat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected a latest snapshot")
	}
	if latest.Data["total_stars"] != float64(5) {
		t.Fatalf("expected latest snapshot to be the most recent one, got %+v", latest.Data)
	}

	list, err := s.List("octocat", "", "", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(list))
	}
	if list[0].Date != "2026-07-29" {
		t.Fatalf("expected oldest-first ordering, got date %q first", list[0].Date)
	}
}

func TestWebhookStoreCreateListDelete(t *testing.T) {
	db := openTestDB(t)
	s := NewWebhookStore(db)

	hook, err := s.Create("Octocat", "https://example.com/hook", map[string]any{"streak_broken": true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if hook.ID == "" {
		t.Fatalf("expected a generated id")
	}
	if hook.Username != "octocat" {
		t.Fatalf("expected username to be lowercased, got %q", hook.Username)
	}

	list, err := s.ListByUser("octocat")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 webhook, got %d", len(list))
	}

	deleted, err := s.Delete(hook.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Fatalf("expected delete to report true")
	}

	list, err = s.ListByUser("octocat")
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected 0 webhooks after delete, got %d", len(list))
	}
}

func TestTrafficStoreAccumulatesAndPreservesFirstSeen(t *testing.T) {
	db := openTestDB(t)
	s := NewTrafficStore(db)

	if err := s.Accumulate("octocat", "octocat/hello-world", "views", 3, "2026-07-28"); err != nil {
		t.Fatalf("accumulate: %v", err)
	}
	if err := s.Accumulate("octocat", "octocat/hello-world", "views", 4, "2026-07-29"); err != nil {
		t.Fatalf("accumulate: %v", err)
	}

	counter, err := s.Get("octocat", "octocat/hello-world", "views")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if counter.Cumulative != 7 {
		t.Fatalf("expected cumulative 7, got %d", counter.Cumulative)
	}
	if counter.FirstSeen != "2026-07-28" {
		t.Fatalf("expected first_seen to stay pinned to the first accumulate call, got %q", counter.FirstSeen)
	}
	if counter.LastSeen != "2026-07-29" {
		t.Fatalf("expected last_seen to advance, got %q", counter.LastSeen)
	}
}
