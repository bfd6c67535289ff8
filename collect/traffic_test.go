package collect

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leonardokr/ghstats/store"
)

func openTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "ghstats-test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestTrafficCollectorAccumulatesAcrossRepos(t *testing.T) {
	db := openTestDB(t)
	trafficStore := store.NewTrafficStore(db)

	gh := testClient(func(r *http.Request) (*http.Response, error) {
		if strings.Contains(r.URL.Path, "/traffic/views") {
			return jsonResponse(`{"views":[{"timestamp":"2026-07-29T00:00:00Z","count":4,"uniques":2}]}`), nil
		}
		return jsonResponse(`{}`), nil
	})

	c := NewTrafficCollector(gh, trafficStore, "octocat")
	now := time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC)

	views, err := c.Views(context.Background(), []string{"octocat/hello-world"}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if views.Cumulative != 4 {
		t.Fatalf("expected cumulative views 4, got %d", views.Cumulative)
	}

	stored, err := trafficStore.Get("octocat", "octocat/hello-world", "views")
	if err != nil {
		t.Fatalf("unexpected error reading back store: %v", err)
	}
	if stored.Cumulative != 4 {
		t.Fatalf("expected persisted cumulative 4, got %d", stored.Cumulative)
	}
}
