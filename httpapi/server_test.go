package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leonardokr/ghstats/cache"
	"github.com/leonardokr/ghstats/client"
	"github.com/leonardokr/ghstats/config"
	"github.com/leonardokr/ghstats/privacy"
	"github.com/leonardokr/ghstats/stats"
	"github.com/leonardokr/ghstats/store"
	"github.com/leonardokr/ghstats/webhook"
)

func TestValidUsername(t *testing.T) {
	cases := map[string]bool{
		"octocat":     true,
		"a":           true,
		"oct-ocat":    true,
		"":            false,
		"-octocat":    false,
		"octocat-":    false,
		"oct--ocat":   false,
		string(make([]byte, 40)): false,
	}
	for in, want := range cases {
		if got := validUsername(in); got != want {
			t.Errorf("validUsername(%q) = %v, want %v", in, got, want)
		}
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		RateLimitDefault: 1000,
		RateLimitAuth:    1000,
		RateLimitHeavy:   1000,
		CacheMaxSize:     1000,
		CacheTTL:         time.Minute,
	}
	gh := client.New("test-token")
	db, err := store.Open(filepath.Join(t.TempDir(), "ghstats-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	trafficStore := store.NewTrafficStore(db)
	snapshotStore := store.NewSnapshotStore(db)
	webhookStore := store.NewWebhookStore(db)
	dispatcher := webhook.NewDispatcher(snapshotStore, webhookStore)
	c := cache.New(cache.NewMemoryBackend(cfg.CacheMaxSize), cfg.CacheTTL)
	filter := privacy.NewFilter("", "", "", "", true, false, false, false, false)

	facades := func(username string) *stats.Facade {
		return stats.NewFacade(gh, trafficStore, username, filter, 1, 0, time.UTC)
	}

	return New(cfg, gh, facades, c, snapshotStore, webhookStore, dispatcher)
}

func TestHandleHealthReportsOK(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRoutesRejectInvalidUsername(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/users/-bad-/overview", nil)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	if rec.Code != 422 {
		t.Fatalf("expected 422 for an invalid username, got %d", rec.Code)
	}
}

func TestWebhooksCreateListDeleteRoundTrip(t *testing.T) {
	s := newTestServer(t)

	body := `{"callback_url":"https://example.com/hook","conditions":{"streak_broken":true}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/users/octocat/webhooks", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("expected a generated webhook id in response: %s", rec.Body.String())
	}

	listReq := httptest.NewRequest(http.MethodGet, "/v1/users/octocat/webhooks", nil)
	listRec := httptest.NewRecorder()
	s.Echo.ServeHTTP(listRec, listReq)
	if listRec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing webhooks, got %d", listRec.Code)
	}

	delReq := httptest.NewRequest(http.MethodDelete, "/v1/users/octocat/webhooks/"+id, nil)
	delRec := httptest.NewRecorder()
	s.Echo.ServeHTTP(delRec, delReq)
	if delRec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 deleting webhook, got %d", delRec.Code)
	}
}

func TestWebhooksCreateRequiresCallbackURL(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/users/octocat/webhooks", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a missing callback_url, got %d", rec.Code)
	}
}
