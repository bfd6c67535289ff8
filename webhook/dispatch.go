package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/leonardokr/ghstats/domain/ghstats"
)

const dispatchTimeout = 10 * time.Second

// SnapshotSource supplies the previous snapshot for a user; store.SnapshotStore
// satisfies this.
type SnapshotSource interface {
	Latest(username string) (ghstats.Snapshot, bool, error)
}

// RegistrationSource supplies registered webhooks for a user; store.WebhookStore
// satisfies this.
type RegistrationSource interface {
	ListByUser(username string) ([]ghstats.WebhookRegistration, error)
}

// Dispatcher fires registered webhooks whose conditions match the
// transition from a user's previous snapshot to their current one.
// Delivery failures are logged, never returned: one unreachable callback
// must never fail the snapshot operation that triggered it.
type Dispatcher struct {
	snapshots     SnapshotSource
	registrations RegistrationSource
	http          *http.Client
}

// NewDispatcher builds a Dispatcher over the given stores.
func NewDispatcher(snapshots SnapshotSource, registrations RegistrationSource) *Dispatcher {
	return &Dispatcher{
		snapshots:     snapshots,
		registrations: registrations,
		http:          &http.Client{Timeout: dispatchTimeout},
	}
}

type deliveryPayload struct {
	Username  string         `json:"username"`
	WebhookID string         `json:"webhook_id"`
	Events    []string       `json:"events"`
	Snapshot  map[string]any `json:"snapshot"`
}

// Dispatch evaluates every webhook registered for username against
// previous/current and POSTs to each one whose conditions fired. Returns
// the number of webhooks successfully delivered to.
func (d *Dispatcher) Dispatch(ctx context.Context, username string, current map[string]any) int {
	previous, ok, err := d.snapshots.Latest(username)
	if err != nil {
		slog.Warn("webhook.dispatch.previous_lookup_failed", "username", username, "err", err)
		return 0
	}
	if !ok {
		return 0
	}

	hooks, err := d.registrations.ListByUser(username)
	if err != nil {
		slog.Warn("webhook.dispatch.list_failed", "username", username, "err", err)
		return 0
	}

	fired := 0
	for _, hook := range hooks {
		events := Evaluate(hook.Conditions, current, previous.Data)
		if len(events) == 0 {
			continue
		}
		if d.deliver(ctx, hook, events, current) {
			fired++
		}
	}
	return fired
}

func (d *Dispatcher) deliver(ctx context.Context, hook ghstats.WebhookRegistration, events []string, current map[string]any) bool {
	payload, err := json.Marshal(deliveryPayload{
		Username:  hook.Username,
		WebhookID: hook.ID,
		Events:    events,
		Snapshot:  current,
	})
	if err != nil {
		slog.Warn("webhook.dispatch.marshal_failed", "webhook_id", hook.ID, "err", err)
		return false
	}

	reqCtx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, hook.CallbackURL, bytes.NewReader(payload))
	if err != nil {
		slog.Warn("webhook.dispatch.request_build_failed", "webhook_id", hook.ID, "err", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.http.Do(req)
	if err != nil {
		slog.Warn("webhook.dispatch.delivery_failed", "webhook_id", hook.ID, "err", err)
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		slog.Warn("webhook.dispatch.non_2xx", "webhook_id", hook.ID, "status", resp.StatusCode)
		return false
	}
	return true
}
