// Package ghstats holds the data-model types shared across the collection,
// caching, and storage layers: repositories, languages, contributions,
// streaks, traffic, rate limits, tokens, cache entries, snapshots and
// webhooks.
package ghstats

import "time"

// Repository is a single GitHub repository as seen by the Repo collector.
// Empty repositories are excluded from language aggregation by callers.
type Repository struct {
	FullName   string         `json:"full_name"`
	Stargazers int            `json:"stargazers"`
	Forks      int            `json:"forks"`
	Archived   bool           `json:"archived"`
	Fork       bool           `json:"fork"`
	Private    bool           `json:"private"`
	Empty      bool           `json:"empty"`
	Languages  []LanguageEdge `json:"languages"`
	URL        string         `json:"url,omitempty"`
	Owner      string         `json:"owner"`
	Name       string         `json:"name"`
}

// LanguageEdge is a single language/bytes contribution from one repository's
// GraphQL language edges, prior to aggregation.
type LanguageEdge struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Bytes int64  `json:"bytes"`
}

// LanguageAggregate is the per-language rollup across every counted
// repository. Proportion is always in [0, 100]; the sum over a complete
// aggregate is 100 (or 0 when there are no bytes at all).
type LanguageAggregate struct {
	Name        string  `json:"name"`
	Bytes       int64   `json:"bytes"`
	Occurrences int     `json:"occurrences"`
	Color       string  `json:"color"`
	Proportion  float64 `json:"proportion"`
}

// ContributionDay is one day's contribution count from GitHub's calendar.
// Date is formatted YYYY-MM-DD in UTC.
type ContributionDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Streak is a maximal contiguous run of days with Count > 0.
type Streak struct {
	Length    int    `json:"length"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// TrafficCounter tracks one persistent metric (views or clones) across the
// sliding 14-day window GitHub exposes, accumulated over time.
type TrafficCounter struct {
	Metric     string `json:"metric"`
	Cumulative int    `json:"cumulative_count"`
	FirstSeen  string `json:"first_seen_date"`
	LastSeen   string `json:"last_seen_date"`
}

// RateLimitSnapshot is the most recently observed GitHub rate-limit state,
// mutated by every response that carries X-RateLimit-* headers.
type RateLimitSnapshot struct {
	Remaining  int   `json:"remaining"`
	Limit      int   `json:"limit"`
	ResetEpoch int64 `json:"reset_epoch"`
}

// RateLimitState is the derived, non-persisted classification of a
// RateLimitSnapshot.
type RateLimitState string

const (
	RateLimitUnknown   RateLimitState = "unknown"
	RateLimitConnected RateLimitState = "connected"
	RateLimitDegraded  RateLimitState = "degraded"
	RateLimitCritical  RateLimitState = "critical"
)

// Classify derives the rate-limit state from a snapshot per spec §4.9:
// unknown (never observed), connected (>100 remaining), degraded (11-100),
// critical (<=10).
func (s RateLimitSnapshot) Classify(observed bool) RateLimitState {
	if !observed {
		return RateLimitUnknown
	}
	switch {
	case s.Remaining > 100:
		return RateLimitConnected
	case s.Remaining > 10:
		return RateLimitDegraded
	default:
		return RateLimitCritical
	}
}

// ResolvedToken is the per-request token/scope triple: never shared, never
// persisted beyond the request.
type ResolvedToken struct {
	Token        string
	RepoFilter   string
	UserOwnsRepo bool
}

// CacheEntry is a cached, JSON-shaped endpoint payload. Value is stored as
// already-marshaled JSON so both the in-process and any future external
// backend can treat it opaquely.
type CacheEntry struct {
	Value     []byte    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Snapshot is one append-only statistics record for a user.
type Snapshot struct {
	ID        int64          `json:"id,omitempty"`
	Username  string         `json:"username"`
	Timestamp string         `json:"timestamp"`
	Date      string         `json:"date,omitempty"`
	Data      map[string]any `json:"data"`
}

// WebhookRegistration is a persistent webhook subscription for a user.
type WebhookRegistration struct {
	ID         string         `json:"id"`
	Username   string         `json:"username"`
	CallbackURL string        `json:"callback_url"`
	Conditions map[string]any `json:"conditions"`
	CreatedAt  string         `json:"created_at"`
}
