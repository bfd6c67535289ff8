// Package httpapi is the thin external-interfaces adapter exposing the core
// engine over HTTP, grounded on the teacher's command/web/web.go (Echo
// server, flag-configured listen address) generalized from serving static
// CSVs to serving the stats facade's JSON payloads.
package httpapi

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/leonardokr/ghstats/cache"
	"github.com/leonardokr/ghstats/client"
	"github.com/leonardokr/ghstats/config"
	ghxerrors "github.com/leonardokr/ghstats/errors"
	"github.com/leonardokr/ghstats/privacy"
	"github.com/leonardokr/ghstats/stats"
	"github.com/leonardokr/ghstats/store"
	"github.com/leonardokr/ghstats/webhook"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9]|-(?:[A-Za-z0-9]))*$`)

// validUsername enforces the GitHub login pattern from spec §6: 1-39 chars,
// alphanumeric, hyphens never doubled or trailing.
func validUsername(u string) bool {
	if len(u) == 0 || len(u) > 39 {
		return false
	}
	if !usernamePattern.MatchString(u) {
		return false
	}
	return true
}

// FacadeFactory builds a stats.Facade for one resolved (token, username)
// request. The core token is the server's own GITHUB_TOKEN; per-request
// X-GitHub-Token validation only unlocks private-repo visibility, it never
// swaps which credential issues the GitHub calls.
type FacadeFactory func(username string) *stats.Facade

// Server wires the core engine behind Echo routes matching spec §6's table.
type Server struct {
	Echo *echo.Echo

	cfg        *config.Config
	gh         *client.Client
	facades    FacadeFactory
	cache      *cache.Cache
	snapshots  *store.SnapshotStore
	webhooks   *store.WebhookStore
	dispatcher *webhook.Dispatcher
	limiter    *callerLimiter
}

// New builds a Server. gh is the server's own GitHub client (used only to
// validate X-GitHub-Token values via GET /user); facades builds a
// stats.Facade scoped to the requested username.
func New(cfg *config.Config, gh *client.Client, facades FacadeFactory, c *cache.Cache, snapshots *store.SnapshotStore, webhooks *store.WebhookStore, dispatcher *webhook.Dispatcher) *Server {
	s := &Server{
		Echo:       echo.New(),
		cfg:        cfg,
		gh:         gh,
		facades:    facades,
		cache:      c,
		snapshots:  snapshots,
		webhooks:   webhooks,
		dispatcher: dispatcher,
		limiter:    newCallerLimiter(),
	}
	s.Echo.HideBanner = true
	s.Echo.Use(requestIDMiddleware)
	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.Echo
	e.GET("/health", s.handleHealth)

	v1 := e.Group("/v1/users/:username", s.authMiddleware, s.rateLimitMiddleware)
	v1.GET("/overview", s.handleOverview)
	v1.GET("/languages", s.handleLanguages)
	v1.GET("/streak", s.handleStreak)
	v1.GET("/contributions/recent", s.handleRecentContributions)
	v1.GET("/commits/weekly", s.handleWeeklyCommits)
	v1.GET("/repositories", s.handleRepositories)
	v1.GET("/repositories/detailed", s.handleRepositoriesDetailed)
	v1.GET("/stats/full", s.handleStatsFull, s.heavyRateLimitMiddleware)
	v1.GET("/cards/:type", s.handleCard)
	v1.GET("/compare/:other", s.handleCompare, s.heavyRateLimitMiddleware)
	v1.GET("/history", s.handleHistoryList)
	v1.POST("/history", s.handleHistorySnapshot)
	v1.GET("/history/snapshot", s.handleHistoryList)
	v1.POST("/history/snapshot", s.handleHistorySnapshot)
	v1.GET("/webhooks", s.handleWebhooksList)
	v1.POST("/webhooks", s.handleWebhooksCreate)
	v1.DELETE("/webhooks/:id", s.handleWebhooksDelete)
}

func requestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Response().Header().Set("X-Request-ID", id)
		return next(c)
	}
}

// authMiddleware enforces the optional API-key gate and validates
// X-GitHub-Token against the path username when present, per spec §6.
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		username := c.Param("username")
		if !validUsername(username) {
			return echo.NewHTTPError(422, "invalid username")
		}

		if s.cfg.APIAuthEnabled {
			key := bearerToken(c.Request())
			if key == "" || !containsKey(s.cfg.APIKeys, key) {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid API key")
			}
			c.Set("authenticated", true)
		}

		if token := c.Request().Header.Get("X-GitHub-Token"); token != "" {
			scoped := client.New(token)
			ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
			defer cancel()
			who, err := scoped.AuthenticatedUser(ctx)
			if err != nil || !strings.EqualFold(who.Login, username) {
				return echo.NewHTTPError(http.StatusForbidden, "X-GitHub-Token does not match requested user")
			}
			c.Set("owns_repo", true)
			c.Set("scoped_client", scoped)
		}

		return next(c)
	}
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// callerKey identifies the rate-limit bucket for a request: the API key
// when authenticated, else the client IP.
func callerKey(c echo.Context) string {
	if key := bearerToken(c.Request()); key != "" {
		return "key:" + key
	}
	return "ip:" + c.RealIP()
}

func (s *Server) rateLimitMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit := s.cfg.RateLimitDefault
		if c.Get("authenticated") == true {
			limit = s.cfg.RateLimitAuth
		}
		return s.enforceLimit(c, next, limit)
	}
}

func (s *Server) heavyRateLimitMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		return s.enforceLimit(c, next, s.cfg.RateLimitHeavy)
	}
}

func (s *Server) enforceLimit(c echo.Context, next echo.HandlerFunc, limit int) error {
	retryAfter, ok := s.limiter.allow(callerKey(c), limit)
	if !ok {
		seconds := int(retryAfter.Round(time.Second).Seconds())
		if seconds < 1 {
			seconds = 1
		}
		c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
	}
	return next(c)
}

func (s *Server) handleHealth(c echo.Context) error {
	health := s.gh.HealthSnapshot()
	status := health.Overall
	code := http.StatusOK
	if status == "unavailable" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]string{"status": status})
}

// writeErr translates an error from the core into the right HTTP response,
// via errors.StatusCode so no handler needs a type switch.
func writeErr(c echo.Context, err error) error {
	return echo.NewHTTPError(ghxerrors.StatusCode(err), err.Error())
}

// privacyFilterFromConfig builds a privacy.Filter from cfg's RepoFilter
// section. Nothing in this package calls it; command/serve builds the
// filter it passes to the facade factory itself.
func privacyFilterFromConfig(cfg *config.Config) *privacy.Filter {
	rf := cfg.RepoFilter
	return privacy.NewFilter(
		rf.ExcludeRepos, rf.ExcludeLangs, rf.ManuallyAddedRepos, rf.OnlyIncludedRepos,
		rf.IncludeForkedRepos, rf.ExcludeContribRepos, rf.ExcludeArchiveRepos,
		rf.ExcludePrivateRepos, rf.ExcludePublicRepos,
	)
}
