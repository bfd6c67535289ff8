// Package client implements the GitHub GraphQL v4 and REST v3 client used
// by the collectors: bounded concurrency, rate-limit pacing, a circuit
// breaker, retry with backoff, and REST 202 polling. Grounded on the
// teacher's connectors/github/client.go for request shape and header
// parsing, and on resilient-bridge's RequestExecutor for the
// wait/dispatch/inspect/retry control flow.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"golang.org/x/oauth2"

	"github.com/leonardokr/ghstats/domain/ghstats"
	ghxerrors "github.com/leonardokr/ghstats/errors"
)

const (
	graphQLEndpoint = "https://api.github.com/graphql"
	restBase        = "https://api.github.com"
	acceptDefault   = "application/vnd.github+json"

	defaultConcurrency  = 10
	breakerFailMax      = 5
	breakerResetTimeout = 30 * time.Second
	retryAttempts       = 3
	restPollAttempts    = 60
	restPollInterval    = 2 * time.Second
	maxRetryAfter       = 60 * time.Second
)

// MetricsObserver receives client-level events for external instrumentation.
// The metrics package provides a Prometheus-backed implementation; nil is a
// valid no-op.
type MetricsObserver interface {
	ObserveRequest(endpoint string, status int, duration time.Duration)
	ObserveRateLimit(remaining, limit int)
	ObserveBreakerState(upstream, state string)
}

// Client is the bounded, rate-aware GitHub API client shared by all
// collectors for a single resolved token.
type Client struct {
	http     *http.Client
	token    string
	sem      chan struct{}
	rate     *rateGovernor
	graphQL  *breaker
	rest     *breaker
	metrics  MetricsObserver
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithHTTPClient overrides the underlying *http.Client (used for tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithConcurrency overrides the default counting-semaphore size.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.sem = make(chan struct{}, n)
		}
	}
}

// WithMetrics attaches a MetricsObserver.
func WithMetrics(m MetricsObserver) Option {
	return func(c *Client) { c.metrics = m }
}

// New constructs a Client for a resolved token. The default HTTP client's
// transport is built from golang.org/x/oauth2's static token source, the
// same pattern the teacher's connectors/gcp/client.go uses for its own
// credentials (oauth2.NewClient wraps a transport that injects
// "Authorization: Bearer <token>" on every outbound request).
func New(token string, opts ...Option) *Client {
	oauthClient := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	oauthClient.Timeout = 30 * time.Second
	c := &Client{
		http:    oauthClient,
		token:   token,
		sem:     make(chan struct{}, defaultConcurrency),
		rate:    newRateGovernor(),
		graphQL: newBreaker("graphql", breakerFailMax, breakerResetTimeout),
		rest:    newBreaker("rest", breakerFailMax, breakerResetTimeout),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// acquire blocks until a concurrency slot is free or ctx is done.
func (c *Client) acquire(ctx context.Context) error {
	select {
	case c.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) release() { <-c.sem }

// Health summarizes the client's current posture for the /health endpoint.
type Health struct {
	RateLimit     ghstats.RateLimitState
	GraphQLBreaker string
	RESTBreaker    string
	Overall        string
}

// pace waits out any rate-limit pacing delay the governor currently
// recommends before a new request is dispatched.
func (c *Client) pace(ctx context.Context) error {
	delay := c.rate.paceDelay(time.Now())
	if delay <= 0 {
		return nil
	}
	slog.Info("client.rate.pace", "delay", delay)
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// graphQLRequest is the shape posted to the GraphQL endpoint.
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

// GraphQL executes a single GraphQL query/variables pair and decodes the
// "data" field into out. It retries transient failures, respects the
// circuit breaker, and paces itself against the rate-limit governor.
func (c *Client) GraphQL(ctx context.Context, query string, variables map[string]any, out any) error {
	if !c.graphQL.allow() {
		return &ghxerrors.BreakerOpenError{Upstream: "graphql"}
	}
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()

	start := time.Now()
	err := retry.Do(
		func() error {
			if err := c.pace(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			return c.doGraphQL(ctx, query, variables, out)
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(10*time.Second),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("client.graphql.retry", "attempt", n, "err", err)
		}),
		retry.LastErrorOnly(true),
	)
	if c.metrics != nil {
		c.metrics.ObserveRequest("graphql", statusFromErr(err), time.Since(start))
	}
	if err != nil {
		c.graphQL.recordFailure()
		if c.metrics != nil {
			c.metrics.ObserveBreakerState("graphql", c.graphQL.currentState().String())
		}
		return err
	}
	c.graphQL.recordSuccess()
	return nil
}

func (c *Client) doGraphQL(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return retry.Unrecoverable(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, graphQLEndpoint, bytes.NewReader(body))
	if err != nil {
		return retry.Unrecoverable(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.observeRateHeaders(resp)

	if resp.StatusCode == http.StatusUnauthorized {
		return retry.Unrecoverable(&ghxerrors.AuthError{Reason: "github rejected token"})
	}
	if resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0" {
		return retry.Unrecoverable(&ghxerrors.RateLimitError{ResetEpoch: c.rateResetEpoch()})
	}
	if resp.StatusCode >= 500 {
		return &ghxerrors.TransientUpstreamError{Op: "graphql", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		return retry.Unrecoverable(fmt.Errorf("graphql http %d: %s", resp.StatusCode, string(b)))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphQLError  `json:"errors"`
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return retry.Unrecoverable(fmt.Errorf("decode graphql envelope: %w", err))
	}
	if len(envelope.Errors) > 0 {
		for _, e := range envelope.Errors {
			if strings.Contains(strings.ToLower(e.Message), "rate limit") {
				return &ghxerrors.RateLimitError{ResetEpoch: c.rateResetEpoch()}
			}
		}
		return retry.Unrecoverable(fmt.Errorf("graphql: %s", envelope.Errors[0].Message))
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return retry.Unrecoverable(fmt.Errorf("decode graphql data: %w", err))
		}
	}
	return nil
}

// REST issues a bounded GET against the REST v3 API, handling 202 polling
// (statistics endpoints that compute asynchronously) and Retry-After.
func (c *Client) REST(ctx context.Context, path string, out any) error {
	if !c.rest.allow() {
		return &ghxerrors.BreakerOpenError{Upstream: "rest"}
	}
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()

	start := time.Now()
	err := retry.Do(
		func() error {
			if err := c.pace(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			return c.doREST(ctx, path, out)
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(10*time.Second),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("client.rest.retry", "attempt", n, "path", path, "err", err)
		}),
		retry.LastErrorOnly(true),
	)
	if c.metrics != nil {
		c.metrics.ObserveRequest(path, statusFromErr(err), time.Since(start))
	}
	if err != nil {
		c.rest.recordFailure()
		if c.metrics != nil {
			c.metrics.ObserveBreakerState("rest", c.rest.currentState().String())
		}
		return err
	}
	c.rest.recordSuccess()
	return nil
}

func (c *Client) doREST(ctx context.Context, path string, out any) error {
	url := restBase + path
	for attempt := 0; attempt < restPollAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return retry.Unrecoverable(err)
		}
		req.Header.Set("Accept", acceptDefault)

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		c.observeRateHeaders(resp)

		switch {
		case resp.StatusCode == http.StatusAccepted:
			// Statistics endpoints return 202 while GitHub computes the
			// result in the background; poll until it's ready.
			resp.Body.Close()
			wait := restPollInterval
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil {
					wait = time.Duration(secs) * time.Second
					if wait > maxRetryAfter {
						wait = maxRetryAfter
					}
				}
			}
			t := time.NewTimer(wait)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			}
			continue
		case resp.StatusCode == http.StatusUnauthorized:
			resp.Body.Close()
			return retry.Unrecoverable(&ghxerrors.AuthError{Reason: "github rejected token"})
		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return retry.Unrecoverable(&ghxerrors.NotFoundError{Resource: path})
		case resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
			resp.Body.Close()
			return retry.Unrecoverable(&ghxerrors.RateLimitError{ResetEpoch: c.rateResetEpoch()})
		case resp.StatusCode >= 500:
			resp.Body.Close()
			return &ghxerrors.TransientUpstreamError{Op: "rest", Err: fmt.Errorf("status %d", resp.StatusCode)}
		case resp.StatusCode >= 400:
			b, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return retry.Unrecoverable(fmt.Errorf("rest http %d: %s", resp.StatusCode, string(b)))
		default:
			defer resp.Body.Close()
			if out != nil {
				if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
					return retry.Unrecoverable(fmt.Errorf("decode rest body: %w", err))
				}
			}
			return nil
		}
	}
	return &ghxerrors.TransientUpstreamError{Op: "rest", Err: fmt.Errorf("exceeded %d polling attempts for %s", restPollAttempts, path)}
}

func (c *Client) observeRateHeaders(resp *http.Response) {
	remaining := resp.Header.Get("X-RateLimit-Remaining")
	limit := resp.Header.Get("X-RateLimit-Limit")
	reset := resp.Header.Get("X-RateLimit-Reset")
	if remaining == "" || reset == "" {
		return
	}
	rem, err1 := strconv.Atoi(remaining)
	lim, _ := strconv.Atoi(limit)
	sec, err2 := strconv.ParseInt(reset, 10, 64)
	if err1 != nil || err2 != nil {
		return
	}
	c.rate.observe(rem, lim, sec)
	if c.metrics != nil {
		c.metrics.ObserveRateLimit(rem, lim)
	}
}

func (c *Client) rateResetEpoch() int64 {
	snap, _ := c.rate.snapshotNow()
	return snap.ResetEpoch
}

// RateLimitSnapshot exposes the last observed GitHub rate-limit headers, for
// callers (httpapi) that need the raw numbers rather than the classified
// state HealthSnapshot returns.
func (c *Client) RateLimitSnapshot() (ghstats.RateLimitSnapshot, bool) {
	return c.rate.snapshotNow()
}

// HealthSnapshot reports the combined rate-limit and breaker posture.
func (c *Client) HealthSnapshot() Health {
	rl := c.rate.state()
	gqlState := c.graphQL.currentState().String()
	restState := c.rest.currentState().String()
	overall := "ok"
	if gqlState == "open" || restState == "open" || rl == "critical" {
		overall = "unavailable"
	} else if gqlState == "half-open" || restState == "half-open" || rl == "degraded" {
		overall = "degraded"
	}
	return Health{RateLimit: rl, GraphQLBreaker: gqlState, RESTBreaker: restState, Overall: overall}
}

func statusFromErr(err error) int {
	if err == nil {
		return 200
	}
	return ghxerrors.StatusCode(err)
}
