// Package errors defines the typed error taxonomy returned by the client,
// collection, cache and storage layers. Every exported type implements
// error and StatusCode() so the httpapi layer can translate a failure into
// a response without inspecting error strings.
package errors

import (
	"fmt"
	stderrors "errors"
)

// StatusCoder is implemented by every error in this package.
type StatusCoder interface {
	StatusCode() int
}

// ConfigError marks a problem with configuration loading or validation:
// missing required fields, malformed YAML, unparsable durations.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) StatusCode() int { return 500 }

// ValidationError marks a malformed or disallowed caller input: bad
// username, unsupported collector name, invalid webhook condition.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) StatusCode() int { return 400 }

// AuthError marks a rejected or missing credential.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string { return fmt.Sprintf("auth: %s", e.Reason) }

func (e *AuthError) StatusCode() int { return 401 }

// RateLimitError marks a GitHub-reported rate-limit exhaustion. ResetEpoch
// is the unix time the caller should retry after, when known.
type RateLimitError struct {
	ResetEpoch int64
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exhausted, resets at %d", e.ResetEpoch)
}

func (e *RateLimitError) StatusCode() int { return 429 }

// TransientUpstreamError marks a retryable upstream failure (5xx, network
// error, or context deadline) that survived all retry attempts.
type TransientUpstreamError struct {
	Op  string
	Err error
}

func (e *TransientUpstreamError) Error() string {
	return fmt.Sprintf("upstream %s failed: %v", e.Op, e.Err)
}

func (e *TransientUpstreamError) Unwrap() error { return e.Err }

func (e *TransientUpstreamError) StatusCode() int { return 502 }

// BreakerOpenError marks a request rejected because the circuit breaker for
// an upstream is currently open.
type BreakerOpenError struct {
	Upstream string
}

func (e *BreakerOpenError) Error() string {
	return fmt.Sprintf("circuit breaker open for %s", e.Upstream)
}

func (e *BreakerOpenError) StatusCode() int { return 503 }

// NotFoundError marks a missing user, repository or resource.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("not found: %s", e.Resource) }

func (e *NotFoundError) StatusCode() int { return 404 }

// StatusCode resolves the best HTTP status code for any error: the error's
// own StatusCode() if it implements StatusCoder, else 500.
func StatusCode(err error) int {
	if err == nil {
		return 200
	}
	var sc StatusCoder
	if stderrors.As(err, &sc) {
		return sc.StatusCode()
	}
	return 500
}
