package shared

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrRateLimited        = fmt.Errorf("rate limited")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")

	// Matching and tagging outcomes
	ErrNoMatch           = fmt.Errorf("no match")
	ErrAmbiguousInput    = fmt.Errorf("ambiguous selection")
	ErrUnsupportedFormat = fmt.Errorf("unsupported file format")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// RateLimitError reports that a remote service refused a request because of rate limiting.
type RateLimitError struct {
	Service    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: rate limited (retry after %s)", e.Service, e.RetryAfter)
	}
	return fmt.Sprintf("%s: rate limited", e.Service)
}

// Is reports a match against [ErrRateLimited].
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// HTTPStatusError is returned for non-2xx responses that are not rate limits.
type HTTPStatusError struct {
	Service    string
	URL        string
	StatusCode int
	Detail     string
}

func (e *HTTPStatusError) Error() string {
	msg := fmt.Sprintf("%s API error: status %d (%s)", e.Service, e.StatusCode, e.URL)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap maps the status onto the matching sentinel so callers can use [errors.Is].
func (e *HTTPStatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrNotAuthenticated
	case http.StatusNotFound:
		return ErrPlaylistNotFound
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		return ErrServiceUnavailable
	default:
		return ErrAPIRequest
	}
}

// IsRateLimited reports whether err is, or wraps, a rate limit refusal.
func IsRateLimited(err error) bool {
	return err != nil && errors.Is(err, ErrRateLimited)
}
