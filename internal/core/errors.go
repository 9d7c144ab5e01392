package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrRateLimited is the sentinel wrapped by RateLimitError.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimitError reports a call abandoned after the retry budget was spent
// on upstream throttling.
type RateLimitError struct {
	Class    string
	Attempts int
	LastHint time.Duration
}

func (e *RateLimitError) Error() string {
	msg := fmt.Sprintf("rate limited on %s after %d attempts; retrying later may succeed", e.Class, e.Attempts)
	if e.LastHint > 0 {
		msg += fmt.Sprintf(" (server asked for %s)", e.LastHint)
	}
	return msg
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// ThrottledError signals a single throttled upstream response (HTTP 429).
// The retry wrapper consumes it; it never reaches callers.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("throttled by upstream, retry after %s", e.RetryAfter)
	}
	return "throttled by upstream"
}

// NotFoundError reports a resolver query that matched nothing.
type NotFoundError struct {
	Query      string
	Type       ResourceType
	Candidates []string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("no %s found for %q", e.Type, e.Query)
	if len(e.Candidates) > 0 {
		msg += fmt.Sprintf(" (close matches: %s)", strings.Join(e.Candidates, ", "))
	}
	return msg
}

// AmbiguousError reports multiple matches where the caller required
// exactly one.
type AmbiguousError struct {
	Query   string
	Type    ResourceType
	Matches []Resolution
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%d %ss match %q; pass --first or a more specific query", len(e.Matches), e.Type, e.Query)
}

// IsNotFound reports whether err is a resolver not-found failure.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsRateLimited reports whether err is a spent-retry-budget failure.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
