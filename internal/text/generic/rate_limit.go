package generic

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
)

// RateLimiter is a vendor agnostic limiter for tokens.
// It parses rate limit headers and pauses requests when the limit is hit.
type RateLimiter struct {
	remainingHeader string
	resetHeader     string

	mu              *sync.Mutex
	remainingTokens int
	resetTokens     time.Time

	debug bool
}

// NewRateLimiter creates a new limiter using the provided header names.
func NewRateLimiter(remainingHeader, resetHeader string) RateLimiter {
	rl := RateLimiter{
		remainingHeader: strings.ToLower(remainingHeader),
		resetHeader:     strings.ToLower(resetHeader),
		mu:              &sync.Mutex{},
	}
	if misc.Truthy(os.Getenv("DEBUG")) || misc.Truthy(os.Getenv("DEBUG_RATE_LIMIT")) {
		rl.debug = true
	}
	return rl
}

// UpdateFromHeaders extracts rate limit information from an HTTP response.
// It resets previous values to avoid stale data.
// If the required headers are missing or malformed an error is returned.
func (r *RateLimiter) UpdateFromHeaders(h http.Header) error {
	if r.remainingHeader == "" || r.resetHeader == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.remainingTokens = 0
	r.resetTokens = time.Time{}

	remStr := h.Get(r.remainingHeader)
	if remStr == "" {
		return fmt.Errorf("missing header '%s'", r.remainingHeader)
	}
	rem, err := strconv.Atoi(remStr)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", r.remainingHeader, err)
	}
	r.remainingTokens = rem

	resetStr := h.Get(r.resetHeader)
	if resetStr == "" {
		return fmt.Errorf("missing header '%s'", r.resetHeader)
	}
	reset, err := parseReset(resetStr)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", r.resetHeader, err)
	}
	r.resetTokens = reset
	return nil
}

// parseReset understands durations (openai), unix timestamps and
// RFC3339 timestamps (anthropic) and plain seconds.
func parseReset(s string) (time.Time, error) {
	if dur, err := time.ParseDuration(s); err == nil {
		return time.Now().Add(dur), nil
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(ts, 0), nil
	}
	if sec, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Now().Add(time.Duration(sec * float64(time.Second))), nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("unknown format: '%v'", s)
}

// ResetAt returns when the token budget resets, zero if unknown.
func (r *RateLimiter) ResetAt() time.Time {
	if r.mu == nil {
		return time.Time{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetTokens
}

// WaitIfNeeded pauses execution when close to the rate limit.
func (r *RateLimiter) WaitIfNeeded(ctx context.Context) {
	if r.remainingHeader == "" || r.mu == nil {
		return
	}
	r.mu.Lock()
	remaining, reset := r.remainingTokens, r.resetTokens
	r.mu.Unlock()
	if remaining > 50 || reset.IsZero() {
		return
	}

	waitDuration := time.Until(reset)
	if waitDuration <= 0 {
		return
	}
	if r.debug {
		ancli.PrintWarn("rate limit reached, waiting " + waitDuration.Round(time.Second).String() + "\n")
	}
	timer := time.NewTimer(waitDuration)
	select {
	case <-ctx.Done():
		timer.Stop()
	case <-timer.C:
	}
}
