package models

import (
	"fmt"
	"time"
)

// ErrRateLimit is returned by vendors when the api answers 429.
type ErrRateLimit struct {
	ResetAt   time.Time
	RetryHint string
}

func NewRateLimitError(resetAt time.Time, hint string) error {
	return &ErrRateLimit{ResetAt: resetAt, RetryHint: hint}
}

func (e *ErrRateLimit) Error() string {
	if e.ResetAt.IsZero() {
		return fmt.Sprintf("rate limited by vendor: %v", e.RetryHint)
	}
	return fmt.Sprintf("rate limited by vendor, reset at: %v, %v", e.ResetAt.Format(time.RFC3339), e.RetryHint)
}
