package models

import "time"

// RateLimitResult is the outcome of one admission check.
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds, set when denied
}

// RateLimitExceededResponse is the API response when the limit is exceeded.
type RateLimitExceededResponse struct {
	Error      string `json:"error"` // "rate_limit_exceeded"
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"` // seconds
}

// NewIPRateLimitKey builds the bucket key for a client IP.
func NewIPRateLimitKey(ip string) string {
	return "rl:ip:" + SanitizeKeySegment(ip)
}
