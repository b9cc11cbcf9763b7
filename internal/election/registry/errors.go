package registry

import (
	"errors"
	"fmt"
)

// ErrorCategory defines the normalized failure taxonomy for upstream calls.
type ErrorCategory string

const (
	// ErrorTimeout indicates the registry took too long to respond
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates the registry returned a body we cannot read
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorAuthentication indicates the registry refused our request
	ErrorAuthentication ErrorCategory = "authentication"

	// ErrorProviderOutage indicates the registry is unreachable or failing
	ErrorProviderOutage ErrorCategory = "provider_outage"

	// ErrorNotFound indicates the registry has no record for the ID
	ErrorNotFound ErrorCategory = "not_found"

	// ErrorRateLimited indicates the registry is throttling us
	ErrorRateLimited ErrorCategory = "rate_limited"

	// ErrorInternal indicates an unexpected failure on our side
	ErrorInternal ErrorCategory = "internal"
)

// ProviderError wraps upstream failures with normalized categorization.
type ProviderError struct {
	Category   ErrorCategory
	Source     Source
	Message    string
	StatusCode int
	Underlying error
	Retryable  bool
}

func (e *ProviderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("registry %s [%s]: %s: %v", e.Source, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("registry %s [%s]: %s", e.Source, e.Category, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Underlying
}

// NewProviderError creates a new normalized provider error.
func NewProviderError(category ErrorCategory, source Source, message string, underlying error) *ProviderError {
	retryable := category == ErrorTimeout ||
		category == ErrorProviderOutage ||
		category == ErrorRateLimited

	return &ProviderError{
		Category:   category,
		Source:     source,
		Message:    message,
		Underlying: underlying,
		Retryable:  retryable,
	}
}

// IsRetryable reports whether err is a transient upstream failure. Nothing in
// this service retries; the flag is surfaced to callers and logs.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error.
func GetCategory(err error) ErrorCategory {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ErrorInternal
}

// categoryForStatus maps a non-2xx upstream status to a category.
func categoryForStatus(status int) ErrorCategory {
	switch {
	case status == 404:
		return ErrorNotFound
	case status == 429:
		return ErrorRateLimited
	case status == 401 || status == 403:
		return ErrorAuthentication
	case status >= 500:
		return ErrorProviderOutage
	default:
		return ErrorBadData
	}
}
