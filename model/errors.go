package model

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ProviderError is the single normalized error type surfaced for any failure
// originating from a provider API call. Translation never loses the original
// message text; the provider's own error stays reachable through Unwrap.
type ProviderError struct {
	Message    string
	StatusCode int // 0 when no HTTP status was available
	ModelName  string
	ModelID    string
	Retryable  bool
	RetryAfter *time.Duration
	Err        error // original provider-specific error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.ModelName != "" {
		return fmt.Sprintf("%s (%s): %s", e.ModelName, e.ModelID, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying provider error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a ProviderError with message text only.
func NewProviderError(message, modelName, modelID string, err error) *ProviderError {
	return &ProviderError{
		Message:   message,
		ModelName: modelName,
		ModelID:   modelID,
		Err:       err,
	}
}

// NewStatusError creates a ProviderError that preserves the HTTP status code
// and raw response text. Rate-limit and server errors are marked retryable.
func NewStatusError(statusCode int, responseText, modelName, modelID string, err error) *ProviderError {
	pe := &ProviderError{
		Message:    responseText,
		StatusCode: statusCode,
		ModelName:  modelName,
		ModelID:    modelID,
		Err:        err,
	}
	switch statusCode {
	case http.StatusTooManyRequests:
		pe.Retryable = true
		retryAfter := defaultRetryAfter
		pe.RetryAfter = &retryAfter
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		pe.Retryable = true
	}
	return pe
}

// defaultRetryAfter is used for rate limits when the provider does not expose
// a retry-after hint.
const defaultRetryAfter = 60 * time.Second

// IsRateLimitError checks if an error is a provider rate-limit error.
func IsRateLimitError(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// IsRetryableError checks if an error is worth retrying.
func IsRetryableError(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// ExtractRetryAfter extracts the retry-after duration from an error, if any.
func ExtractRetryAfter(err error) *time.Duration {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.RetryAfter
	}
	return nil
}
