package artefact

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ArtefactError is the base error type for all generation pipeline errors.
// It provides context about the error including provider, model, and status
// code. All specific error types embed this base type.
type ArtefactError struct {
	// Message is the human-readable error message.
	Message string

	// StatusCode is the HTTP status code (if applicable).
	StatusCode int

	// Provider is the LLM provider where the error occurred.
	Provider string

	// Model is the model that was being used when the error occurred.
	Model string

	// OriginalError is the underlying error that caused this error.
	OriginalError error
}

// Error implements the error interface.
// Returns a formatted error message with provider context when available.
func (e *ArtefactError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("[%s] %s", e.Provider, e.Message)
	}
	return e.Message
}

// Unwrap returns the original underlying error.
// This enables error chain traversal using errors.Is() and errors.As().
func (e *ArtefactError) Unwrap() error {
	return e.OriginalError
}

// IsRetryable returns true if this error represents a retryable condition.
// Base implementation returns false; specific error types override this.
func (e *ArtefactError) IsRetryable() bool {
	return false
}

// APIError represents a general API error from the LLM provider.
// This is used for errors that don't fit into more specific categories.
type APIError struct {
	ArtefactError
}

// NewAPIError creates a new API error with the given details.
func NewAPIError(message string, statusCode int, provider string, err error) *APIError {
	return &APIError{
		ArtefactError: ArtefactError{
			Message:       message,
			StatusCode:    statusCode,
			Provider:      provider,
			OriginalError: err,
		},
	}
}

// ConfigError represents a configuration problem detected before any network
// call: a missing secret or an unusable model configuration. Never retried.
type ConfigError struct {
	ArtefactError
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, provider string, err error) *ConfigError {
	return &ConfigError{
		ArtefactError: ArtefactError{
			Message:       message,
			Provider:      provider,
			OriginalError: err,
		},
	}
}

// AuthenticationError represents an authentication failure (401).
// This occurs when API keys are invalid, missing, or expired.
type AuthenticationError struct {
	ArtefactError
}

// NewAuthenticationError creates a new authentication error.
func NewAuthenticationError(message string, provider string, err error) *AuthenticationError {
	return &AuthenticationError{
		ArtefactError: ArtefactError{
			Message:       message,
			StatusCode:    401,
			Provider:      provider,
			OriginalError: err,
		},
	}
}

// PermissionError represents a permission denied error (403).
type PermissionError struct {
	ArtefactError
}

// NewPermissionError creates a new permission error.
func NewPermissionError(message string, provider string, err error) *PermissionError {
	return &PermissionError{
		ArtefactError: ArtefactError{
			Message:       message,
			StatusCode:    403,
			Provider:      provider,
			OriginalError: err,
		},
	}
}

// RateLimitError represents a rate limit exceeded error (429).
// This is retryable after the specified retry-after duration.
type RateLimitError struct {
	ArtefactError

	// RetryAfter specifies how long to wait before retrying.
	RetryAfter time.Duration
}

// NewRateLimitError creates a new rate limit error.
func NewRateLimitError(message string, provider string, retryAfter time.Duration, err error) *RateLimitError {
	return &RateLimitError{
		ArtefactError: ArtefactError{
			Message:       message,
			StatusCode:    429,
			Provider:      provider,
			OriginalError: err,
		},
		RetryAfter: retryAfter,
	}
}

// IsRetryable returns true for rate limit errors.
func (e *RateLimitError) IsRetryable() bool {
	return true
}

// InvalidRequestError represents an invalid request error (400).
// This occurs when the request parameters are malformed or invalid.
// Retrying a malformed request cannot succeed, so it is never retried.
type InvalidRequestError struct {
	ArtefactError
}

// NewInvalidRequestError creates a new invalid request error.
func NewInvalidRequestError(message string, provider string, err error) *InvalidRequestError {
	return &InvalidRequestError{
		ArtefactError: ArtefactError{
			Message:       message,
			StatusCode:    400,
			Provider:      provider,
			OriginalError: err,
		},
	}
}

// TimeoutError represents a request timeout error.
// This is retryable as it may be due to temporary network issues.
type TimeoutError struct {
	ArtefactError
}

// NewTimeoutError creates a new timeout error.
func NewTimeoutError(message string, provider string, err error) *TimeoutError {
	return &TimeoutError{
		ArtefactError: ArtefactError{
			Message:       message,
			StatusCode:    0, // No HTTP status for timeouts
			Provider:      provider,
			OriginalError: err,
		},
	}
}

// IsRetryable returns true for timeout errors.
func (e *TimeoutError) IsRetryable() bool {
	return true
}

// ServiceUnavailableError represents a server-side failure (500, 502, 503,
// or 504). Retryable, as the service may recover shortly.
type ServiceUnavailableError struct {
	ArtefactError
}

// NewServiceUnavailableError creates a new service unavailable error.
func NewServiceUnavailableError(message string, provider string, err error) *ServiceUnavailableError {
	return &ServiceUnavailableError{
		ArtefactError: ArtefactError{
			Message:       message,
			StatusCode:    503,
			Provider:      provider,
			OriginalError: err,
		},
	}
}

// IsRetryable returns true for service unavailable errors.
func (e *ServiceUnavailableError) IsRetryable() bool {
	return true
}

// ExtractionError represents an unexpected response shape: the HTTP call
// succeeded but the provider-specific text path was absent. Never retried;
// a malformed-but-200 response will not change on retry.
type ExtractionError struct {
	ArtefactError

	// Keys lists the top-level keys of the response object for diagnosis.
	Keys []string
}

// NewExtractionError creates a new extraction error.
func NewExtractionError(message string, provider string, keys []string) *ExtractionError {
	return &ExtractionError{
		ArtefactError: ArtefactError{
			Message:  message,
			Provider: provider,
		},
		Keys: keys,
	}
}

// TopLevelKeys returns the top-level keys of a raw JSON object body.
// Used by response extractors to report what a malformed response did
// contain. Returns nil if the body is not a JSON object.
func TopLevelKeys(body []byte) []string {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// ParseProviderError parses a provider error response into a typed error.
// It maps HTTP status codes to the error taxonomy and attempts to extract a
// structured message from JSON error bodies.
func ParseProviderError(provider string, statusCode int, body []byte, err error) error {
	var errorResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}

	message := ""
	if jsonErr := json.Unmarshal(body, &errorResp); jsonErr == nil && errorResp.Error.Message != "" {
		message = errorResp.Error.Message
	} else {
		message = string(body)
	}

	if message == "" {
		message = fmt.Sprintf("HTTP %d error", statusCode)
	}

	switch statusCode {
	case 401:
		return NewAuthenticationError(message, provider, err)

	case 403:
		return NewPermissionError(message, provider, err)

	case 429:
		return NewRateLimitError(message, provider, 0, err)

	case 400:
		return NewInvalidRequestError(message, provider, err)

	case 500, 502, 503, 504:
		// Server errors are retryable; preserve the actual status code.
		serviceErr := NewServiceUnavailableError(message, provider, err)
		serviceErr.StatusCode = statusCode
		return serviceErr

	default:
		return NewAPIError(message, statusCode, provider, err)
	}
}

// errorPrefix is the marker legacy callers branch on. The core returns typed
// errors; this string form exists only for presentation-layer compatibility.
const errorPrefix = "Error"

// ErrorString renders an error in the legacy "Error: ..." form used by
// callers that consume a single string result.
func ErrorString(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", errorPrefix, err.Error())
}

// IsErrorString reports whether a string result produced by ErrorString
// denotes a failure.
func IsErrorString(s string) bool {
	return strings.HasPrefix(s, errorPrefix+":")
}
