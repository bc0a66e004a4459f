// Package errors provides unified error handling for the transcription
// pipeline. It implements structured error types with machine-readable
// categories, user-facing messages, and retryable detection. Provider-level
// failures are translated into these types at the orchestrator boundary;
// upper layers never inspect raw network or HTTP detail.
package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error category.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message for logs.
	Message string `json:"message"`
	// UserMessage is the actionable message surfaced in the result popup.
	UserMessage string `json:"user_message,omitempty"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Common Error Constructors ---

// Configuration creates an AppError for a missing credential or provider.
// The user message directs the user to the extension settings.
func Configuration(what string) *AppError {
	return &AppError{
		Code:        ErrCodeConfiguration,
		Message:     fmt.Sprintf("%s not configured", what),
		UserMessage: fmt.Sprintf("%s is not configured. Please set it in the extension settings.", what),
		HTTPStatus:  http.StatusPreconditionFailed,
		Retryable:   false,
		Details:     map[string]any{"missing": what},
	}
}

// Authentication creates an AppError for a rejected credential.
func Authentication(provider string) *AppError {
	return &AppError{
		Code:        ErrCodeAuthentication,
		Message:     "Authentication failed. Please check your API key.",
		UserMessage: "Your API key appears to be invalid. Please check your settings.",
		HTTPStatus:  http.StatusUnauthorized,
		Retryable:   false,
		Details:     map[string]any{"provider": provider},
	}
}

// QuotaExceeded creates an AppError for a provider-reported usage limit.
func QuotaExceeded(provider string) *AppError {
	return &AppError{
		Code:        ErrCodeQuotaExceeded,
		Message:     fmt.Sprintf("Your %s API key has reached its usage limit.", provider),
		UserMessage: fmt.Sprintf("Your API key has reached its usage limit. Please check your %s account billing details or update your API key.", provider),
		HTTPStatus:  http.StatusTooManyRequests,
		Retryable:   false,
		Details:     map[string]any{"provider": provider},
	}
}

// InvalidRequest creates an AppError for a request the provider rejected.
func InvalidRequest(message string) *AppError {
	if message == "" {
		message = "Invalid request to the API"
	}
	return &AppError{
		Code:        ErrCodeInvalidRequest,
		Message:     message,
		UserMessage: "There was a problem with the request. Please check your settings.",
		HTTPStatus:  http.StatusBadRequest,
		Retryable:   false,
	}
}

// Network creates an AppError for a connection-level failure.
func Network(provider string, cause error) *AppError {
	return &AppError{
		Code:        ErrCodeNetwork,
		Message:     fmt.Sprintf("Unable to connect to %s.", provider),
		UserMessage: "There was a network error. Please try again.",
		HTTPStatus:  http.StatusServiceUnavailable,
		Retryable:   true,
		Details:     map[string]any{"provider": provider},
		Cause:       cause,
	}
}

// Provider creates an AppError for an uncategorized provider failure.
func Provider(provider, message string) *AppError {
	if message == "" {
		message = "API request failed"
	}
	return &AppError{
		Code:        ErrCodeProvider,
		Message:     message,
		UserMessage: "There was an error processing your request. Please try again.",
		HTTPStatus:  http.StatusBadGateway,
		Retryable:   true,
		Details:     map[string]any{"provider": provider},
	}
}

// MalformedResponse creates an AppError for a processing response that did
// not contain the expected sections.
func MalformedResponse(provider string) *AppError {
	return &AppError{
		Code:        ErrCodeMalformedResponse,
		Message:     "response was not in the expected format",
		UserMessage: "The AI response was not in the expected format. Please try transcribing again.",
		HTTPStatus:  http.StatusBadGateway,
		Retryable:   false,
		Details:     map[string]any{"provider": provider},
	}
}

// InvalidInput creates an AppError for invalid local input.
func InvalidInput(field, reason string) *AppError {
	return &AppError{
		Code:       ErrCodeInvalidInput,
		Message:    fmt.Sprintf("invalid %s: %s", field, reason),
		HTTPStatus: http.StatusBadRequest,
		Retryable:  false,
		Details:    map[string]any{"field": field},
	}
}

// Storage creates an AppError for a settings or cache storage failure.
func Storage(op string, cause error) *AppError {
	return &AppError{
		Code:       ErrCodeStorage,
		Message:    fmt.Sprintf("storage %s failed", op),
		HTTPStatus: http.StatusInternalServerError,
		Retryable:  true,
		Details:    map[string]any{"op": op},
		Cause:      cause,
	}
}

// Internal creates an AppError for an unexpected internal failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code:        ErrCodeInternal,
		Message:     "An unexpected error occurred.",
		UserMessage: "There was an error processing your request. Please try again.",
		HTTPStatus:  http.StatusInternalServerError,
		Retryable:   false,
		Cause:       cause,
	}
}
