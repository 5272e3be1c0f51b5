// Package errors provides the standardized error taxonomy for the
// search and chat pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Bad or empty input from the UI. Surfaced immediately, no fallback.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"

	// An external provider failed (network, timeout, non-success status,
	// missing credentials). Never surfaced raw; the caller applies its
	// documented fallback.
	ErrCodeProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	ErrCodeSearchTimeout       ErrorCode = "SEARCH_PROVIDER_TIMEOUT"
	ErrCodeLLMTimeout          ErrorCode = "LLM_TIMEOUT"

	// A provider returned data the pipeline cannot use (e.g. a candidate
	// without an id). Dropped and logged at the point of detection.
	ErrCodeInternalInconsistency ErrorCode = "INTERNAL_INCONSISTENCY"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewValidationError creates an error for bad client input.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidation,
		Message:   "Invalid request input",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderUnavailableError creates an error for a failed provider call.
func NewProviderUnavailableError(provider string, err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeProviderUnavailable,
		Message:   fmt.Sprintf("Provider '%s' unavailable", provider),
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchTimeoutError creates an error for a search provider timeout.
func NewSearchTimeoutError(provider string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   fmt.Sprintf("Search provider '%s' timeout", provider),
		Details:   "call exceeded configured timeout",
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMTimeoutError creates an error for a language-model provider timeout.
func NewLLMTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMTimeout,
		Message:   "Language model call timeout",
		Details:   "call exceeded configured timeout",
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalInconsistencyError creates an error for unusable provider data.
func NewInternalInconsistencyError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternalInconsistency,
		Message:   "Inconsistent provider data",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// IsProviderUnavailable reports whether err represents any provider failure,
// including the timeout sub-codes.
func IsProviderUnavailable(err error) bool {
	var stdErr *StandardError
	if !errors.As(err, &stdErr) {
		return false
	}
	switch stdErr.Code {
	case ErrCodeProviderUnavailable, ErrCodeSearchTimeout, ErrCodeLLMTimeout:
		return true
	}
	return false
}

// IsValidation reports whether err is a client input validation error.
func IsValidation(err error) bool {
	var stdErr *StandardError
	return errors.As(err, &stdErr) && stdErr.Code == ErrCodeValidation
}
