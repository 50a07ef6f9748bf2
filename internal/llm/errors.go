package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an LLMError.
type ErrorKind string

const (
	ErrorTypeNetwork    ErrorKind = "network"
	ErrorTypeAPI        ErrorKind = "api"
	ErrorTypeValidation ErrorKind = "validation"
	ErrorTypeTimeout    ErrorKind = "timeout"
	ErrorTypeParse      ErrorKind = "parse"
)

// LLMError is the error returned by callers and GenerateStructured.
// Message is meant for the user, Err keeps the cause.
type LLMError struct {
	Type    ErrorKind
	Message string
	Code    int // provider HTTP status, 0 if no response arrived
	Err     error
}

func (e *LLMError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("LLM %s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("LLM %s error: %s", e.Type, e.Message)
}

func (e *LLMError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the same request may succeed later: transport
// failures, timeouts, rate limits and provider-side 5xx answers.
func (e *LLMError) Retryable() bool {
	switch e.Type {
	case ErrorTypeNetwork, ErrorTypeTimeout:
		return true
	case ErrorTypeAPI:
		return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
	}
	return false
}

// IsRetryable reports whether err wraps a retryable LLMError.
func IsRetryable(err error) bool {
	var llmErr *LLMError
	return errors.As(err, &llmErr) && llmErr.Retryable()
}

func NewNetworkError(err error) *LLMError {
	return &LLMError{Type: ErrorTypeNetwork, Message: "could not reach the test generation service", Err: err}
}

func NewAPIError(code int, message string) *LLMError {
	return &LLMError{Type: ErrorTypeAPI, Code: code, Message: "model provider error: " + message}
}

// NewValidationError reports generated output that failed validation on
// every attempt.
func NewValidationError(message string, err error) *LLMError {
	return &LLMError{Type: ErrorTypeValidation, Message: "Validation failed: " + message, Err: err}
}

func NewTimeoutError() *LLMError {
	return &LLMError{Type: ErrorTypeTimeout, Message: "test generation timed out"}
}

// NewParseError keeps the first 200 bytes of the unparseable reply.
func NewParseError(content string, err error) *LLMError {
	return &LLMError{Type: ErrorTypeParse, Message: "reply is not valid JSON: " + truncate(content, 200), Err: err}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
