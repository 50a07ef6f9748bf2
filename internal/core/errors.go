package core

import (
	"errors"
	"fmt"
	"strings"
)

// User-facing messages.
const (
	InvalidFileTypeMessage  = "Invalid file type. Please upload a .doc or .docx file."
	EmptyExtractionMessage  = "No valid requirements found in document"
	GenerationFallbackError = "Failed to generate test cases"
)

var (
	// ErrWorkflowReset is returned by Generate when the run was reset or
	// torn down before it completed.
	ErrWorkflowReset = errors.New("workflow reset before completion")

	// ErrControllerClosed is returned by every operation after Close.
	ErrControllerClosed = errors.New("workflow controller closed")

	// ErrNoGateway is reported when no generation gateway is configured.
	ErrNoGateway = errors.New("generation gateway not configured")
)

// ValidationError represents a validation failure.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// InvalidFileTypeError is returned when an uploaded file is not a Word document.
type InvalidFileTypeError struct {
	Name string
}

func (e *InvalidFileTypeError) Error() string {
	return InvalidFileTypeMessage
}

// EmptyExtractionError is returned when no requirement survives extraction.
type EmptyExtractionError struct{}

func (e *EmptyExtractionError) Error() string {
	return EmptyExtractionMessage
}

// DecodeError represents a failure to turn a document into text.
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// GenerationFailure wraps an opaque gateway failure.
type GenerationFailure struct {
	Message string
	Err     error
}

// NewGenerationFailure maps a gateway error to its user-facing message,
// falling back to GenerationFallbackError when the error carries none.
func NewGenerationFailure(err error) *GenerationFailure {
	msg := ""
	if err != nil {
		msg = strings.TrimSpace(err.Error())
	}
	if msg == "" {
		msg = GenerationFallbackError
	}
	return &GenerationFailure{Message: msg, Err: err}
}

func (e *GenerationFailure) Error() string {
	return e.Message
}

func (e *GenerationFailure) Unwrap() error {
	return e.Err
}

// Retryable reports whether re-invoking the gateway with the same
// requirements may succeed. Gateway failures always are.
func (e *GenerationFailure) Retryable() bool {
	return true
}

// ClipboardFailure is a best-effort clipboard copy failure. It is logged only.
type ClipboardFailure struct {
	Err error
}

func (e *ClipboardFailure) Error() string {
	return fmt.Sprintf("copy to clipboard: %v", e.Err)
}

func (e *ClipboardFailure) Unwrap() error {
	return e.Err
}

// ExportFailure is a best-effort artifact write failure. It is logged only.
type ExportFailure struct {
	Path   string
	Format string
	Err    error
}

func (e *ExportFailure) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("export %s to %s: %v", e.Format, e.Path, e.Err)
	}
	return fmt.Sprintf("export %s: %v", e.Format, e.Err)
}

func (e *ExportFailure) Unwrap() error {
	return e.Err
}

// TransitionError is returned when an operation is not allowed in the
// current workflow state.
type TransitionError struct {
	Op    string
	State State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s not allowed in state %s", e.Op, e.State)
}

// LLMError represents an LLM operation error.
type LLMError struct {
	Task    string
	Message string
	Err     error
}

func (e *LLMError) Error() string {
	return fmt.Sprintf("LLM task %s: %s", e.Task, e.Message)
}

func (e *LLMError) Unwrap() error {
	return e.Err
}
