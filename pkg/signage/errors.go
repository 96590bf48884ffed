package signage

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrContentNotFound indicates a content item was not found
	ErrContentNotFound = errors.New("content not found")

	// ErrFeedNotFound indicates a feed was not found
	ErrFeedNotFound = errors.New("feed not found")

	// ErrKindNotFound indicates an unregistered or non-content kind name
	ErrKindNotFound = errors.New("unrecognized content kind")

	// ErrNoDefaultKind indicates the process-wide default kind is missing or
	// invalid; new-content requests cannot be served at all
	ErrNoDefaultKind = errors.New("no default content kind configured")

	// ErrNotModified indicates the caller already holds an equally fresh
	// rendering of the content
	ErrNotModified = errors.New("content not modified")

	// ErrActionNotSupported indicates an unknown action name or a handler
	// that declined to act
	ErrActionNotSupported = errors.New("unable to perform action")

	// ErrNotAuthorized indicates the capability gate denied the operation
	ErrNotAuthorized = errors.New("not authorized")
)

// ContentError represents an error related to content operations
type ContentError struct {
	ContentID uuid.UUID
	Op        string
	Err       error
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("content operation %s failed for content %s: %v", e.Op, e.ContentID, e.Err)
}

func (e *ContentError) Unwrap() error {
	return e.Err
}

// RenderError represents a renderer failure. Renderer errors propagate; they
// are never replaced with empty output.
type RenderError struct {
	ContentID uuid.UUID
	Kind      string
	Err       error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering %s content %s: %v", e.Kind, e.ContentID, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// ValidationError carries field-level binding and invariant errors. It maps
// to a 422 response with the form re-rendered.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError creates an empty validation error ready to collect
// field messages.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add records a message against a field.
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// Any reports whether any field message has been recorded.
func (e *ValidationError) Any() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s %s", f, strings.Join(e.Fields[f], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
