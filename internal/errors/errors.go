// Package errors provides comprehensive error types with actionable suggestions
// for the looker-deployer application. Errors include contextual information to
// help operators resolve issues quickly.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors for use with errors.Is().
var (
	// ErrAuth indicates an authentication failure against a Looker instance.
	ErrAuth = errors.New("authentication error")
	// ErrConfig indicates a configuration error.
	ErrConfig = errors.New("configuration error")
	// ErrCreds indicates a credential file (looker.ini) error.
	ErrCreds = errors.New("credentials error")
	// ErrFolder indicates a folder resolution or creation failure.
	ErrFolder = errors.New("folder error")
	// ErrGzr indicates a gzr subprocess failure.
	ErrGzr = errors.New("gzr error")
	// ErrContent indicates a content deployment failure.
	ErrContent = errors.New("content error")
	// ErrConnection indicates a connection promotion failure.
	ErrConnection = errors.New("connection error")
	// ErrAPI indicates a Looker API failure.
	ErrAPI = errors.New("api error")
	// ErrTimeout indicates a timeout occurred.
	ErrTimeout = errors.New("timeout error")
	// ErrNotFound indicates a resource was not found.
	ErrNotFound = errors.New("not found")
)

// DeployError is the base error type for looker-deployer errors.
// It wraps an underlying error and provides additional context.
type DeployError struct {
	// Kind is the category of error (e.g., ErrAuth, ErrConfig).
	Kind error
	// Message is the human-readable error message.
	Message string
	// Suggestion provides actionable advice for resolving the error.
	Suggestion string
	// DocLink is a URL to relevant documentation.
	DocLink string
	// Cause is the underlying error that caused this error.
	Cause error
	// Details provides additional context (e.g., file path, command output).
	Details map[string]string
}

// Error implements the error interface.
func (e *DeployError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *DeployError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return e.Kind
}

// Is reports whether any error in err's chain matches the target.
func (e *DeployError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// Format returns a formatted error message with suggestions and doc links.
func (e *DeployError) Format() string {
	var sb strings.Builder

	sb.WriteString("Error: ")
	sb.WriteString(e.Error())
	sb.WriteString("\n")

	if len(e.Details) > 0 {
		sb.WriteString("\nDetails:\n")
		for k, v := range e.Details {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", k, v))
		}
	}

	if e.Suggestion != "" {
		sb.WriteString("\nSuggestion: ")
		sb.WriteString(e.Suggestion)
		sb.WriteString("\n")
	}

	if e.DocLink != "" {
		sb.WriteString("\nDocumentation: ")
		sb.WriteString(e.DocLink)
		sb.WriteString("\n")
	}

	return sb.String()
}

// WithDetails adds details to the error.
func (e *DeployError) WithDetails(key, value string) *DeployError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying cause of the error.
func (e *DeployError) WithCause(cause error) *DeployError {
	e.Cause = cause
	return e
}

// New creates a new DeployError with the given kind and message.
func New(kind error, message string) *DeployError {
	return &DeployError{
		Kind:    kind,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, kind error, message string) *DeployError {
	return &DeployError{
		Kind:    kind,
		Message: message,
		Cause:   err,
	}
}

// WithSuggestion creates a new error with a suggestion.
func WithSuggestion(kind error, message, suggestion string) *DeployError {
	return &DeployError{
		Kind:       kind,
		Message:    message,
		Suggestion: suggestion,
	}
}
