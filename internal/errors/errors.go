// Package errors provides shared error types for the Stash MCP server.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrClientUnavailable indicates the remote client cannot be built at all
// (for example, an endpoint URL that is not usable). Connecting is not retried.
var ErrClientUnavailable = errors.New("stash client unavailable")

// NotFoundError indicates a named entity was not found in the remote catalogue.
type NotFoundError struct {
	EntityType string // "performer", "studio", "tag"
	Name       string
}

func (e *NotFoundError) Error() string {
	if e.EntityType == "" {
		return fmt.Sprintf("'%s' not found in the database", e.Name)
	}
	return fmt.Sprintf("%s '%s' not found in the database", capitalize(e.EntityType), e.Name)
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(entityType, name string) *NotFoundError {
	return &NotFoundError{
		EntityType: entityType,
		Name:       name,
	}
}

// ValidationError indicates invalid input parameters.
type ValidationError struct {
	Field   string // field name that failed validation
	Value   string // the invalid value (may be empty for sensitive data)
	Message string // human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("validation failed for %s=%q: %s", e.Field, e.Value, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ConnectionUnavailableError is returned when no connection to Stash could be
// established.
type ConnectionUnavailableError struct {
	Endpoint string
	Attempts int
	Err      error // last connect error, if any
}

func (e *ConnectionUnavailableError) Error() string {
	msg := "Stash connection not available. Check your configuration and network connection."
	if e.Endpoint != "" {
		msg = fmt.Sprintf("Stash connection to %s not available after %d attempt(s). Check your configuration and network connection.", e.Endpoint, e.Attempts)
	}
	if e.Err != nil {
		msg += " Last error: " + e.Err.Error()
	}
	return msg
}

func (e *ConnectionUnavailableError) Unwrap() error {
	return e.Err
}

// QueryError wraps a failure of a remote query.
type QueryError struct {
	Operation string // GraphQL operation name, e.g. "FindPerformers"
	Err       error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("stash query %s failed: %v", e.Operation, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError creates a QueryError.
func NewQueryError(operation string, err error) *QueryError {
	return &QueryError{Operation: operation, Err: err}
}

// IsNotFound returns true if the error is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsValidation returns true if the error is or wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsConnectionUnavailable returns true if the error is or wraps a
// ConnectionUnavailableError.
func IsConnectionUnavailable(err error) bool {
	var target *ConnectionUnavailableError
	return errors.As(err, &target)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
