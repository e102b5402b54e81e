package errors

import (
	"fmt"
	"net/http"
)

// NotFoundError names a missing layout, order or row.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError rejects one configuration field or argument.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid: " + e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Is matches ErrInvalidInput.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NewValidationError creates a ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError reports configuration that could not be loaded or assembled.
// It also matches ErrInvalidInput, so IsValidationError covers both.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

func (e *ConfigError) Error() string {
	if e.Component == "" {
		return "config: " + e.Message
	}
	return fmt.Sprintf("config %s: %s", e.Component, e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Is matches ErrInvalidInput.
func (e *ConfigError) Is(target error) bool { return target == ErrInvalidInput }

// NewConfigError creates a ConfigError.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// APIError is a non-success response (or transport failure, StatusCode 0)
// from the marketplace API.
//
// The status maps onto categories: 429 is ErrRateLimited, 401 and 403 are
// ErrUnauthorized, any 5xx is ErrSourceUnavailable.
type APIError struct {
	Source     string
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

func (e *APIError) Error() string {
	where := e.Source
	if e.Endpoint != "" {
		where += " " + e.Endpoint
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", where, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", where, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// Is maps the HTTP status onto the marketplace categories.
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return target == ErrRateLimited
	case e.StatusCode == http.StatusUnauthorized, e.StatusCode == http.StatusForbidden:
		return target == ErrUnauthorized
	case e.StatusCode >= http.StatusInternalServerError:
		return target == ErrSourceUnavailable
	}
	return false
}

// NewAPIError creates an APIError from a response status.
func NewAPIError(source string, statusCode int, message string) *APIError {
	return &APIError{Source: source, StatusCode: statusCode, Message: message}
}

// WrapAPI wraps a transport failure as an APIError. It returns nil for a nil err.
func WrapAPI(source string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return &APIError{Source: source, StatusCode: statusCode, Message: err.Error(), Err: err}
}
