// Package errors defines the error values shared by the order source, the row
// store, the formatters and the client. Callers test for a category with
// errors.Is against one of the sentinels below, or with the Is* helpers.
package errors

import (
	"errors"
)

// New is errors.New, re-exported so callers need a single errors import.
var New = errors.New

// Categories. Typed errors in this package match one of these with errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrTokenRequired  = errors.New("access token required")
	ErrCanceled       = errors.New("operation canceled")
	ErrOutOfRange     = errors.New("out of range")
	ErrQuietWindow    = errors.New("inside quiet window")
	ErrPassInProgress = errors.New("pass already in progress")

	// Marketplace responses
	ErrRateLimited       = errors.New("rate limited")
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrUnauthorized      = errors.New("unauthorized")

	// Pipeline stages
	ErrSourceFetch = errors.New("source fetch failed")
	ErrStoreWrite  = errors.New("store write failed")
	ErrFormat      = errors.New("format failed")
)

// IsNotFound reports whether err is, or wraps, a missing resource.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidationError reports whether err came from input or configuration validation.
func IsValidationError(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsRateLimited reports whether the marketplace throttled the request.
func IsRateLimited(err error) bool { return errors.Is(err, ErrRateLimited) }

// IsCanceled reports whether err stems from cancellation.
func IsCanceled(err error) bool { return errors.Is(err, ErrCanceled) }

// IsSourceFetch reports whether err came from listing orders or line items.
func IsSourceFetch(err error) bool { return errors.Is(err, ErrSourceFetch) }

// IsStoreWrite reports whether err came from a row store write.
func IsStoreWrite(err error) bool { return errors.Is(err, ErrStoreWrite) }
