// Package errors provides standardized domain errors that express business intent
// rather than infrastructure details. Use cases and the synchronizer return these
// errors and the HTTP layer maps them to status codes.
package errors

import (
	"errors"
	"fmt"
)

// Standard domain errors that can be used across all domain modules.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates data that cannot be reconciled, either a duplicate on the
	// remote side or a server response that diverges structurally from the optimistic value.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request lacks valid authentication credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the authenticated user doesn't have permission.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation indicates the remote API rejected a payload (4xx).
	ErrValidation = errors.New("validation failed")

	// ErrTransientNetwork indicates the remote call did not complete (connectivity, timeout, 5xx).
	ErrTransientNetwork = errors.New("transient network error")

	// ErrMutationFailed is matched by every error returned from a settled mutation.
	ErrMutationFailed = errors.New("mutation failed")
)

// Wrap wraps an error with additional context while preserving the error chain.
// Use this to add context at each layer without losing the original error type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Message returns the most user-presentable message in err's chain: the message of an
// APIError or MutationError when one is present, otherwise err.Error().
func Message(err error) string {
	if err == nil {
		return ""
	}
	var mutationErr *MutationError
	if errors.As(err, &mutationErr) && mutationErr.Message != "" {
		return mutationErr.Message
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
