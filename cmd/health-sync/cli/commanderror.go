// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ErrorCategory classifies command errors so that callers (and the
// exit-status mapping in [ExitCodeFor]) can make programmatic
// decisions without parsing error message text.
type ErrorCategory string

const (
	// CategoryValidation indicates the caller provided invalid input:
	// missing required arguments, conflicting flags, unparseable
	// values. The caller should fix the invocation and retry.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound indicates a referenced resource does not exist:
	// unknown session reference, missing archive file. Retrying with
	// the same parameters will not help.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryConflict indicates the operation conflicts with existing
	// state, such as importing against an already-consumed session.
	CategoryConflict ErrorCategory = "conflict"

	// CategoryIntegrity indicates the handed-over data failed a
	// cryptographic or structural check: corrupt token, failed
	// decryption, archive bound to a different session. The material
	// must be regenerated or re-copied; retrying as-is cannot succeed.
	CategoryIntegrity ErrorCategory = "integrity"

	// CategoryInternal indicates an unexpected error: bugs, I/O
	// failures, parse errors on data the tool produced itself.
	CategoryInternal ErrorCategory = "internal"
)

// CommandError is a categorized error returned by CLI commands. It
// wraps an inner error, preserving the full error chain for errors.Is
// matching while adding category metadata for the exit-status mapping.
// Use the category-specific constructors ([Validation], [NotFound],
// [Conflict], [Integrity], [Internal]) rather than constructing
// CommandError directly.
type CommandError struct {
	// Category classifies the error for programmatic handling.
	Category ErrorCategory

	// Err is the underlying error with the human-readable message.
	Err error
}

// Error returns the underlying error message. The category is not
// included in the string; it travels separately via the exit status.
func (e *CommandError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error, allowing errors.Is and
// errors.As to walk the full chain through the CommandError wrapper.
func (e *CommandError) Unwrap() error { return e.Err }

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error: a referenced resource does not exist.
func NotFound(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Conflict creates a conflict error: the operation conflicts with existing state.
func Conflict(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryConflict, Err: fmt.Errorf(format, args...)}
}

// Integrity creates an integrity error: handed-over data failed verification.
func Integrity(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryIntegrity, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error: an unexpected failure, bug, or I/O error.
func Internal(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}
