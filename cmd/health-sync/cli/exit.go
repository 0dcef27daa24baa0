// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
)

// ExitError signals a non-zero exit code without printing an extra
// error message. When a command handler returns an ExitError, main
// exits with the specified code without printing the error string;
// the command is expected to have already written its own output.
//
// This is used where a non-zero exit is a valid outcome rather than
// an unexpected error, such as the operator declining the overwrite
// confirmation during an import.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code. Main checks for this interface on
// returned errors to distinguish "handled non-zero exit" from
// "unexpected error to display".
func (e *ExitError) ExitCode() int {
	return e.Code
}

// ExitCodeFor maps an error to the process exit status: zero for nil,
// a category-specific code for [CommandError] values, and 1 for
// everything else. Scripts driving the handshake can branch on the
// status without parsing error text.
func ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	var commandErr *CommandError
	if errors.As(err, &commandErr) {
		switch commandErr.Category {
		case CategoryValidation:
			return 2
		case CategoryNotFound:
			return 3
		case CategoryConflict:
			return 4
		case CategoryIntegrity:
			return 5
		}
	}
	return 1
}
