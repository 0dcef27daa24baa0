// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

package initcmd

import (
	"errors"
	"os"

	"github.com/healthsync-project/healthsync/cmd/health-sync/cli"
	"github.com/healthsync-project/healthsync/lib/bootstrap"
)

// Remediation hints, printed after the error itself. Every hint tells
// the operator what to do next, not what went wrong; the error text
// already covers that.
const (
	hintInvalidDuration = "use a bare number of seconds or a number with a single s, m, h, or d suffix, for example 30m or 24h"
	hintTokenCorrupt    = "re-copy the full token from the bootstrap output; tokens often lose characters in chat clients and terminals"
	hintTokenExpired    = "create a fresh session with 'health-sync init remote bootstrap' and share the new token"
	hintSessionNotFound = "list this machine's sessions with 'health-sync init remote sessions'; the reference must be a session id, key id, or token created here"
	hintSessionConsumed = "sessions are single use; create a fresh session with 'health-sync init remote bootstrap' and package the files again"
	hintSessionMismatch = "this archive was built for a different session; check 'health-sync init remote sessions' for the matching reference, or start over with a fresh token"
	hintDecryption      = "the archive does not open with this session's key, so it was damaged in transit or built against a different token; package the files again with a fresh token"
	hintPayloadBroken   = "the decrypted contents failed verification; package the files again with a fresh token"
	hintMissingFile     = "run this from the directory that holds your health-sync files, or point --config and --creds at them"
	hintFileWrite       = "the session is still usable; fix the target paths or permissions and rerun the same finish command"
)

// commandError converts a protocol error into a categorized CLI error
// with a remediation hint appended. Errors the protocol does not own
// pass through unchanged.
func commandError(err error) error {
	switch {
	case errors.Is(err, bootstrap.ErrInvalidDuration):
		return cli.Validation("%w\n\nhint: %s", err, hintInvalidDuration)
	case errors.Is(err, bootstrap.ErrTokenCorrupt):
		return cli.Integrity("%w\n\nhint: %s", err, hintTokenCorrupt)
	case errors.Is(err, bootstrap.ErrTokenExpired):
		return cli.Conflict("%w\n\nhint: %s", err, hintTokenExpired)
	case errors.Is(err, bootstrap.ErrSessionNotFound):
		return cli.NotFound("%w\n\nhint: %s", err, hintSessionNotFound)
	case errors.Is(err, bootstrap.ErrSessionConsumed):
		return cli.Conflict("%w\n\nhint: %s", err, hintSessionConsumed)
	case errors.Is(err, bootstrap.ErrSessionMismatch):
		return cli.Integrity("%w\n\nhint: %s", err, hintSessionMismatch)
	case errors.Is(err, bootstrap.ErrDecryption):
		return cli.Integrity("%w\n\nhint: %s", err, hintDecryption)
	case errors.Is(err, bootstrap.ErrPayloadIntegrity):
		return cli.Integrity("%w\n\nhint: %s", err, hintPayloadBroken)
	case errors.Is(err, bootstrap.ErrMissingFile):
		return cli.NotFound("%w\n\nhint: %s", err, hintMissingFile)
	case errors.Is(err, bootstrap.ErrFileWrite):
		return cli.Internal("%w\n\nhint: %s", err, hintFileWrite)
	case errors.Is(err, os.ErrNotExist):
		return cli.NotFound("%w", err)
	default:
		return err
	}
}
