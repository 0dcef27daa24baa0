// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import "errors"

// The closed set of protocol errors. Every failure an operation in
// this package can report wraps exactly one of these sentinels, so
// callers branch with errors.Is. All of them are fatal to the
// invocation that triggered them; none are retried automatically,
// because each indicates either a transcription mistake or a genuine
// mismatch that must not be papered over.
var (
	// ErrInvalidDuration reports an expiry duration string that does
	// not parse. No default is substituted for malformed input.
	ErrInvalidDuration = errors.New("bootstrap: invalid expiry duration")

	// ErrTokenCorrupt reports a token that fails structural checks:
	// wrong prefix, broken base64, checksum mismatch, or claims that
	// do not decode. Checked before any cryptographic operation.
	ErrTokenCorrupt = errors.New("bootstrap: token is corrupt")

	// ErrTokenExpired reports a structurally valid token past its
	// expiry. Enforced only when decoding for a run; an archive
	// produced just before expiry may still be imported.
	ErrTokenExpired = errors.New("bootstrap: token has expired")

	// ErrSessionNotFound reports a session reference that resolves to
	// no record in the store directory.
	ErrSessionNotFound = errors.New("bootstrap: session not found")

	// ErrSessionConsumed reports an import against a session whose
	// consumed_at is already set. Sessions are one-time use; the check
	// runs before any key material is touched.
	ErrSessionConsumed = errors.New("bootstrap: session already consumed")

	// ErrSessionMismatch reports an archive whose embedded session or
	// key identity does not match the resolved session. Checked
	// explicitly, independent of the crypto.
	ErrSessionMismatch = errors.New("bootstrap: archive does not match session")

	// ErrDecryption reports an AEAD authentication failure: tampered
	// ciphertext or tag, or the wrong key. No plaintext is returned.
	ErrDecryption = errors.New("bootstrap: decryption failed")

	// ErrPayloadIntegrity reports a post-decryption hash mismatch or a
	// payload that does not parse. Unreachable with a valid GCM tag;
	// exists as defense against implementation bugs.
	ErrPayloadIntegrity = errors.New("bootstrap: payload integrity check failed")

	// ErrMissingFile reports a local source file absent at payload
	// build time. A missing credentials file is representable, not an
	// error, when the caller allows it.
	ErrMissingFile = errors.New("bootstrap: required file missing")

	// ErrFileWrite reports a failed backup or target file write during
	// import. The session is not marked consumed, so the same archive
	// can be retried.
	ErrFileWrite = errors.New("bootstrap: writing target file failed")
)
