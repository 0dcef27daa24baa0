// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

// Package bootstrap implements the remote bootstrap handshake that
// moves a config file and an OAuth credentials file from the machine
// where a person authorized providers to the machine where the sync
// bot runs, end-to-end encrypted, over any untrusted file channel.
//
// The handshake has three legs:
//
//  1. On the bot machine, [Create] generates an X25519 key pair,
//     persists a session record in the store directory, and returns a
//     paste-safe token (prefix "hsr1.") carrying the session identity
//     and the recipient public key. The token travels out of band.
//  2. On the user machine, [DecodeToken] validates the token (checksum
//     before any other parsing, then expiry), [BuildPayload] snapshots
//     the local files with per-file SHA-256, and [Encrypt] performs an
//     ephemeral ECDH against the recipient key, derives an AES-256 key
//     via HKDF-SHA256, and seals the payload with GCM. [WriteArchive]
//     emits the envelope as a plain JSON file suitable for transfer as
//     a generic attachment.
//  3. Back on the bot machine, [Import] resolves the session from any
//     reference form, rejects consumed sessions before touching key
//     material, checks the envelope/session binding, decrypts and
//     verifies, backs up and atomically replaces the target files, and
//     only then marks the session consumed. Sessions are one-time use.
//
// Nothing in this package reads environment variables or chooses
// default paths; every operation takes the store directory and target
// paths explicitly. The CLI resolves defaults once and threads them
// down.
//
// All failures belong to a closed set of sentinel errors (errors.go)
// so callers select remediation with errors.Is instead of matching
// message text.
//
// Depends on lib/codec for token claims and canonical AAD bytes,
// lib/secret for key material, and lib/atomicfile for every file the
// protocol writes.
package bootstrap
