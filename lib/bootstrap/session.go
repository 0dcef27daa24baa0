// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/curve25519"
)

// sessionRecordVersion is the on-disk session record format version.
const sessionRecordVersion = 1

// keyIDPrefix distinguishes key identifiers from session identifiers
// and tokens in user-supplied references.
const keyIDPrefix = "hsk-"

// Session is one remote bootstrap session: a receiving key pair plus
// the identifiers and timestamps that scope its use. One record per
// session is persisted as JSON in the store directory, mode 0600 (it
// holds the private key at rest).
type Session struct {
	// Version is the record format version (sessionRecordVersion).
	Version int `json:"version"`

	// SessionID is the UUID naming this session. Doubles as the
	// record's file name in the store directory.
	SessionID string `json:"session_id"`

	// KeyID names the key pair, independent of the key material so a
	// future record version can rotate keys without renaming sessions.
	KeyID string `json:"key_id"`

	// PublicKey is the raw 32-byte X25519 recipient public key. The
	// sender encrypts to this key; it also travels inside the token.
	PublicKey []byte `json:"public_key"`

	// PrivateKey is the raw 32-byte X25519 private scalar. At rest it
	// is protected only by the record's file mode; in memory it is
	// copied into guarded buffers before any ECDH computation.
	PrivateKey []byte `json:"private_key"`

	// Fingerprint is a short public key digest for out-of-band
	// confirmation. Display only; never parsed back.
	Fingerprint string `json:"fingerprint"`

	// CreatedAt and ExpiresAt bound the token's validity window. UTC,
	// whole seconds.
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	// ConsumedAt is set by a fully successful import and never
	// cleared. A session with ConsumedAt set rejects every further
	// import, regardless of archive validity.
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
}

// Consumed reports whether the session has been used up by an import.
func (s *Session) Consumed() bool {
	return s.ConsumedAt != nil
}

// Expired reports whether the session's token validity window has
// passed at the given instant. Expiry gates token decoding on the
// sending side only; imports deliberately do not re-check it.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// StatusAt returns "consumed", "expired", or "active" for display.
// Consumed wins over expired: a used session stays used.
func (s *Session) StatusAt(now time.Time) string {
	switch {
	case s.Consumed():
		return "consumed"
	case s.Expired(now):
		return "expired"
	default:
		return "active"
	}
}

// newKeyPair generates a fresh X25519 key pair. The private scalar is
// destined for the session record at rest, so it is returned as a
// plain slice; callers that compute with it copy it into a guarded
// buffer first.
func newKeyPair() (publicKey, privateKey []byte, err error) {
	privateKey = make([]byte, curve25519.ScalarSize)
	if _, err := rand.Read(privateKey); err != nil {
		return nil, nil, fmt.Errorf("generating private scalar: %w", err)
	}

	publicKey, err = curve25519.X25519(privateKey, curve25519.Basepoint)
	if err != nil {
		return nil, nil, fmt.Errorf("deriving public key: %w", err)
	}

	return publicKey, privateKey, nil
}

// newKeyID returns a fresh key identifier: the "hsk-" prefix followed
// by 16 hex characters from 8 random bytes.
func newKeyID() (string, error) {
	raw := make([]byte, 8)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating key id: %w", err)
	}
	return keyIDPrefix + hex.EncodeToString(raw), nil
}

// Fingerprint returns the display fingerprint of a recipient public
// key: the first 8 bytes of its SHA-256 digest as lowercase hex in
// four dash-separated groups ("3f9c-a81d-77e2-0b4d"). Both sides can
// compute it, so a user can confirm over a voice or chat channel that
// the token they pasted carries the key the bot generated.
func Fingerprint(publicKey []byte) string {
	digest := sha256.Sum256(publicKey)
	encoded := hex.EncodeToString(digest[:8])
	return encoded[0:4] + "-" + encoded[4:8] + "-" + encoded[8:12] + "-" + encoded[12:16]
}
