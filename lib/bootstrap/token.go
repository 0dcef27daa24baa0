// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/curve25519"

	"github.com/healthsync-project/healthsync/lib/codec"
)

// TokenPrefix marks a string as a remote bootstrap token. The version
// digit in the prefix names the whole wire format; a format change
// gets a new prefix rather than a negotiation mechanism.
const TokenPrefix = "hsr1."

// tokenVersion is the claims format version inside the token.
const tokenVersion = 1

// tokenChecksumSize is the length of the transcription checksum
// appended to the claims bytes: the first 4 bytes of the BLAKE3-256
// digest of the claims. It exists to fail fast on mistyped or
// truncated tokens before any cryptographic operation; the AEAD tag
// downstream is the real integrity control.
const tokenChecksumSize = 4

// tokenClaims is the CBOR-encoded payload of a bootstrap token.
// Integer keys keep the token short enough to paste comfortably.
type tokenClaims struct {
	// Version is the claims format version (tokenVersion).
	Version int `cbor:"1,keyasint"`

	// SessionID and KeyID identify the receiving session.
	SessionID string `cbor:"2,keyasint"`
	KeyID     string `cbor:"3,keyasint"`

	// RecipientPublicKey is the raw 32-byte X25519 public key the
	// sender encrypts to.
	RecipientPublicKey []byte `cbor:"4,keyasint"`

	// CreatedAt and ExpiresAt are Unix timestamps (seconds) bounding
	// the token's validity window.
	CreatedAt int64 `cbor:"5,keyasint"`
	ExpiresAt int64 `cbor:"6,keyasint"`
}

// TokenDetails is the decoded content of a bootstrap token. It is the
// only representation handed to other components; raw token strings
// stop at this codec.
type TokenDetails struct {
	SessionID          string
	KeyID              string
	RecipientPublicKey []byte
	CreatedAt          time.Time
	ExpiresAt          time.Time
}

// EncodeToken encodes a session into its paste-safe token string:
// the "hsr1." prefix followed by base64url (unpadded) of the CBOR
// claims with the 4-byte checksum appended.
func EncodeToken(session *Session) (string, error) {
	claims := tokenClaims{
		Version:            tokenVersion,
		SessionID:          session.SessionID,
		KeyID:              session.KeyID,
		RecipientPublicKey: session.PublicKey,
		CreatedAt:          session.CreatedAt.Unix(),
		ExpiresAt:          session.ExpiresAt.Unix(),
	}

	payload, err := codec.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("encoding token claims: %w", err)
	}

	digest := blake3.Sum256(payload)

	blob := make([]byte, len(payload)+tokenChecksumSize)
	copy(blob, payload)
	copy(blob[len(payload):], digest[:tokenChecksumSize])

	return TokenPrefix + base64.RawURLEncoding.EncodeToString(blob), nil
}

// DecodeToken decodes and validates a token string, enforcing expiry
// against the current time. This is the sending-side path: an expired
// token must be refused before any files are read or encrypted.
func DecodeToken(raw string) (*TokenDetails, error) {
	return DecodeTokenAt(raw, time.Now())
}

// DecodeTokenAt is like DecodeToken but takes an explicit time for
// the expiry comparison. This supports deterministic testing.
func DecodeTokenAt(raw string, now time.Time) (*TokenDetails, error) {
	details, claims, err := parseToken(raw)
	if err != nil {
		return nil, err
	}

	if now.Unix() >= claims.ExpiresAt {
		return nil, fmt.Errorf("%w: expired %s", ErrTokenExpired, details.ExpiresAt.Format(time.RFC3339))
	}

	return details, nil
}

// parseToken performs the structural half of decoding, without the
// expiry check. The session store uses it to resolve token-form
// references: an archive produced just before expiry is still
// importable, so resolution must not re-litigate expiry.
//
// The check order is fixed: prefix, base64, length, checksum, claims.
// The checksum runs before the claims parse so an obviously mistyped
// token short-circuits with ErrTokenCorrupt instead of a confusing
// decode error.
func parseToken(raw string) (*TokenDetails, *tokenClaims, error) {
	if !strings.HasPrefix(raw, TokenPrefix) {
		return nil, nil, fmt.Errorf("%w: missing %q prefix", ErrTokenCorrupt, TokenPrefix)
	}

	blob, err := base64.RawURLEncoding.DecodeString(raw[len(TokenPrefix):])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrTokenCorrupt, err)
	}

	if len(blob) <= tokenChecksumSize {
		return nil, nil, fmt.Errorf("%w: %d bytes is too short", ErrTokenCorrupt, len(blob))
	}

	splitPoint := len(blob) - tokenChecksumSize
	payload := blob[:splitPoint]
	checksum := blob[splitPoint:]

	digest := blake3.Sum256(payload)
	if !bytes.Equal(checksum, digest[:tokenChecksumSize]) {
		return nil, nil, fmt.Errorf("%w: checksum mismatch", ErrTokenCorrupt)
	}

	var claims tokenClaims
	if err := codec.Unmarshal(payload, &claims); err != nil {
		return nil, nil, fmt.Errorf("%w: decoding claims: %v", ErrTokenCorrupt, err)
	}

	if claims.Version != tokenVersion {
		return nil, nil, fmt.Errorf("%w: claims version %d is not supported", ErrTokenCorrupt, claims.Version)
	}
	if claims.SessionID == "" || claims.KeyID == "" {
		return nil, nil, fmt.Errorf("%w: missing session identity", ErrTokenCorrupt)
	}
	if len(claims.RecipientPublicKey) != curve25519.PointSize {
		return nil, nil, fmt.Errorf("%w: recipient key is %d bytes, want %d",
			ErrTokenCorrupt, len(claims.RecipientPublicKey), curve25519.PointSize)
	}

	details := &TokenDetails{
		SessionID:          claims.SessionID,
		KeyID:              claims.KeyID,
		RecipientPublicKey: claims.RecipientPublicKey,
		CreatedAt:          time.Unix(claims.CreatedAt, 0).UTC(),
		ExpiresAt:          time.Unix(claims.ExpiresAt, 0).UTC(),
	}
	return details, &claims, nil
}
