// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	"github.com/healthsync-project/healthsync/lib/codec"
	"github.com/healthsync-project/healthsync/lib/secret"
)

// Sizes fixed by the envelope format. keySize is the derived AES-256
// key, saltSize the HKDF salt, nonceSize the GCM nonce, tagSize the
// detached GCM tag.
const (
	keySize   = 32
	saltSize  = 32
	nonceSize = 12
	tagSize   = 16
)

// hkdfInfo is the "info" parameter to HKDF-SHA256, binding derived
// keys to this protocol version. Changing it invalidates every
// archive encrypted under the old derivation path.
var hkdfInfo = []byte("health-sync.remote-bootstrap.v1")

// aadClaims is the canonical form of the additional authenticated
// data. The AEAD binds the deterministic CBOR encoding of this
// struct, so both machines must produce identical bytes from the
// same three fields.
type aadClaims struct {
	SessionID     string `cbor:"1,keyasint"`
	KeyID         string `cbor:"2,keyasint"`
	PayloadSHA256 string `cbor:"3,keyasint"`
}

// Encrypt seals a payload for the session identified by the token:
// fresh ephemeral X25519 key pair, ECDH against the recipient public
// key, HKDF-SHA256 with a random salt, then AES-256-GCM over the
// serialized payload with the session/key identity and payload digest
// as additional authenticated data. The returned envelope carries the
// GCM tag detached from the ciphertext, and repeats the AAD fields in
// the clear so the receiving side can check binding before touching
// key material.
func Encrypt(payload *Payload, details *TokenDetails) (*Envelope, error) {
	plaintext, err := encodePayload(payload)
	if err != nil {
		return nil, err
	}
	defer secret.Zero(plaintext)

	payloadHash := contentDigest(plaintext)

	// The ephemeral private scalar lives only in guarded memory and
	// only for the duration of this call. Forward secrecy on the
	// sending side: once this returns, nothing can recompute the
	// shared secret from sender-side state.
	ephemeralPrivate, err := secret.NewRandom(curve25519.ScalarSize)
	if err != nil {
		return nil, fmt.Errorf("generating ephemeral scalar: %w", err)
	}
	defer ephemeralPrivate.Close()

	ephemeralPublic, err := curve25519.X25519(ephemeralPrivate.Bytes(), curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("deriving ephemeral public key: %w", err)
	}

	sharedSecret, err := curve25519.X25519(ephemeralPrivate.Bytes(), details.RecipientPublicKey)
	if err != nil {
		return nil, fmt.Errorf("computing shared secret: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		secret.Zero(sharedSecret)
		return nil, fmt.Errorf("generating salt: %w", err)
	}

	key, err := deriveKey(sharedSecret, salt)
	secret.Zero(sharedSecret)
	if err != nil {
		return nil, err
	}
	defer key.Close()

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	aadBytes, err := buildAAD(details.SessionID, details.KeyID, payloadHash)
	if err != nil {
		return nil, err
	}

	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	sealed := aead.Seal(nil, nonce, plaintext, aadBytes)

	// Detach the tag: the final Overhead() bytes of the sealed output.
	splitPoint := len(sealed) - aead.Overhead()
	ciphertext := sealed[:splitPoint]
	tag := sealed[splitPoint:]

	return &Envelope{
		Version:                  archiveVersion,
		Schema:                   ArchiveSchema,
		SessionID:                details.SessionID,
		KeyID:                    details.KeyID,
		SenderEphemeralPublicKey: ephemeralPublic,
		Salt:                     salt,
		Nonce:                    nonce,
		Ciphertext:               ciphertext,
		Tag:                      tag,
		AAD: EnvelopeAAD{
			SessionID:     details.SessionID,
			KeyID:         details.KeyID,
			PayloadSHA256: payloadHash,
		},
	}, nil
}

// Decrypt opens an envelope with the session's private key: recompute
// the shared secret from the envelope's ephemeral public key, derive
// the AES key with the envelope's salt, authenticate and decrypt with
// the recomputed AAD bytes. Any tag mismatch fails closed with
// ErrDecryption; no partial plaintext is ever returned. After a
// successful open, the payload digest and the per-file digests are
// re-verified; a mismatch fails with ErrPayloadIntegrity.
func Decrypt(envelope *Envelope, session *Session) (*Payload, error) {
	// GCM panics on a wrong-size nonce; the length checks here keep
	// malformed envelopes on the error path.
	if len(envelope.Nonce) != nonceSize {
		return nil, fmt.Errorf("%w: nonce is %d bytes, want %d", ErrDecryption, len(envelope.Nonce), nonceSize)
	}

	// Work on a copy of the private scalar in guarded memory; the
	// session record itself stays intact for the store.
	private, err := secret.NewFromBytes(append([]byte(nil), session.PrivateKey...))
	if err != nil {
		return nil, fmt.Errorf("loading session private key: %w", err)
	}
	defer private.Close()

	sharedSecret, err := curve25519.X25519(private.Bytes(), envelope.SenderEphemeralPublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: computing shared secret: %v", ErrDecryption, err)
	}

	key, err := deriveKey(sharedSecret, envelope.Salt)
	secret.Zero(sharedSecret)
	if err != nil {
		return nil, err
	}
	defer key.Close()

	aadBytes, err := buildAAD(envelope.AAD.SessionID, envelope.AAD.KeyID, envelope.AAD.PayloadSHA256)
	if err != nil {
		return nil, err
	}

	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	// Recombine ciphertext and detached tag for Open.
	sealed := make([]byte, 0, len(envelope.Ciphertext)+len(envelope.Tag))
	sealed = append(sealed, envelope.Ciphertext...)
	sealed = append(sealed, envelope.Tag...)

	plaintext, err := aead.Open(nil, envelope.Nonce, sealed, aadBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: wrong key, tampered data, or mismatched binding: %v", ErrDecryption, err)
	}
	defer secret.Zero(plaintext)

	if contentDigest(plaintext) != envelope.AAD.PayloadSHA256 {
		return nil, fmt.Errorf("%w: payload digest mismatch", ErrPayloadIntegrity)
	}

	return decodePayload(plaintext)
}

// deriveKey is the HKDF-SHA256 derivation shared by both directions:
// a 32-byte AES key from the ECDH shared secret, the envelope salt,
// and the protocol info string. The caller zeros the shared secret
// after this returns; the derived key lands directly in guarded
// memory.
func deriveKey(sharedSecret, salt []byte) (*secret.Buffer, error) {
	reader := hkdf.New(sha256.New, sharedSecret, salt, hkdfInfo)
	derived := make([]byte, keySize)
	if _, err := io.ReadFull(reader, derived); err != nil {
		secret.Zero(derived)
		return nil, fmt.Errorf("HKDF key derivation failed: %w", err)
	}
	// NewFromBytes copies into mmap and zeros the heap slice.
	return secret.NewFromBytes(derived)
}

// newAEAD constructs the AES-256-GCM cipher over a derived key.
func newAEAD(key *secret.Buffer) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("creating AES cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return aead, nil
}

// buildAAD constructs the additional authenticated data for the AEAD:
// the deterministic CBOR encoding of the session id, key id, and
// payload digest. Binding the session identity into the tag means a
// ciphertext moved into a different session's envelope fails
// authentication even before the explicit binding check.
func buildAAD(sessionID, keyID, payloadSHA256 string) ([]byte, error) {
	aadBytes, err := codec.Marshal(aadClaims{
		SessionID:     sessionID,
		KeyID:         keyID,
		PayloadSHA256: payloadSHA256,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding AAD: %w", err)
	}
	return aadBytes, nil
}
