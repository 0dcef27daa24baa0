// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/crypto/curve25519"

	"github.com/healthsync-project/healthsync/lib/atomicfile"
)

// ArchiveSchema identifies the transfer archive JSON format. A reader
// seeing any other schema value must refuse the file rather than
// guess.
const ArchiveSchema = "health-sync-remote-archive-v1"

// archiveVersion is the envelope format version within the schema.
const archiveVersion = 1

// Envelope is the transfer archive: everything the receiving side
// needs to authenticate and decrypt one payload, as a single JSON
// object suitable for transfer as a generic file attachment. The
// AAD fields are recorded in the clear so binding can be checked
// before and without decrypting, but they are still authenticated:
// the GCM tag covers them, so altering any of them breaks the open.
type Envelope struct {
	Version                  int         `json:"version"`
	Schema                   string      `json:"schema"`
	SessionID                string      `json:"session_id"`
	KeyID                    string      `json:"key_id"`
	SenderEphemeralPublicKey []byte      `json:"sender_ephemeral_public_key"`
	Salt                     []byte      `json:"salt"`
	Nonce                    []byte      `json:"nonce"`
	Ciphertext               []byte      `json:"ciphertext"`
	Tag                      []byte      `json:"tag"`
	AAD                      EnvelopeAAD `json:"aad"`
}

// EnvelopeAAD is the cleartext copy of the additional authenticated
// data: the session binding and the digest of the payload bytes
// inside the ciphertext.
type EnvelopeAAD struct {
	SessionID     string `json:"session_id"`
	KeyID         string `json:"key_id"`
	PayloadSHA256 string `json:"payload_sha256"`
}

// WriteArchive writes an envelope to path as indented JSON, mode
// 0600, atomically. The archive holds only ciphertext and public
// values, but it still gets owner-only permissions: there is no
// reason for anything else on the machine to read it.
func WriteArchive(path string, envelope *Envelope) error {
	if err := validateEnvelope(envelope); err != nil {
		return fmt.Errorf("refusing to write archive: %w", err)
	}

	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding archive: %w", err)
	}
	data = append(data, '\n')

	if err := atomicfile.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing archive %s: %w", path, err)
	}
	return nil
}

// ReadArchive reads and structurally validates an envelope from path.
// Validation here covers shape only (schema, field presence, sizes,
// internal consistency); authenticity is established later by the
// AEAD open. When the file does not exist, the returned error wraps
// os.ErrNotExist.
func ReadArchive(path string) (*Envelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}

	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("parsing archive %s: %w", path, err)
	}

	if err := validateEnvelope(&envelope); err != nil {
		return nil, fmt.Errorf("archive %s: %w", path, err)
	}
	return &envelope, nil
}

// validateEnvelope checks the structural invariants of an envelope.
func validateEnvelope(envelope *Envelope) error {
	if envelope.Schema != ArchiveSchema {
		return fmt.Errorf("schema %q is not supported (want %q)", envelope.Schema, ArchiveSchema)
	}
	if envelope.Version != archiveVersion {
		return fmt.Errorf("envelope version %d is not supported (want %d)", envelope.Version, archiveVersion)
	}
	if envelope.SessionID == "" || envelope.KeyID == "" {
		return fmt.Errorf("envelope is missing session identity")
	}
	if len(envelope.SenderEphemeralPublicKey) != curve25519.PointSize {
		return fmt.Errorf("ephemeral public key is %d bytes, want %d",
			len(envelope.SenderEphemeralPublicKey), curve25519.PointSize)
	}
	if len(envelope.Salt) != saltSize {
		return fmt.Errorf("salt is %d bytes, want %d", len(envelope.Salt), saltSize)
	}
	if len(envelope.Nonce) != nonceSize {
		return fmt.Errorf("nonce is %d bytes, want %d", len(envelope.Nonce), nonceSize)
	}
	if len(envelope.Tag) != tagSize {
		return fmt.Errorf("tag is %d bytes, want %d", len(envelope.Tag), tagSize)
	}
	if len(envelope.Ciphertext) == 0 {
		return fmt.Errorf("envelope has no ciphertext")
	}

	// The cleartext AAD copy must agree with the envelope's own
	// identity fields; a disagreement means the file was assembled,
	// not produced by an encryptor.
	if envelope.AAD.SessionID != envelope.SessionID || envelope.AAD.KeyID != envelope.KeyID {
		return fmt.Errorf("AAD identity does not match envelope identity")
	}
	if digest, err := hex.DecodeString(envelope.AAD.PayloadSHA256); err != nil || len(digest) != 32 {
		return fmt.Errorf("AAD payload digest %q is not a SHA-256 hex digest", envelope.AAD.PayloadSHA256)
	}

	return nil
}
