// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// payloadVersion is the payload format version carried inside the
// encrypted archive.
const payloadVersion = 1

// Payload is the plaintext that gets encrypted into an archive: the
// two secret files plus metadata about their origin. It exists only in
// memory and inside the AEAD ciphertext; it is never written to disk
// in the clear.
type Payload struct {
	Version  int             `json:"version"`
	Files    PayloadFiles    `json:"files"`
	Metadata PayloadMetadata `json:"metadata"`
}

// PayloadFiles holds the two transported files. Config is always
// present in a well-formed payload; creds may carry the explicit
// absent marker when the user has not authorized any provider yet.
type PayloadFiles struct {
	Config FileEntry `json:"config"`
	Creds  FileEntry `json:"creds"`
}

// FileEntry is one transported file, or the explicit marker that the
// file was absent at build time. Content is the raw bytes (base64 in
// JSON); SHA256 is the lowercase hex digest of Content, verified on
// the receiving side after decryption.
type FileEntry struct {
	Present bool   `json:"present"`
	Content []byte `json:"content,omitempty"`
	SHA256  string `json:"sha256,omitempty"`
}

// PayloadMetadata records when and by what the payload was built.
// Diagnostic only; nothing branches on it.
type PayloadMetadata struct {
	CreatedAt     time.Time `json:"created_at"`
	SourceVersion string    `json:"source_version"`
}

// BuildParams are the inputs to BuildPayload.
type BuildParams struct {
	// ConfigPath and CredsPath are the local files to snapshot.
	ConfigPath string
	CredsPath  string

	// AllowMissingCreds turns an absent credentials file into the
	// explicit absent marker instead of ErrMissingFile. First-time
	// onboarding with no provider authorized is a valid state; an
	// error here would block the config-only bootstrap run.
	AllowMissingCreds bool

	// SourceVersion is recorded in the payload metadata, normally
	// version.Info().
	SourceVersion string
}

// BuildPayload snapshots the local config and credentials files into a
// payload, computing the per-file SHA-256 digests the importer will
// verify. A missing config file always fails with ErrMissingFile; a
// missing credentials file fails unless params.AllowMissingCreds.
func BuildPayload(params BuildParams) (*Payload, error) {
	return BuildPayloadAt(params, time.Now())
}

// BuildPayloadAt is like BuildPayload but takes an explicit build
// time for the payload metadata. This supports deterministic testing.
func BuildPayloadAt(params BuildParams, now time.Time) (*Payload, error) {
	config, err := readFileEntry(params.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	creds, err := readFileEntry(params.CredsPath)
	if err != nil {
		if params.AllowMissingCreds && errors.Is(err, os.ErrNotExist) {
			creds = FileEntry{Present: false}
		} else {
			return nil, fmt.Errorf("reading credentials: %w", err)
		}
	}

	return &Payload{
		Version: payloadVersion,
		Files:   PayloadFiles{Config: config, Creds: creds},
		Metadata: PayloadMetadata{
			CreatedAt:     now.UTC().Truncate(time.Second),
			SourceVersion: params.SourceVersion,
		},
	}, nil
}

// readFileEntry reads one source file into a present FileEntry with
// its digest. A missing file maps to ErrMissingFile (which also wraps
// os.ErrNotExist, so callers can distinguish absent from unreadable).
func readFileEntry(path string) (FileEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileEntry{}, fmt.Errorf("%w: %s: %w", ErrMissingFile, path, err)
		}
		return FileEntry{}, err
	}

	return FileEntry{
		Present: true,
		Content: data,
		SHA256:  contentDigest(data),
	}, nil
}

// contentDigest is the lowercase hex SHA-256 used for both the
// per-file digests and the payload digest in the AAD.
func contentDigest(data []byte) string {
	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:])
}

// encodePayload serializes a payload to the exact bytes that get
// encrypted. The payload-level SHA-256 in the AAD is computed over
// these bytes.
func encodePayload(payload *Payload) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	return data, nil
}

// decodePayload parses decrypted payload bytes and verifies the
// per-file digests. Any inconsistency fails with ErrPayloadIntegrity:
// with a valid AEAD tag these checks are unreachable, so a failure
// here means an implementation bug, not an attacker.
func decodePayload(data []byte) (*Payload, error) {
	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: parsing payload: %v", ErrPayloadIntegrity, err)
	}

	if payload.Version != payloadVersion {
		return nil, fmt.Errorf("%w: payload version %d is not supported", ErrPayloadIntegrity, payload.Version)
	}
	if !payload.Files.Config.Present {
		return nil, fmt.Errorf("%w: payload has no config entry", ErrPayloadIntegrity)
	}

	if err := verifyFileEntry("config", payload.Files.Config); err != nil {
		return nil, err
	}
	if err := verifyFileEntry("creds", payload.Files.Creds); err != nil {
		return nil, err
	}

	return &payload, nil
}

// verifyFileEntry recomputes a present entry's digest against its
// recorded SHA-256. Absent entries carry no content and nothing to
// verify.
func verifyFileEntry(name string, entry FileEntry) error {
	if !entry.Present {
		return nil
	}
	if contentDigest(entry.Content) != entry.SHA256 {
		return fmt.Errorf("%w: %s digest mismatch", ErrPayloadIntegrity, name)
	}
	return nil
}

// CountCredentialTokens counts the provider token entries in a
// credentials file: the top-level keys of the JSON object whose value
// is itself an object, which is the shape the sync layer exports (one
// entry per authorized provider). Returns 0 for absent or unparsable
// content rather than failing; the count is reporting, not a gate.
func CountCredentialTokens(content []byte) int {
	if len(content) == 0 {
		return 0
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(content, &entries); err != nil {
		return 0
	}

	count := 0
	for _, raw := range entries {
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) > 0 && trimmed[0] == '{' {
			count++
		}
	}
	return count
}
