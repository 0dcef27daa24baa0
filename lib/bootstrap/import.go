// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"fmt"
	"os"
	"time"

	"github.com/healthsync-project/healthsync/lib/atomicfile"
)

// ImportParams are the inputs to Import.
type ImportParams struct {
	// SessionRef is any reference form Load accepts: session id, key
	// id, token, or base64 public key.
	SessionRef string

	// ArchivePath is the transfer archive produced on the user
	// machine.
	ArchivePath string

	// TargetConfigPath and TargetCredsPath are where the decrypted
	// files land. Existing files are backed up before being replaced.
	TargetConfigPath string
	TargetCredsPath  string

	// StoreDir is the session store directory.
	StoreDir string
}

// ImportResult reports what a successful import did.
type ImportResult struct {
	SessionID        string    `json:"session_id"`
	KeyID            string    `json:"key_id"`
	WrittenPaths     []string  `json:"written_paths"`
	BackupPaths      []string  `json:"backup_paths"`
	CredentialTokens int       `json:"credential_tokens"`
	ConsumedAt       time.Time `json:"consumed_at"`
}

// Import performs the receiving leg of the handshake. The steps run
// in a fixed order, each a hard gate before the next:
//
//  1. Resolve the session (ErrSessionNotFound).
//  2. Refuse consumed sessions (ErrSessionConsumed), before any key
//     material is touched.
//  3. Read the archive and check the envelope's session and key ids
//     against the resolved session (ErrSessionMismatch), independent
//     of the crypto.
//  4. Decrypt and verify; failures propagate unchanged.
//  5. Back up every target path that exists and is about to be
//     written.
//  6. Write the config (always) and the credentials (when present in
//     the payload) atomically, mode 0600.
//  7. Only after all writes succeed, mark the session consumed.
//
// If a write fails partway, the session is not marked consumed, so
// the operator can retry with the same archive. Expiry is deliberately
// not re-checked here: it gates token decoding during the sending
// run, and an archive produced just before expiry remains importable.
func Import(params ImportParams) (*ImportResult, error) {
	return ImportAt(params, time.Now())
}

// ImportAt is like Import but takes an explicit time, used for the
// backup suffixes and the consumption timestamp. This supports
// deterministic testing.
func ImportAt(params ImportParams, now time.Time) (*ImportResult, error) {
	if params.TargetConfigPath == "" || params.TargetCredsPath == "" {
		return nil, fmt.Errorf("target config and credentials paths are required")
	}

	session, err := Load(params.SessionRef, params.StoreDir)
	if err != nil {
		return nil, err
	}

	if session.Consumed() {
		return nil, fmt.Errorf("%w: session %s consumed at %s", ErrSessionConsumed,
			session.SessionID, session.ConsumedAt.Format(time.RFC3339))
	}

	envelope, err := ReadArchive(params.ArchivePath)
	if err != nil {
		return nil, err
	}

	if envelope.SessionID != session.SessionID || envelope.KeyID != session.KeyID {
		return nil, fmt.Errorf("%w: archive is for session %s (key %s), reference resolved session %s (key %s)",
			ErrSessionMismatch, envelope.SessionID, envelope.KeyID, session.SessionID, session.KeyID)
	}

	payload, err := Decrypt(envelope, session)
	if err != nil {
		return nil, err
	}

	// Plan the writes before touching anything: config always, creds
	// only when the payload carries them.
	type write struct {
		path    string
		content []byte
	}
	writes := []write{{params.TargetConfigPath, payload.Files.Config.Content}}
	if payload.Files.Creds.Present {
		writes = append(writes, write{params.TargetCredsPath, payload.Files.Creds.Content})
	}

	var backupPaths []string
	for _, w := range writes {
		if _, err := os.Stat(w.path); err != nil {
			continue
		}
		backupPath, err := atomicfile.Backup(w.path, now)
		if err != nil {
			return nil, fmt.Errorf("%w: backing up %s: %v", ErrFileWrite, w.path, err)
		}
		backupPaths = append(backupPaths, backupPath)
	}

	var writtenPaths []string
	for _, w := range writes {
		if err := atomicfile.WriteFile(w.path, w.content, 0600); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrFileWrite, w.path, err)
		}
		writtenPaths = append(writtenPaths, w.path)
	}

	consumedAt, err := MarkConsumedAt(session.SessionID, params.StoreDir, now)
	if err != nil {
		return nil, err
	}

	return &ImportResult{
		SessionID:        session.SessionID,
		KeyID:            session.KeyID,
		WrittenPaths:     writtenPaths,
		BackupPaths:      backupPaths,
		CredentialTokens: CountCredentialTokens(payload.Files.Creds.Content),
		ConsumedAt:       consumedAt,
	}, nil
}
