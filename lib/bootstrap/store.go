// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/healthsync-project/healthsync/lib/atomicfile"
)

// CreateParams are the inputs to Create.
type CreateParams struct {
	// ExpiresIn is the token validity window in seconds, from
	// ParseExpiry. Must be non-negative.
	ExpiresIn int64

	// StoreDir is the session store directory. Created with mode 0700
	// if absent.
	StoreDir string
}

// Create starts a new bootstrap session: fresh X25519 key pair, fresh
// identifiers, a session record persisted atomically in the store
// directory, and the encoded token for out-of-band delivery. The
// returned session still holds the private key; callers that only
// display results should not retain it.
func Create(params CreateParams) (*Session, string, error) {
	return CreateAt(params, time.Now())
}

// CreateAt is like Create but takes an explicit creation time. This
// supports deterministic testing.
func CreateAt(params CreateParams, now time.Time) (*Session, string, error) {
	if params.ExpiresIn < 0 {
		return nil, "", fmt.Errorf("%w: %d seconds", ErrInvalidDuration, params.ExpiresIn)
	}
	if params.StoreDir == "" {
		return nil, "", fmt.Errorf("store directory is required")
	}

	publicKey, privateKey, err := newKeyPair()
	if err != nil {
		return nil, "", err
	}

	keyID, err := newKeyID()
	if err != nil {
		return nil, "", err
	}

	createdAt := now.UTC().Truncate(time.Second)
	session := &Session{
		Version:     sessionRecordVersion,
		SessionID:   uuid.NewString(),
		KeyID:       keyID,
		PublicKey:   publicKey,
		PrivateKey:  privateKey,
		Fingerprint: Fingerprint(publicKey),
		CreatedAt:   createdAt,
		ExpiresAt:   createdAt.Add(time.Duration(params.ExpiresIn) * time.Second),
	}

	token, err := EncodeToken(session)
	if err != nil {
		return nil, "", err
	}

	// 0700 on the directory and 0600 on the record: the record holds
	// the private key at rest.
	if err := os.MkdirAll(params.StoreDir, 0700); err != nil {
		return nil, "", fmt.Errorf("creating store directory: %w", err)
	}
	if err := writeSessionRecord(params.StoreDir, session); err != nil {
		return nil, "", err
	}

	return session, token, nil
}

// Load resolves a session reference against the store directory. The
// reference may be, tried in this order: a session id, a key id, a
// full bootstrap token, or the base64 public key as it appears in the
// session record. Fails with ErrSessionNotFound when nothing matches.
//
// Token-form references are resolved without an expiry check: an
// archive produced just before expiry may legitimately be imported
// slightly later, and refusing to resolve the session would discard
// valid, already-encrypted work.
func Load(reference, storeDir string) (*Session, error) {
	if reference == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrSessionNotFound)
	}

	// Session id: the record file name.
	if session, err := readSessionRecord(storeDir, reference); err == nil {
		return session, nil
	}

	// Token: decode structurally and follow the embedded session id.
	if strings.HasPrefix(reference, TokenPrefix) {
		details, _, err := parseToken(reference)
		if err != nil {
			return nil, err
		}
		session, err := readSessionRecord(storeDir, details.SessionID)
		if err != nil {
			return nil, fmt.Errorf("%w: token names session %s", ErrSessionNotFound, details.SessionID)
		}
		return session, nil
	}

	// Key id or public key: scan the store.
	sessions, err := List(storeDir)
	if err != nil {
		return nil, err
	}
	for _, session := range sessions {
		if session.KeyID == reference {
			return session, nil
		}
		if base64.StdEncoding.EncodeToString(session.PublicKey) == reference {
			return session, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, reference)
}

// MarkConsumed records a fully successful import on the session,
// setting consumed_at. The record is re-read first: if another
// process consumed the session in the meantime, this fails with
// ErrSessionConsumed instead of silently rewriting, so a benign race
// surfaces as the no-op failure it is.
func MarkConsumed(sessionID, storeDir string) (time.Time, error) {
	return MarkConsumedAt(sessionID, storeDir, time.Now())
}

// MarkConsumedAt is like MarkConsumed but takes an explicit
// consumption time. This supports deterministic testing.
func MarkConsumedAt(sessionID, storeDir string, now time.Time) (time.Time, error) {
	session, err := readSessionRecord(storeDir, sessionID)
	if err != nil {
		return time.Time{}, err
	}
	if session.Consumed() {
		return time.Time{}, fmt.Errorf("%w: at %s", ErrSessionConsumed, session.ConsumedAt.Format(time.RFC3339))
	}

	consumedAt := now.UTC().Truncate(time.Second)
	session.ConsumedAt = &consumedAt

	if err := writeSessionRecord(storeDir, session); err != nil {
		return time.Time{}, err
	}
	return consumedAt, nil
}

// List returns every session record in the store directory, sorted by
// creation time (oldest first), with the session id as tie-breaker
// for stable output. A missing store directory is an empty store, not
// an error.
func List(storeDir string) ([]*Session, error) {
	entries, err := os.ReadDir(storeDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading store directory: %w", err)
	}

	var sessions []*Session
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		session, err := readSessionRecord(storeDir, strings.TrimSuffix(name, ".json"))
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
		}
		return sessions[i].SessionID < sessions[j].SessionID
	})
	return sessions, nil
}

// PruneExpired removes expired sessions that were never consumed and
// returns their session ids. Consumed records are kept: they are the
// audit trail of what was imported when. Active records are never
// touched.
func PruneExpired(storeDir string, now time.Time) ([]string, error) {
	sessions, err := List(storeDir)
	if err != nil {
		return nil, err
	}

	var pruned []string
	for _, session := range sessions {
		if session.Consumed() || !session.Expired(now) {
			continue
		}
		if err := os.Remove(sessionRecordPath(storeDir, session.SessionID)); err != nil {
			return pruned, fmt.Errorf("removing session %s: %w", session.SessionID, err)
		}
		pruned = append(pruned, session.SessionID)
	}
	return pruned, nil
}

// sessionRecordPath returns the record file path for a session id.
func sessionRecordPath(storeDir, sessionID string) string {
	return filepath.Join(storeDir, sessionID+".json")
}

// readSessionRecord loads and sanity-checks one session record. A
// missing file maps to ErrSessionNotFound.
func readSessionRecord(storeDir, sessionID string) (*Session, error) {
	// Reject references that could escape the store directory before
	// they reach the filesystem.
	if sessionID == "" || strings.ContainsAny(sessionID, "/\\") || strings.Contains(sessionID, "..") {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, sessionID)
	}

	path := sessionRecordPath(storeDir, sessionID)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("reading session record: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("parsing session record %s: %w", path, err)
	}
	if session.Version != sessionRecordVersion {
		return nil, fmt.Errorf("session record %s: version %d is not supported", path, session.Version)
	}
	if session.SessionID != sessionID {
		return nil, fmt.Errorf("session record %s: holds session %s", path, session.SessionID)
	}

	return &session, nil
}

// writeSessionRecord persists a session record atomically, mode 0600.
func writeSessionRecord(storeDir string, session *Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session record: %w", err)
	}
	data = append(data, '\n')

	if err := atomicfile.WriteFile(sessionRecordPath(storeDir, session.SessionID), data, 0600); err != nil {
		return fmt.Errorf("writing session record: %w", err)
	}
	return nil
}
