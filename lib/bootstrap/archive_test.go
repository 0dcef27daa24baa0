// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// validTestEnvelope produces a real sealed envelope so validation
// subtests corrupt genuine structure rather than hand-built fields.
func validTestEnvelope(t *testing.T) *Envelope {
	t.Helper()

	session := tokenTestSession(t)
	envelope, err := Encrypt(cryptoTestPayload(t), detailsOf(t, session))
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	return envelope
}

func TestWriteAndReadArchive(t *testing.T) {
	directory := t.TempDir()
	archivePath := filepath.Join(directory, "bootstrap-archive.json")

	original := validTestEnvelope(t)
	if err := WriteArchive(archivePath, original); err != nil {
		t.Fatalf("WriteArchive failed: %v", err)
	}

	// Verify file permissions are 0600.
	info, err := os.Stat(archivePath)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("permissions = %o, want 0600", info.Mode().Perm())
	}

	// Verify the file contains valid JSON with the schema marker.
	data, err := os.ReadFile(archivePath)
	if err != nil {
		t.Fatalf("read file failed: %v", err)
	}
	var rawCheck map[string]any
	if err := json.Unmarshal(data, &rawCheck); err != nil {
		t.Fatalf("file is not valid JSON: %v", err)
	}
	if rawCheck["schema"] != ArchiveSchema {
		t.Errorf("schema field = %v, want %q", rawCheck["schema"], ArchiveSchema)
	}

	// Read it back and compare.
	loaded, err := ReadArchive(archivePath)
	if err != nil {
		t.Fatalf("ReadArchive failed: %v", err)
	}
	if loaded.SessionID != original.SessionID {
		t.Errorf("session_id = %q, want %q", loaded.SessionID, original.SessionID)
	}
	if loaded.KeyID != original.KeyID {
		t.Errorf("key_id = %q, want %q", loaded.KeyID, original.KeyID)
	}
	if !bytes.Equal(loaded.SenderEphemeralPublicKey, original.SenderEphemeralPublicKey) {
		t.Error("sender ephemeral public key changed across the roundtrip")
	}
	if !bytes.Equal(loaded.Salt, original.Salt) {
		t.Error("salt changed across the roundtrip")
	}
	if !bytes.Equal(loaded.Nonce, original.Nonce) {
		t.Error("nonce changed across the roundtrip")
	}
	if !bytes.Equal(loaded.Ciphertext, original.Ciphertext) {
		t.Error("ciphertext changed across the roundtrip")
	}
	if !bytes.Equal(loaded.Tag, original.Tag) {
		t.Error("tag changed across the roundtrip")
	}
	if loaded.AAD != original.AAD {
		t.Errorf("aad = %+v, want %+v", loaded.AAD, original.AAD)
	}

	// The loaded envelope must still decrypt.
	if _, err := Decrypt(loaded, tokenTestSession(t)); err == nil {
		t.Error("decrypt with a different session key succeeded")
	}
}

func TestArchiveRoundtripDecrypts(t *testing.T) {
	directory := t.TempDir()
	archivePath := filepath.Join(directory, "bootstrap-archive.json")

	session := tokenTestSession(t)
	envelope, err := Encrypt(cryptoTestPayload(t), detailsOf(t, session))
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	if err := WriteArchive(archivePath, envelope); err != nil {
		t.Fatalf("WriteArchive failed: %v", err)
	}
	loaded, err := ReadArchive(archivePath)
	if err != nil {
		t.Fatalf("ReadArchive failed: %v", err)
	}

	payload, err := Decrypt(loaded, session)
	if err != nil {
		t.Fatalf("Decrypt() after archive roundtrip error: %v", err)
	}
	if !payload.Files.Config.Present {
		t.Error("decrypted payload lost its config entry")
	}
}

func TestEnvelopeValidation(t *testing.T) {
	t.Run("valid envelope", func(t *testing.T) {
		envelope := validTestEnvelope(t)
		if err := validateEnvelope(envelope); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("wrong schema", func(t *testing.T) {
		envelope := validTestEnvelope(t)
		envelope.Schema = "health-sync-remote-archive-v9"
		if err := validateEnvelope(envelope); err == nil {
			t.Fatal("expected error for wrong schema")
		}
	})

	t.Run("unsupported version", func(t *testing.T) {
		envelope := validTestEnvelope(t)
		envelope.Version = 99
		if err := validateEnvelope(envelope); err == nil {
			t.Fatal("expected error for unsupported version")
		}
	})

	t.Run("missing session id", func(t *testing.T) {
		envelope := validTestEnvelope(t)
		envelope.SessionID = ""
		if err := validateEnvelope(envelope); err == nil {
			t.Fatal("expected error for missing session_id")
		}
	})

	t.Run("missing key id", func(t *testing.T) {
		envelope := validTestEnvelope(t)
		envelope.KeyID = ""
		if err := validateEnvelope(envelope); err == nil {
			t.Fatal("expected error for missing key_id")
		}
	})

	t.Run("short sender key", func(t *testing.T) {
		envelope := validTestEnvelope(t)
		envelope.SenderEphemeralPublicKey = envelope.SenderEphemeralPublicKey[:16]
		if err := validateEnvelope(envelope); err == nil {
			t.Fatal("expected error for short sender key")
		}
	})

	t.Run("short salt", func(t *testing.T) {
		envelope := validTestEnvelope(t)
		envelope.Salt = envelope.Salt[:16]
		if err := validateEnvelope(envelope); err == nil {
			t.Fatal("expected error for short salt")
		}
	})

	t.Run("short nonce", func(t *testing.T) {
		envelope := validTestEnvelope(t)
		envelope.Nonce = envelope.Nonce[:8]
		if err := validateEnvelope(envelope); err == nil {
			t.Fatal("expected error for short nonce")
		}
	})

	t.Run("short tag", func(t *testing.T) {
		envelope := validTestEnvelope(t)
		envelope.Tag = envelope.Tag[:15]
		if err := validateEnvelope(envelope); err == nil {
			t.Fatal("expected error for short tag")
		}
	})

	t.Run("empty ciphertext", func(t *testing.T) {
		envelope := validTestEnvelope(t)
		envelope.Ciphertext = nil
		if err := validateEnvelope(envelope); err == nil {
			t.Fatal("expected error for empty ciphertext")
		}
	})

	t.Run("aad session mismatch", func(t *testing.T) {
		envelope := validTestEnvelope(t)
		envelope.AAD.SessionID = "11111111-2222-4333-8444-555555555555"
		if err := validateEnvelope(envelope); err == nil {
			t.Fatal("expected error for aad session_id mismatch")
		}
	})

	t.Run("aad key mismatch", func(t *testing.T) {
		envelope := validTestEnvelope(t)
		envelope.AAD.KeyID = "hsk-ffffffffffffffff"
		if err := validateEnvelope(envelope); err == nil {
			t.Fatal("expected error for aad key_id mismatch")
		}
	})

	t.Run("aad digest not hex", func(t *testing.T) {
		envelope := validTestEnvelope(t)
		envelope.AAD.PayloadSHA256 = "zz" + envelope.AAD.PayloadSHA256[2:]
		if err := validateEnvelope(envelope); err == nil {
			t.Fatal("expected error for non-hex payload digest")
		}
	})

	t.Run("aad digest wrong length", func(t *testing.T) {
		envelope := validTestEnvelope(t)
		envelope.AAD.PayloadSHA256 = envelope.AAD.PayloadSHA256[:32]
		if err := validateEnvelope(envelope); err == nil {
			t.Fatal("expected error for short payload digest")
		}
	})
}

func TestWriteArchive_InvalidEnvelope(t *testing.T) {
	directory := t.TempDir()
	archivePath := filepath.Join(directory, "bootstrap-archive.json")

	envelope := validTestEnvelope(t)
	envelope.Schema = "wrong"
	if err := WriteArchive(archivePath, envelope); err == nil {
		t.Fatal("expected error for invalid envelope")
	}

	// File should not have been created.
	if _, err := os.Stat(archivePath); !os.IsNotExist(err) {
		t.Error("file should not exist after failed write")
	}
}

func TestReadArchive_FileNotFound(t *testing.T) {
	_, err := ReadArchive(filepath.Join(t.TempDir(), "no-such-archive.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want it to match os.ErrNotExist", err)
	}
}

func TestReadArchive_InvalidJSON(t *testing.T) {
	directory := t.TempDir()
	archivePath := filepath.Join(directory, "bootstrap-archive.json")
	if err := os.WriteFile(archivePath, []byte("not json"), 0600); err != nil {
		t.Fatalf("write file failed: %v", err)
	}

	_, err := ReadArchive(archivePath)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestReadArchive_RejectsCorruptStructure(t *testing.T) {
	directory := t.TempDir()
	archivePath := filepath.Join(directory, "bootstrap-archive.json")

	envelope := validTestEnvelope(t)
	if err := WriteArchive(archivePath, envelope); err != nil {
		t.Fatalf("WriteArchive failed: %v", err)
	}

	// Rewrite the file with a truncated salt; ReadArchive must reject
	// it during validation, before any decryption attempt.
	data, err := os.ReadFile(archivePath)
	if err != nil {
		t.Fatalf("read file failed: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("parsing archive: %v", err)
	}
	raw["salt"], err = json.Marshal([]byte{0x01, 0x02})
	if err != nil {
		t.Fatalf("encoding truncated salt: %v", err)
	}
	corrupted, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("encoding corrupted archive: %v", err)
	}
	if err := os.WriteFile(archivePath, corrupted, 0600); err != nil {
		t.Fatalf("write file failed: %v", err)
	}

	if _, err := ReadArchive(archivePath); err == nil {
		t.Fatal("expected error for truncated salt")
	}
}
