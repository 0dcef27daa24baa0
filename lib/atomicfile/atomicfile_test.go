// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

package atomicfile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteFileRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	content := []byte("{\"session_id\":\"abc\"}\n")

	if err := WriteFile(path, content, 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("content = %q, want %q", got, content)
	}
}

func TestWriteFileOverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := WriteFile(path, []byte("first"), 0600); err != nil {
		t.Fatalf("WriteFile first: %v", err)
	}
	if err := WriteFile(path, []byte("second"), 0600); err != nil {
		t.Fatalf("WriteFile second: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("content = %q, want %q (second write should overwrite)", got, "second")
	}
}

func TestWriteFilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	if err := WriteFile(path, []byte("secret"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}

	// Mask out file type bits, check only permission bits.
	permissions := info.Mode().Perm()
	if permissions != 0600 {
		t.Errorf("permissions = %04o, want 0600", permissions)
	}
}

func TestWriteFileNoTemporaryFileLeftBehind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.json")

	if err := WriteFile(path, []byte("data"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	temporaryPath := path + ".tmp"
	if _, err := os.Stat(temporaryPath); !os.IsNotExist(err) {
		t.Errorf("temporary file %s still exists after successful WriteFile", temporaryPath)
	}
}

func TestWriteFileParentDirectoryMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "subdir", "state.json")

	err := WriteFile(path, []byte("data"), 0600)
	if err == nil {
		t.Fatal("WriteFile to nonexistent parent directory should fail")
	}
}

func TestWriteFileFailureRemovesTemporaryFile(t *testing.T) {
	directory := t.TempDir()

	// The destination is a directory containing a file, so the final
	// rename cannot succeed. The temporary file must not be left
	// behind.
	path := filepath.Join(directory, "occupied")
	if err := os.Mkdir(path, 0700); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(path, "inner"), []byte("x"), 0600); err != nil {
		t.Fatalf("WriteFile inner: %v", err)
	}

	if err := WriteFile(path, []byte("data"), 0600); err == nil {
		t.Fatal("WriteFile over a non-empty directory should fail")
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file %s.tmp still exists after failed WriteFile", path)
	}
}

func TestBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "health-sync.toml")
	content := []byte("[app]\ndb = \"./health.sqlite\"\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	stamp := time.Date(2026, 3, 14, 9, 12, 5, 0, time.UTC)
	backupPath, err := Backup(path, stamp)
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}

	want := path + ".bak-20260314T091205Z"
	if backupPath != want {
		t.Errorf("backup path = %q, want %q", backupPath, want)
	}

	got, err := os.ReadFile(backupPath)
	if err != nil {
		t.Fatalf("ReadFile backup: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("backup content = %q, want %q", got, content)
	}

	// The original must still exist with its content.
	original, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile original: %v", err)
	}
	if !bytes.Equal(original, content) {
		t.Errorf("original content = %q, want %q", original, content)
	}
}

func TestBackupPreservesMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	backupPath, err := Backup(path, time.Now())
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}

	info, err := os.Stat(backupPath)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if permissions := info.Mode().Perm(); permissions != 0600 {
		t.Errorf("backup permissions = %04o, want 0600", permissions)
	}
}

func TestBackupNonexistent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.toml")

	_, err := Backup(path, time.Now())
	if err == nil {
		t.Fatal("Backup of nonexistent file should return an error")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist, got: %v", err)
	}
}

func TestBackupDirectory(t *testing.T) {
	directory := t.TempDir()

	_, err := Backup(directory, time.Now())
	if err == nil {
		t.Fatal("Backup of a directory should return an error")
	}
	if !strings.Contains(err.Error(), "is a directory") {
		t.Errorf("error %q should mention directory", err)
	}
}

func TestBackupTimestampUTC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	// A non-UTC time must be converted before formatting so the name
	// carries the true instant.
	eastern := time.FixedZone("UTC-5", -5*60*60)
	stamp := time.Date(2026, 3, 14, 4, 12, 5, 0, eastern)

	backupPath, err := Backup(path, stamp)
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}

	want := path + ".bak-20260314T091205Z"
	if backupPath != want {
		t.Errorf("backup path = %q, want %q", backupPath, want)
	}
}
