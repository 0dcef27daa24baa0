// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// backupTimeFormat is the UTC timestamp embedded in backup file names,
// for example "config.toml.bak-20260314T091205Z". Second precision;
// the trailing Z is literal (the time is always converted to UTC
// before formatting).
const backupTimeFormat = "20060102T150405Z"

// WriteFile atomically replaces the file at path with data. The data
// is written to a temporary file in the same directory (created with
// the given mode), fsynced for durability, and renamed into place.
// Readers never see a partial write.
//
// The parent directory must already exist. On any failure the
// temporary file is removed and path is left untouched.
func WriteFile(path string, data []byte, mode os.FileMode) error {
	temporaryPath := path + ".tmp"

	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}

	// Write, sync, close, in that order. If any step fails, remove the
	// temporary file and report the first error.
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary file: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming file into place: %w", err)
	}

	// Sync the parent directory so the rename is durable. This matters
	// when the machine loses power between rename and the OS flushing
	// directory metadata.
	parentDirectory, err := os.Open(filepath.Dir(path))
	if err == nil {
		parentDirectory.Sync()
		parentDirectory.Close()
	}

	return nil
}

// Backup copies the file at path to "<path>.bak-<timestamp>" and
// returns the backup path. The backup preserves the original file's
// mode and is written atomically. The timestamp is now in UTC at
// second precision, so repeated backups of the same file sort
// chronologically by name.
//
// When the file does not exist, the returned error wraps
// os.ErrNotExist (testable with errors.Is); callers skip backups for
// paths that have nothing to preserve.
func Backup(path string, now time.Time) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("inspecting file for backup: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("backing up %s: is a directory", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading file for backup: %w", err)
	}

	backupPath := path + ".bak-" + now.UTC().Format(backupTimeFormat)
	if err := WriteFile(backupPath, data, info.Mode().Perm()); err != nil {
		return "", fmt.Errorf("writing backup %s: %w", backupPath, err)
	}

	return backupPath, nil
}
