// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

package initcmd

import (
	"path/filepath"
	"testing"
)

func TestResolveStoreDir(t *testing.T) {
	t.Run("explicit flag wins", func(t *testing.T) {
		t.Setenv(storeDirEnv, "/ignored-by-flag")
		dir, err := resolveStoreDir("/explicit/store")
		if err != nil {
			t.Fatalf("resolveStoreDir() error: %v", err)
		}
		if dir != "/explicit/store" {
			t.Errorf("resolveStoreDir() = %q, want %q", dir, "/explicit/store")
		}
	})

	t.Run("environment overrides the default", func(t *testing.T) {
		t.Setenv(storeDirEnv, "/from-environment")
		dir, err := resolveStoreDir("")
		if err != nil {
			t.Fatalf("resolveStoreDir() error: %v", err)
		}
		if dir != "/from-environment" {
			t.Errorf("resolveStoreDir() = %q, want %q", dir, "/from-environment")
		}
	})

	t.Run("defaults under the home directory", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		t.Setenv(storeDirEnv, "")
		dir, err := resolveStoreDir("")
		if err != nil {
			t.Fatalf("resolveStoreDir() error: %v", err)
		}
		want := filepath.Join(home, ".health-sync", "remote-bootstrap")
		if dir != want {
			t.Errorf("resolveStoreDir() = %q, want %q", dir, want)
		}
	})
}
