// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

package initcmd

import (
	"os"
	"path/filepath"

	"github.com/healthsync-project/healthsync/cmd/health-sync/cli"
)

// storeDirEnv overrides the default session store location when set.
const storeDirEnv = "HEALTH_SYNC_REMOTE_BOOTSTRAP_DIR"

// resolveStoreDir picks the session store directory. An explicit --store-dir
// flag wins, then the HEALTH_SYNC_REMOTE_BOOTSTRAP_DIR environment variable,
// then ~/.health-sync/remote-bootstrap.
func resolveStoreDir(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if fromEnv := os.Getenv(storeDirEnv); fromEnv != "" {
		return fromEnv, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", cli.Internal("resolving home directory for the session store: %w (pass --store-dir or set %s)", err, storeDirEnv)
	}
	return filepath.Join(home, ".health-sync", "remote-bootstrap"), nil
}
