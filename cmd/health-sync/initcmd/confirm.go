// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

package initcmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/healthsync-project/healthsync/cmd/health-sync/cli"
)

// confirmOverwrite asks the operator to confirm replacing the listed
// files. Returns nil when nothing exists at any of the paths, when the
// operator answers yes, or when skip is set (--yes). A non-terminal
// stdin without --yes is a validation error rather than a hang; a
// declined prompt aborts with exit code 1 and no further output from
// the caller.
func confirmOverwrite(paths []string, skip bool) error {
	var existing []string
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			existing = append(existing, path)
		}
	}
	if len(existing) == 0 || skip {
		return nil
	}

	stdinFileDescriptor := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFileDescriptor) {
		return cli.Validation("refusing to overwrite %d existing file(s) without confirmation: stdin is not a terminal (use --yes)", len(existing))
	}

	fmt.Fprintln(os.Stderr, "The import will replace these files (backups are taken first):")
	for _, path := range existing {
		fmt.Fprintf(os.Stderr, "  %s\n", path)
	}
	fmt.Fprint(os.Stderr, "Continue? [y/N]: ")

	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return cli.Internal("reading confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	}

	fmt.Fprintln(os.Stderr, "Import aborted; nothing was written and the session remains usable.")
	return &cli.ExitError{Code: 1}
}
