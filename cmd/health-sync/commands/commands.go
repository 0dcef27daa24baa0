// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the health-sync CLI command tree. The binary
// in cmd/health-sync is a thin wrapper around [Root]; keeping the tree
// here lets tests walk the full production tree without a process.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/healthsync-project/healthsync/cmd/health-sync/cli"
	"github.com/healthsync-project/healthsync/cmd/health-sync/initcmd"
	"github.com/healthsync-project/healthsync/lib/version"
)

// Root builds and returns the complete health-sync command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "health-sync",
		Description: `health-sync: mirror personal health data from provider APIs.

The init commands set this machine up, including moving an existing
config and its credentials over from another machine without exposing
them to the channel in between.`,
		Subcommands: []*cli.Command{
			initcmd.Command(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("health-sync %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Start receiving a setup from another machine",
				Command:     "health-sync init remote bootstrap",
			},
			{
				Description: "Package this machine's setup for a bootstrap token",
				Command:     "health-sync init remote run hsr1.26qk...",
			},
			{
				Description: "Finish the transfer with the copied archive",
				Command:     "health-sync init remote finish hsk-a1b2c3d4 health-sync-archive-6b3f2a90.json",
			},
			{
				Description: "Inspect this machine's bootstrap sessions",
				Command:     "health-sync init remote sessions",
			},
		},
	}
}
