// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

package initcmd

import (
	"github.com/healthsync-project/healthsync/cmd/health-sync/cli"
)

func remoteCommand() *cli.Command {
	return &cli.Command{
		Name:    "remote",
		Summary: "Move a health-sync setup between machines",
		Description: "Hand a working health-sync config and its credentials from one machine\n" +
			"to another over any channel, without the channel ever seeing them.\n\n" +
			"The receiving machine creates a session (bootstrap) and shares the\n" +
			"printed token. The sending machine packages its files against that\n" +
			"token (run) and moves the resulting archive across. The receiving\n" +
			"machine then installs the files (finish), which uses the session up.",
		Usage: "health-sync init remote <command> [flags]",
		Examples: []cli.Example{
			{
				Description: "on the receiving machine",
				Command:     "health-sync init remote bootstrap",
			},
			{
				Description: "on the machine that has the files",
				Command:     "health-sync init remote run hsr1.26qk...",
			},
			{
				Description: "back on the receiving machine, with the copied archive",
				Command:     "health-sync init remote finish hsk-a1b2c3d4 health-sync-archive-6b3f2a90.json",
			},
		},
		Subcommands: []*cli.Command{
			bootstrapCommand(),
			runCommand(),
			finishCommand(),
			sessionsCommand(),
		},
	}
}
