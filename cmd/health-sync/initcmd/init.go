// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

package initcmd

import (
	"context"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/healthsync-project/healthsync/cmd/health-sync/cli"
)

// initParams carries the alias flags that map "init" straight onto the
// remote bootstrap operations, plus every flag those operations accept,
// so scripted callers can avoid the nested command syntax entirely.
type initParams struct {
	cli.JSONOutput
	RemoteBootstrap bool   `flag:"remote-bootstrap" desc:"create a bootstrap session (same as 'init remote bootstrap')"`
	RemoteToken     string `flag:"remote" desc:"package local files for this bootstrap token (same as 'init remote run <token>')"`
	RemoteFinish    string `flag:"remote-bootstrap-finish" desc:"import the archive named as the argument for this session reference (same as 'init remote finish <ref> <archive>')"`

	ExpiresIn    string `flag:"expires-in" desc:"token validity window: seconds, or a number with an s, m, h, or d suffix" default:"24h"`
	StoreDir     string `flag:"store-dir" desc:"session store directory (default: $HEALTH_SYNC_REMOTE_BOOTSTRAP_DIR, then ~/.health-sync/remote-bootstrap)"`
	Config       string `flag:"config" desc:"config file to package" default:"./health-sync.toml"`
	Creds        string `flag:"creds" desc:"credentials file to package" default:"./health-sync-credentials.json"`
	Output       string `flag:"output,o" desc:"transfer archive path (default: health-sync-archive-<session>.json)"`
	KeepLocal    bool   `flag:"keep-local" desc:"keep the local files after packaging"`
	PurgeLocal   bool   `flag:"purge-local" desc:"remove the local files after packaging (the default)"`
	TargetConfig string `flag:"target-config" desc:"path for the imported config file" default:"./health-sync.toml"`
	TargetCreds  string `flag:"target-creds" desc:"path for the imported credentials file" default:"./health-sync-credentials.json"`
	Yes          bool   `flag:"yes,y" desc:"overwrite existing target files without prompting"`
}

// Command returns the "init" command group.
func Command() *cli.Command {
	params := &initParams{}
	return &cli.Command{
		Name:    "init",
		Summary: "Set up health-sync on this machine",
		Description: "Set up health-sync on this machine. The remote subcommands move an\n" +
			"existing setup over from another machine; the --remote-bootstrap,\n" +
			"--remote, and --remote-bootstrap-finish flags are one-line aliases\n" +
			"for the same operations.",
		Usage: "health-sync init <command> [flags]",
		Examples: []cli.Example{
			{
				Description: "start a transfer onto this machine (alias form)",
				Command:     "health-sync init --remote-bootstrap",
			},
			{
				Description: "package this machine's files for a token (alias form)",
				Command:     "health-sync init --remote hsr1.26qk...",
			},
			{
				Description: "import an archive for a session (alias form)",
				Command:     "health-sync init --remote-bootstrap-finish hsk-a1b2c3d4 archive.json",
			},
		},
		Subcommands: []*cli.Command{
			remoteCommand(),
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("init", params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			return dispatchInitAlias(params, args, logger)
		},
	}
}

// dispatchInitAlias routes the alias flags to the operation each one
// names. Exactly one alias must be selected; the shared flags carry
// over unchanged.
func dispatchInitAlias(params *initParams, args []string, logger *slog.Logger) error {
	selected := 0
	if params.RemoteBootstrap {
		selected++
	}
	if params.RemoteToken != "" {
		selected++
	}
	if params.RemoteFinish != "" {
		selected++
	}
	switch {
	case selected == 0:
		return cli.Validation("nothing to do: pass --remote-bootstrap, --remote <token>, or --remote-bootstrap-finish <ref> <archive>, or use the subcommands under 'health-sync init remote'")
	case selected > 1:
		return cli.Validation("--remote-bootstrap, --remote, and --remote-bootstrap-finish are mutually exclusive")
	}

	switch {
	case params.RemoteBootstrap:
		if len(args) != 0 {
			return cli.Validation("unexpected argument %q", args[0])
		}
		return executeBootstrap(&bootstrapParams{
			JSONOutput: params.JSONOutput,
			ExpiresIn:  params.ExpiresIn,
			StoreDir:   params.StoreDir,
		}, logger)

	case params.RemoteToken != "":
		if len(args) != 0 {
			return cli.Validation("unexpected argument %q", args[0])
		}
		return executeRun(&runParams{
			JSONOutput: params.JSONOutput,
			Config:     params.Config,
			Creds:      params.Creds,
			Output:     params.Output,
			KeepLocal:  params.KeepLocal,
			PurgeLocal: params.PurgeLocal,
		}, params.RemoteToken, logger)

	default:
		if len(args) == 0 {
			return cli.Validation("--remote-bootstrap-finish takes the archive path as its argument")
		}
		if len(args) > 1 {
			return cli.Validation("unexpected argument %q", args[1])
		}
		return executeFinish(&finishParams{
			JSONOutput:   params.JSONOutput,
			TargetConfig: params.TargetConfig,
			TargetCreds:  params.TargetCreds,
			StoreDir:     params.StoreDir,
			Yes:          params.Yes,
		}, params.RemoteFinish, args[0], logger)
	}
}
