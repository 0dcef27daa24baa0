// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

package initcmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/healthsync-project/healthsync/cmd/health-sync/cli"
	"github.com/healthsync-project/healthsync/lib/bootstrap"
)

type finishParams struct {
	cli.JSONOutput
	TargetConfig string `flag:"target-config" desc:"path for the imported config file" default:"./health-sync.toml"`
	TargetCreds  string `flag:"target-creds" desc:"path for the imported credentials file" default:"./health-sync-credentials.json"`
	StoreDir     string `flag:"store-dir" desc:"session store directory (default: $HEALTH_SYNC_REMOTE_BOOTSTRAP_DIR, then ~/.health-sync/remote-bootstrap)"`
	Yes          bool   `flag:"yes,y" desc:"overwrite existing target files without prompting"`
}

func finishCommand() *cli.Command {
	params := &finishParams{}
	return &cli.Command{
		Name:    "finish",
		Summary: "Import a transfer archive and consume its session",
		Description: "Decrypt a transfer archive with the session created by bootstrap on\n" +
			"this machine and install the config and credentials it carries.\n" +
			"Existing target files are backed up first. A session can finish\n" +
			"exactly once; afterwards its token is useless.",
		Usage: "health-sync init remote finish <session-ref> <archive-path> [flags]",
		Examples: []cli.Example{
			{
				Description: "import by key id, as printed by run on the other machine",
				Command:     "health-sync init remote finish hsk-a1b2c3d4 health-sync-archive-6b3f2a90.json",
			},
			{
				Description: "import to explicit target paths without prompting",
				Command:     "health-sync init remote finish hsk-a1b2c3d4 archive.json --target-config /etc/health-sync.toml --yes",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("finish", params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			switch len(args) {
			case 0:
				return cli.Validation("the session reference and the archive path are required")
			case 1:
				return cli.Validation("the archive path is required after the session reference")
			case 2:
			default:
				return cli.Validation("unexpected argument %q", args[2])
			}
			return executeFinish(params, args[0], args[1], logger)
		},
	}
}

func executeFinish(params *finishParams, sessionRef, archivePath string, logger *slog.Logger) error {
	logger = logger.With("command", "finish")
	result, err := performFinish(params, sessionRef, archivePath)
	if err != nil {
		return err
	}
	logger.Debug("transfer archive imported",
		"session_id", result.SessionID,
		"written", len(result.WrittenPaths),
		"backups", len(result.BackupPaths))

	if done, err := params.EmitJSON(result); done || err != nil {
		return err
	}
	printFinishResult(result)
	return nil
}

// performFinish runs the receiving leg: preflight checks, the
// overwrite confirmation, then the import itself.
func performFinish(params *finishParams, sessionRef, archivePath string) (*bootstrap.ImportResult, error) {
	storeDir, err := resolveStoreDir(params.StoreDir)
	if err != nil {
		return nil, err
	}

	// Fail before prompting when the import cannot possibly succeed:
	// unknown or used-up session, or no archive file. Import re-checks
	// all of this in order; these lookups are read-only.
	session, err := bootstrap.Load(sessionRef, storeDir)
	if err != nil {
		return nil, commandError(err)
	}
	if session.Consumed() {
		return nil, commandError(fmt.Errorf("session %s: %w", session.SessionID, bootstrap.ErrSessionConsumed))
	}
	if _, err := os.Stat(archivePath); err != nil {
		return nil, commandError(fmt.Errorf("reading archive: %w", err))
	}

	if err := confirmOverwrite([]string{params.TargetConfig, params.TargetCreds}, params.Yes); err != nil {
		return nil, err
	}

	result, err := bootstrap.Import(bootstrap.ImportParams{
		SessionRef:       sessionRef,
		ArchivePath:      archivePath,
		TargetConfigPath: params.TargetConfig,
		TargetCredsPath:  params.TargetCreds,
		StoreDir:         storeDir,
	})
	if err != nil {
		return nil, commandError(err)
	}
	return result, nil
}

func printFinishResult(result *bootstrap.ImportResult) {
	fmt.Printf("Import complete; session %s is now consumed.\n\n", result.SessionID)

	fmt.Printf("  Wrote:")
	for i, path := range result.WrittenPaths {
		if i == 0 {
			fmt.Printf(" %s\n", path)
			continue
		}
		fmt.Printf("         %s\n", path)
	}
	if result.CredentialTokens > 0 {
		noun := "provider tokens"
		if result.CredentialTokens == 1 {
			noun = "provider token"
		}
		fmt.Printf("  Credentials carry %d %s.\n", result.CredentialTokens, noun)
	}
	if len(result.WrittenPaths) == 1 {
		fmt.Printf("  The archive carried no credentials file; only the config was written.\n")
	}
	if len(result.BackupPaths) > 0 {
		fmt.Printf("  Backups:")
		for i, path := range result.BackupPaths {
			if i == 0 {
				fmt.Printf(" %s\n", path)
				continue
			}
			fmt.Printf("           %s\n", path)
		}
	}

	fmt.Printf("\nThe bootstrap token for this session no longer works and can be\ndiscarded.\n")
}
