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
	"github.com/healthsync-project/healthsync/lib/version"
)

type runParams struct {
	cli.JSONOutput
	Config     string `flag:"config" desc:"config file to package" default:"./health-sync.toml"`
	Creds      string `flag:"creds" desc:"credentials file to package" default:"./health-sync-credentials.json"`
	Output     string `flag:"output,o" desc:"transfer archive path (default: health-sync-archive-<session>.json)"`
	KeepLocal  bool   `flag:"keep-local" desc:"keep the local files after packaging"`
	PurgeLocal bool   `flag:"purge-local" desc:"remove the local files after packaging (the default)"`
}

// runResult is what "init remote run" reports: where the archive went,
// what it contains, and which local copies were removed.
type runResult struct {
	SessionID        string   `json:"session_id"`
	KeyID            string   `json:"key_id"`
	Fingerprint      string   `json:"fingerprint"`
	ArchivePath      string   `json:"archive_path"`
	ConfigPath       string   `json:"config_path"`
	CredsPath        string   `json:"creds_path,omitempty"`
	CredsIncluded    bool     `json:"creds_included"`
	CredentialTokens int      `json:"credential_tokens"`
	PurgedPaths      []string `json:"purged_paths"`
	PurgeWarnings    []string `json:"purge_warnings,omitempty"`
	FinishCommand    string   `json:"finish_command"`
}

func runCommand() *cli.Command {
	params := &runParams{}
	return &cli.Command{
		Name:    "run",
		Summary: "Package local files into an encrypted transfer archive",
		Description: "Encrypt this machine's health-sync config and credentials to the key\n" +
			"inside a bootstrap token, writing a transfer archive that only the\n" +
			"machine that created the token can open. The local copies are removed\n" +
			"afterwards unless --keep-local is given.",
		Usage: "health-sync init remote run <token> [flags]",
		Examples: []cli.Example{
			{
				Description: "package the files in the current directory",
				Command:     "health-sync init remote run hsr1.26qk...",
			},
			{
				Description: "package explicit paths and keep the originals",
				Command:     "health-sync init remote run hsr1.26qk... --config /etc/health-sync.toml --keep-local",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("run", params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) == 0 {
				return cli.Validation("the bootstrap token is required (printed by 'init remote bootstrap' on the receiving machine)")
			}
			if len(args) > 1 {
				return cli.Validation("unexpected argument %q", args[1])
			}
			return executeRun(params, args[0], logger)
		},
	}
}

func executeRun(params *runParams, token string, logger *slog.Logger) error {
	logger = logger.With("command", "run")
	result, err := performRun(params, token)
	if err != nil {
		return err
	}
	logger.Debug("transfer archive written",
		"session_id", result.SessionID,
		"archive", result.ArchivePath,
		"creds_included", result.CredsIncluded)
	for _, warning := range result.PurgeWarnings {
		logger.Warn("could not remove local file", "detail", warning)
	}

	if done, err := params.EmitJSON(result); done || err != nil {
		return err
	}
	printRunResult(result)
	return nil
}

// performRun executes the sending leg: decode the token (expiry is
// enforced here and nowhere later), snapshot the local files, encrypt
// to the token's key, write the archive, then purge the local copies
// unless asked not to. Purge failures are warnings, not errors; the
// archive is already complete by then.
func performRun(params *runParams, token string) (*runResult, error) {
	if params.KeepLocal && params.PurgeLocal {
		return nil, cli.Validation("--keep-local and --purge-local are mutually exclusive")
	}

	details, err := bootstrap.DecodeToken(token)
	if err != nil {
		return nil, commandError(err)
	}

	payload, err := bootstrap.BuildPayload(bootstrap.BuildParams{
		ConfigPath:        params.Config,
		CredsPath:         params.Creds,
		AllowMissingCreds: true,
		SourceVersion:     version.Info(),
	})
	if err != nil {
		return nil, commandError(err)
	}

	envelope, err := bootstrap.Encrypt(payload, details)
	if err != nil {
		return nil, commandError(err)
	}

	outputPath := params.Output
	if outputPath == "" {
		outputPath = fmt.Sprintf("health-sync-archive-%s.json", shortID(details.SessionID))
	}
	if err := bootstrap.WriteArchive(outputPath, envelope); err != nil {
		return nil, commandError(err)
	}

	result := &runResult{
		SessionID:     details.SessionID,
		KeyID:         details.KeyID,
		Fingerprint:   bootstrap.Fingerprint(details.RecipientPublicKey),
		ArchivePath:   outputPath,
		ConfigPath:    params.Config,
		CredsIncluded: payload.Files.Creds.Present,
		FinishCommand: fmt.Sprintf("health-sync init remote finish %s %s", details.KeyID, outputPath),
	}
	if payload.Files.Creds.Present {
		result.CredsPath = params.Creds
		result.CredentialTokens = bootstrap.CountCredentialTokens(payload.Files.Creds.Content)
	}

	if !params.KeepLocal {
		purgePaths := []string{params.Config}
		if payload.Files.Creds.Present {
			purgePaths = append(purgePaths, params.Creds)
		}
		for _, path := range purgePaths {
			if err := os.Remove(path); err != nil {
				result.PurgeWarnings = append(result.PurgeWarnings, err.Error())
				continue
			}
			result.PurgedPaths = append(result.PurgedPaths, path)
		}
	}
	return result, nil
}

func printRunResult(result *runResult) {
	fmt.Printf("Transfer archive written.\n\n")
	fmt.Printf("  Archive:     %s\n", result.ArchivePath)
	fmt.Printf("  Session:     %s\n", result.SessionID)
	fmt.Printf("  Fingerprint: %s\n", result.Fingerprint)
	fmt.Printf("  Config:      %s\n", result.ConfigPath)
	if result.CredsIncluded {
		noun := "provider tokens"
		if result.CredentialTokens == 1 {
			noun = "provider token"
		}
		fmt.Printf("  Credentials: %s (%d %s)\n", result.CredsPath, result.CredentialTokens, noun)
	} else {
		fmt.Printf("  Credentials: none found; the import will write only the config\n")
	}

	if len(result.PurgedPaths) > 0 {
		fmt.Printf("\nRemoved the local copies (pass --keep-local to retain them):\n")
		for _, path := range result.PurgedPaths {
			fmt.Printf("  %s\n", path)
		}
	}
	for _, warning := range result.PurgeWarnings {
		fmt.Printf("\nwarning: %s\n", warning)
	}

	fmt.Printf("\nMove the archive to the other machine and run:\n\n")
	fmt.Printf("  %s\n\n", result.FinishCommand)
	fmt.Printf("Check that the fingerprint above matches the one bootstrap printed.\n")
}

// shortID returns the leading segment of a session UUID, enough to
// name an archive without the full 36 characters.
func shortID(sessionID string) string {
	if len(sessionID) < 8 {
		return sessionID
	}
	return sessionID[:8]
}
