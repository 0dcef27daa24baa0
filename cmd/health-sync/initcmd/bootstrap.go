// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

package initcmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/pflag"

	"github.com/healthsync-project/healthsync/cmd/health-sync/cli"
	"github.com/healthsync-project/healthsync/lib/bootstrap"
)

type bootstrapParams struct {
	cli.JSONOutput
	ExpiresIn string `flag:"expires-in" desc:"token validity window: seconds, or a number with an s, m, h, or d suffix" default:"24h"`
	StoreDir  string `flag:"store-dir" desc:"session store directory (default: $HEALTH_SYNC_REMOTE_BOOTSTRAP_DIR, then ~/.health-sync/remote-bootstrap)"`
}

// bootstrapResult is what "init remote bootstrap" reports: everything
// the operator needs to hand the sending machine its token and to
// confirm the key fingerprint out of band.
type bootstrapResult struct {
	SessionID    string    `json:"session_id"`
	KeyID        string    `json:"key_id"`
	Fingerprint  string    `json:"fingerprint"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	Token        string    `json:"token"`
	ShareCommand string    `json:"share_command"`
	StoreDir     string    `json:"store_dir"`
}

func bootstrapCommand() *cli.Command {
	params := &bootstrapParams{}
	return &cli.Command{
		Name:    "bootstrap",
		Summary: "Create a bootstrap session and print its token",
		Description: "Create a bootstrap session on this machine and print the token to run\n" +
			"on the machine that currently holds your health-sync config. The private\n" +
			"key never leaves this machine; the token carries only the public half.",
		Usage: "health-sync init remote bootstrap [flags]",
		Examples: []cli.Example{
			{
				Description: "create a session with the default 24 hour window",
				Command:     "health-sync init remote bootstrap",
			},
			{
				Description: "create a short-lived session for an immediate transfer",
				Command:     "health-sync init remote bootstrap --expires-in 30m",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("bootstrap", params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			return executeBootstrap(params, logger)
		},
	}
}

func executeBootstrap(params *bootstrapParams, logger *slog.Logger) error {
	logger = logger.With("command", "bootstrap")
	result, err := performBootstrap(params)
	if err != nil {
		return err
	}
	logger.Debug("bootstrap session created",
		"session_id", result.SessionID,
		"key_id", result.KeyID,
		"store_dir", result.StoreDir)

	if done, err := params.EmitJSON(result); done || err != nil {
		return err
	}
	printBootstrapResult(result)
	return nil
}

// performBootstrap creates the session and shapes the result. It does
// no printing, so the handshake can also be driven from tests and
// from the alias flags on "init".
func performBootstrap(params *bootstrapParams) (*bootstrapResult, error) {
	expirySeconds, err := bootstrap.ParseExpiry(params.ExpiresIn)
	if err != nil {
		return nil, commandError(err)
	}
	storeDir, err := resolveStoreDir(params.StoreDir)
	if err != nil {
		return nil, err
	}

	session, token, err := bootstrap.Create(bootstrap.CreateParams{
		ExpiresIn: expirySeconds,
		StoreDir:  storeDir,
	})
	if err != nil {
		return nil, commandError(err)
	}

	return &bootstrapResult{
		SessionID:    session.SessionID,
		KeyID:        session.KeyID,
		Fingerprint:  session.Fingerprint,
		CreatedAt:    session.CreatedAt,
		ExpiresAt:    session.ExpiresAt,
		Token:        token,
		ShareCommand: "health-sync init remote run " + token,
		StoreDir:     storeDir,
	}, nil
}

func printBootstrapResult(result *bootstrapResult) {
	window := result.ExpiresAt.Sub(result.CreatedAt)

	fmt.Printf("Bootstrap session created.\n\n")
	fmt.Printf("  Session:     %s\n", result.SessionID)
	fmt.Printf("  Key:         %s\n", result.KeyID)
	fmt.Printf("  Fingerprint: %s\n", result.Fingerprint)
	fmt.Printf("  Expires:     %s (valid for %s)\n\n",
		result.ExpiresAt.Format(time.RFC3339), window)
	fmt.Printf("On the machine that holds your health-sync files, run:\n\n")
	fmt.Printf("  %s\n\n", result.ShareCommand)
	fmt.Printf("The token is safe to send over any channel, but confirm the\n")
	fmt.Printf("fingerprint matches on both machines before finishing.\n")
}
