// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

package initcmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/healthsync-project/healthsync/cmd/health-sync/cli"
	"github.com/healthsync-project/healthsync/lib/bootstrap"
)

type sessionsParams struct {
	cli.JSONOutput
	StoreDir     string `flag:"store-dir" desc:"session store directory (default: $HEALTH_SYNC_REMOTE_BOOTSTRAP_DIR, then ~/.health-sync/remote-bootstrap)"`
	PruneExpired bool   `flag:"prune-expired" desc:"delete expired sessions that were never consumed"`
}

// sessionSummary is one row of "init remote sessions". It carries no
// key material; the store record keeps that to itself.
type sessionSummary struct {
	SessionID   string     `json:"session_id"`
	KeyID       string     `json:"key_id"`
	Fingerprint string     `json:"fingerprint"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	ConsumedAt  *time.Time `json:"consumed_at,omitempty"`
}

type sessionsResult struct {
	StoreDir string           `json:"store_dir"`
	Sessions []sessionSummary `json:"sessions"`
	Pruned   []string         `json:"pruned,omitempty"`
}

func sessionsCommand() *cli.Command {
	params := &sessionsParams{}
	return &cli.Command{
		Name:    "sessions",
		Summary: "List bootstrap sessions in the local store",
		Description: "List every bootstrap session this machine has created, with its\n" +
			"status: active, expired, or consumed. Consumed records are kept as\n" +
			"the trail of what was imported when; --prune-expired removes only\n" +
			"sessions that expired unused.",
		Usage: "health-sync init remote sessions [flags]",
		Examples: []cli.Example{
			{
				Description: "list sessions as a table",
				Command:     "health-sync init remote sessions",
			},
			{
				Description: "clean out sessions that expired without being used",
				Command:     "health-sync init remote sessions --prune-expired",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("sessions", params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			return executeSessions(params, logger)
		},
	}
}

func executeSessions(params *sessionsParams, logger *slog.Logger) error {
	logger = logger.With("command", "sessions")
	result, err := performSessions(params, time.Now())
	if err != nil {
		return err
	}
	logger.Debug("listed bootstrap sessions",
		"store_dir", result.StoreDir,
		"sessions", len(result.Sessions),
		"pruned", len(result.Pruned))

	if done, err := params.EmitJSON(result); done || err != nil {
		return err
	}
	printSessionsResult(result)
	return nil
}

func performSessions(params *sessionsParams, now time.Time) (*sessionsResult, error) {
	storeDir, err := resolveStoreDir(params.StoreDir)
	if err != nil {
		return nil, err
	}

	result := &sessionsResult{StoreDir: storeDir}
	if params.PruneExpired {
		pruned, err := bootstrap.PruneExpired(storeDir, now)
		if err != nil {
			return nil, commandError(err)
		}
		result.Pruned = pruned
	}

	sessions, err := bootstrap.List(storeDir)
	if err != nil {
		return nil, commandError(err)
	}
	for _, session := range sessions {
		result.Sessions = append(result.Sessions, sessionSummary{
			SessionID:   session.SessionID,
			KeyID:       session.KeyID,
			Fingerprint: session.Fingerprint,
			Status:      session.StatusAt(now),
			CreatedAt:   session.CreatedAt,
			ExpiresAt:   session.ExpiresAt,
			ConsumedAt:  session.ConsumedAt,
		})
	}
	return result, nil
}

func printSessionsResult(result *sessionsResult) {
	if len(result.Pruned) > 0 {
		noun := "sessions"
		if len(result.Pruned) == 1 {
			noun = "session"
		}
		fmt.Printf("Pruned %d expired %s.\n\n", len(result.Pruned), noun)
	}

	if len(result.Sessions) == 0 {
		fmt.Printf("No bootstrap sessions in %s.\n", result.StoreDir)
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "SESSION\tKEY\tSTATUS\tEXPIRES\n")
	for _, session := range result.Sessions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			session.SessionID,
			session.KeyID,
			session.Status,
			session.ExpiresAt.Format(time.RFC3339))
	}
	tw.Flush()
}
