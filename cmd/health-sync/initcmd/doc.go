// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

// Package initcmd implements the "init" command group, which moves a
// health-sync configuration onto a new machine.
//
// The interactive first-run flow lives elsewhere; this package covers the
// remote bootstrap handshake between two machines:
//
//	init remote bootstrap    create a session on the receiving machine
//	init remote run          package config and credentials for a token
//	init remote finish       import a transfer archive on the receiver
//	init remote sessions     inspect the local session store
//
// The same three operations are reachable through alias flags on "init"
// itself (--remote-bootstrap, --remote, --remote-bootstrap-finish) so that
// scripted callers do not need the nested command syntax.
//
// All protocol work is delegated to lib/bootstrap; this package adds flag
// parsing, store directory resolution, confirmation prompts, and operator
// remediation hints on top of it.
package initcmd
