// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the health-sync
// binary.
//
// The central type is [Command], which represents a named subcommand
// with optional nested [Command.Subcommands], a [pflag.FlagSet]
// factory, and a Run function. Commands are assembled into a tree in
// cmd/health-sync/commands and dispatched via [Command.Execute], which
// handles flag parsing, subcommand routing, and structured help output
// with examples. Run functions receive the invocation context and a
// structured logger; commands scope the logger with With() before
// passing it to library code.
//
// When a user types an unknown subcommand or flag, the framework
// computes Levenshtein edit distance against all known names and
// suggests the closest match (threshold: distance <= 3). This is
// implemented in suggest.go.
//
// Parameter structs bind their fields to flags through struct tags
// (flag:, desc:, default:) via [BindFlags]; embedding [JSONOutput]
// adds the conventional --json flag and the EmitJSON output path.
// Commands classify their failures with [CommandError] constructors
// ([Validation], [NotFound], [Conflict], [Internal]) so the binary
// can exit with a category-specific status code.
package cli
