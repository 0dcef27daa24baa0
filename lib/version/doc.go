// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for the
// health-sync binary.
//
// Four package-level variables are injected at build time via
// -ldflags -X:
//
//   - [GitCommit] is the short git SHA of the build
//   - [GitDirty] is "true" if there were uncommitted changes
//   - [BuildTime] is the UTC timestamp of the build
//   - [Version] is the semantic version string (set manually for releases)
//
// These default to "unknown" / "0.1.0-dev" when not injected, which
// occurs during development builds and test runs.
//
// Formatting functions produce human-readable version strings:
//
//   - [Info] for --version output and archive payload metadata
//   - [Full] for Info plus Go version and GOOS/GOARCH
package version
