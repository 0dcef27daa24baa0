// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

// Health-sync is the CLI for mirroring personal health data from
// provider APIs into a local store. This binary covers setup: the
// init command group, including the remote bootstrap handshake that
// moves a working config and its credentials between machines, and a
// version command.
package main
