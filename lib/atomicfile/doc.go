// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

// Package atomicfile provides atomic file replacement and timestamped
// backup copies for files that must never be observed half-written:
// session records, transfer archives, and imported configuration and
// credential files.
//
// [WriteFile] writes to a temporary file in the same directory, fsyncs,
// renames into place, and fsyncs the parent directory, so readers see
// either the old content or the new content in full. The file mode is
// set at create time, before any bytes land, so a restrictive mode is
// never applied retroactively to content already on disk.
//
// [Backup] copies an existing file to a sibling path carrying a UTC
// timestamp suffix. Imports back up every file they are about to
// overwrite; nothing is ever deleted by this package except its own
// temporary files on failure.
//
// This package has no dependencies on other internal packages.
package atomicfile
