// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the standard CBOR encoding configuration.
//
// The repo uses two serialization formats with a clear boundary:
//
//   - JSON for operator-facing artifacts: session records on disk,
//     transfer archives, and CLI --json output. Anything a person may
//     inspect or move between machines by hand.
//   - CBOR for the compact binary interior: the bootstrap token payload
//     (keyasint struct tags) and the canonical additional-authenticated-
//     data bytes bound into the AEAD.
//
// This package provides the shared CBOR modes so every package encodes
// identically without duplicating configuration. The encoder uses Core
// Deterministic Encoding (RFC 8949 §4.2): sorted map keys, smallest
// integer encoding, no indefinite-length items. Same logical data
// always produces identical bytes. That property is load-bearing here:
// the AAD bytes must be reproducible on both machines for decryption to
// succeed, and the token payload bytes feed a transcription checksum.
//
// Usage:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
package codec
