// Copyright 2026 The Health Sync Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret provides a memory-safe buffer for key material: X25519
// private scalars, ECDH shared secrets, and derived AES keys.
//
// [Buffer] allocates memory outside the Go heap via mmap(MAP_ANONYMOUS),
// locks it into physical RAM via mlock (preventing swap), and marks it
// excluded from core dumps via madvise(MADV_DONTDUMP). On Close, the
// memory is zeroed, unlocked, and unmapped. Because the memory lives
// outside the Go heap, the garbage collector cannot copy or relocate
// it, guaranteeing key material does not persist after release.
//
// Constructors:
//
//   - [New] allocates a zero-filled buffer of a given size
//   - [NewRandom] allocates and fills from crypto/rand
//   - [NewFromBytes] copies into protected memory, zeros the source
//
// Access via [Buffer.Bytes], which returns a slice into the mmap region.
// After Close, any access panics. Close is idempotent. [Zero] scrubs
// ordinary heap slices that briefly held derived material.
//
// Depends on golang.org/x/sys/unix. No other internal dependencies.
package secret
