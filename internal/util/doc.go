// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across sortbench.
//
// # Key Functions
//
// File Operations:
//   - AtomicWrite: Crash-safe streaming write with fsync and rename
//   - AtomicWriteFile: AtomicWrite for an in-memory buffer
//
// Display Width:
//   - StringWidth, TruncateWidth: Column-aware measuring and truncation
//   - PadLeft, PadRight: Column-aware alignment for tables
//   - ShortID: Abbreviated run identifiers
//
// # Usage
//
//	err := util.AtomicWriteFile(path, data, 0644)
//	cell := util.PadLeft(util.ShortID(id, 8), 10)
package util
