// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides benchmark run history for sortbench.
//
// Every completed run is kept in a SQLite database (pure Go driver), one
// row per run plus one row per array size. The per-trial measurements are
// stored alongside as JSON.
//
// # Key Types
//
//   - ResultStore: Handle on the history database
//   - ResultMeta: Lightweight row for listing
//
// # Usage
//
//	store, err := storage.Open(path)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	err = store.SaveResult(ctx, result)
//	metas, err := store.ListResults(ctx, 20)
//	result, err := store.LoadResult(ctx, metas[0].ID[:8])
//
// # Storage Location
//
// Runs are stored in ~/.sortbench/results.db unless configured otherwise.
package storage
