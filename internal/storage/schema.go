// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

const (
	// SchemaVersion tracks the database schema version for migrations
	SchemaVersion = 1
)

// Schema is the SQLite schema for run history.
const Schema = `
-- Metadata table for schema version
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- One row per benchmark run
CREATE TABLE IF NOT EXISTS results (
    id TEXT PRIMARY KEY,
    engine TEXT NOT NULL,          -- selection, merge
    seed INTEGER NOT NULL,         -- uint64 stored bitwise
    series_length INTEGER NOT NULL,
    started_at INTEGER NOT NULL,   -- Unix nanoseconds
    ended_at INTEGER NOT NULL,     -- Unix nanoseconds
    duration_ns INTEGER NOT NULL,
    trials_json TEXT               -- per-trial measurements
);

CREATE INDEX IF NOT EXISTS idx_results_engine ON results(engine);
CREATE INDEX IF NOT EXISTS idx_results_started_at ON results(started_at);

-- One row per array size of a run
CREATE TABLE IF NOT EXISTS series (
    result_id TEXT NOT NULL,
    position INTEGER NOT NULL,     -- run order
    size INTEGER NOT NULL,
    trials INTEGER NOT NULL,
    avg_ns INTEGER NOT NULL,
    best_ns INTEGER NOT NULL,
    worst_ns INTEGER NOT NULL,
    avg_passes REAL NOT NULL DEFAULT 0,
    avg_swaps REAL NOT NULL DEFAULT 0,
    avg_peak_memory REAL NOT NULL DEFAULT 0,
    avg_max_depth REAL NOT NULL DEFAULT 0,
    avg_calls REAL NOT NULL DEFAULT 0,
    PRIMARY KEY (result_id, position),
    FOREIGN KEY(result_id) REFERENCES results(id) ON DELETE CASCADE
);
`

// InitMetadata seeds the metadata table.
const InitMetadata = `
INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', '1');
INSERT OR IGNORE INTO metadata (key, value) VALUES ('created_at', strftime('%s', 'now'));
`
