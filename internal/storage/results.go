// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/sortbench/internal/benchmark"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotFound is returned when no stored run matches an ID.
	ErrNotFound = errors.New("result not found")
	// ErrAmbiguousID is returned when an ID prefix matches several runs.
	ErrAmbiguousID = errors.New("ambiguous result id")
	// ErrIDTooShort is returned for prefixes under MinPrefixLength.
	ErrIDTooShort = errors.New("result id prefix too short")

	ErrDatabaseError = errors.New("database error")
)

// MinPrefixLength is the shortest ID prefix accepted by lookups.
const MinPrefixLength = 4

// =============================================================================
// RESULT STORE
// =============================================================================

// ResultStore persists benchmark results in SQLite.
type ResultStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// ResultMeta is the listing view of a stored run.
type ResultMeta struct {
	ID           string           `json:"id"`
	Engine       benchmark.Engine `json:"engine"`
	Seed         uint64           `json:"seed"`
	SeriesLength int              `json:"series_length"`
	StartTime    time.Time        `json:"start_time"`
	Duration     time.Duration    `json:"duration"`
	SizeCount    int              `json:"size_count"`
	MaxSize      int              `json:"max_size"`
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*ResultStore, error) {
	if path == "" {
		return nil, errors.New("database path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(InitMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &ResultStore{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *ResultStore) Path() string {
	return s.path
}

// Close closes the database.
func (s *ResultStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// =============================================================================
// WRITES
// =============================================================================

// SaveResult stores a run, replacing any previous run with the same ID.
func (s *ResultStore) SaveResult(ctx context.Context, r *benchmark.Result) error {
	if r == nil || r.ID == "" {
		return errors.New("result must have an id")
	}

	trials, err := json.Marshal(r.Trials)
	if err != nil {
		return fmt.Errorf("failed to encode trials: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO results (id, engine, seed, series_length, started_at, ended_at, duration_ns, trials_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			engine = excluded.engine,
			seed = excluded.seed,
			series_length = excluded.series_length,
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			duration_ns = excluded.duration_ns,
			trials_json = excluded.trials_json`,
		r.ID, string(r.Engine), int64(r.Seed), r.SeriesLength,
		r.StartTime.UnixNano(), r.EndTime.UnixNano(), int64(r.Duration), string(trials))
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM series WHERE result_id = ?", r.ID); err != nil {
		return fmt.Errorf("failed to clear series: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO series (result_id, position, size, trials, avg_ns, best_ns, worst_ns,
			avg_passes, avg_swaps, avg_peak_memory, avg_max_depth, avg_calls)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare series insert: %w", err)
	}
	defer stmt.Close()

	for i, series := range r.Series {
		_, err := stmt.ExecContext(ctx, r.ID, i, series.Size, series.Trials,
			int64(series.AvgTime), int64(series.BestTime), int64(series.WorstTime),
			series.AvgPasses, series.AvgSwaps, series.AvgPeakMemory, series.AvgMaxDepth, series.AvgCalls)
		if err != nil {
			return fmt.Errorf("failed to insert series: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	log.Printf("RESULT_SAVED | id=%s engine=%s sizes=%d", r.ID, r.Engine, len(r.Series))
	return nil
}

// DeleteResult removes a run by ID or unique prefix.
func (s *ResultStore) DeleteResult(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fullID, err := s.resolveID(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM series WHERE result_id = ?", fullID); err != nil {
		return fmt.Errorf("failed to delete series: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM results WHERE id = ?", fullID); err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	log.Printf("RESULT_DELETED | id=%s", fullID)
	return nil
}

// =============================================================================
// READS
// =============================================================================

// LoadResult loads a run by full ID or by a unique prefix of at least
// MinPrefixLength characters.
func (s *ResultStore) LoadResult(ctx context.Context, id string) (*benchmark.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fullID, err := s.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.loadByID(ctx, fullID)
}

// LatestForEngine loads the most recent run of engine.
func (s *ResultStore) LatestForEngine(ctx context.Context, engine benchmark.Engine) (*benchmark.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id string
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM results WHERE engine = ? ORDER BY started_at DESC, id LIMIT 1",
		string(engine)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no %s runs", ErrNotFound, engine)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return s.loadByID(ctx, id)
}

// ListResults returns stored runs, newest first. limit <= 0 lists all.
func (s *ResultStore) ListResults(ctx context.Context, limit int) ([]ResultMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		SELECT r.id, r.engine, r.seed, r.series_length, r.started_at, r.duration_ns,
			COUNT(s.size), COALESCE(MAX(s.size), 0)
		FROM results r
		LEFT JOIN series s ON s.result_id = r.id
		GROUP BY r.id
		ORDER BY r.started_at DESC, r.id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var metas []ResultMeta
	for rows.Next() {
		var (
			m                    ResultMeta
			engine               string
			seed, started, durNs int64
		)
		if err := rows.Scan(&m.ID, &engine, &seed, &m.SeriesLength, &started, &durNs, &m.SizeCount, &m.MaxSize); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		m.Engine = benchmark.Engine(engine)
		m.Seed = uint64(seed)
		m.StartTime = time.Unix(0, started)
		m.Duration = time.Duration(durNs)
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// Count returns the number of stored runs.
func (s *ResultStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM results").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return n, nil
}

// resolveID maps an ID or prefix to exactly one stored ID.
// Caller must hold s.mu.
func (s *ResultStore) resolveID(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if len(id) < MinPrefixLength {
		return "", fmt.Errorf("%w: %q (need at least %d characters)", ErrIDTooShort, id, MinPrefixLength)
	}

	var exact string
	err := s.db.QueryRowContext(ctx, "SELECT id FROM results WHERE id = ?", id).Scan(&exact)
	if err == nil {
		return exact, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM results WHERE substr(id, 1, ?) = ? LIMIT 2", len(id), id)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return "", fmt.Errorf("failed to scan id: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousID, id)
	}
}

// loadByID reads a run and its series. Caller must hold s.mu.
func (s *ResultStore) loadByID(ctx context.Context, id string) (*benchmark.Result, error) {
	var (
		r                           benchmark.Result
		engine                      string
		seed, started, ended, durNs int64
		trials                      sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, engine, seed, series_length, started_at, ended_at, duration_ns, trials_json
		FROM results WHERE id = ?`, id).
		Scan(&r.ID, &engine, &seed, &r.SeriesLength, &started, &ended, &durNs, &trials)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	r.Engine = benchmark.Engine(engine)
	r.Seed = uint64(seed)
	r.StartTime = time.Unix(0, started)
	r.EndTime = time.Unix(0, ended)
	r.Duration = time.Duration(durNs)

	if trials.Valid && trials.String != "" && trials.String != "null" {
		if err := json.Unmarshal([]byte(trials.String), &r.Trials); err != nil {
			return nil, fmt.Errorf("failed to decode trials: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT size, trials, avg_ns, best_ns, worst_ns,
			avg_passes, avg_swaps, avg_peak_memory, avg_max_depth, avg_calls
		FROM series WHERE result_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	r.Series = []benchmark.Series{}
	for rows.Next() {
		var (
			series                 benchmark.Series
			avgNs, bestNs, worstNs int64
		)
		if err := rows.Scan(&series.Size, &series.Trials, &avgNs, &bestNs, &worstNs,
			&series.AvgPasses, &series.AvgSwaps, &series.AvgPeakMemory, &series.AvgMaxDepth, &series.AvgCalls); err != nil {
			return nil, fmt.Errorf("failed to scan series: %w", err)
		}
		series.AvgTime = time.Duration(avgNs)
		series.BestTime = time.Duration(bestNs)
		series.WorstTime = time.Duration(worstNs)
		r.Series = append(r.Series, series)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	return &r, nil
}
