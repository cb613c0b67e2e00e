// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/sortbench/internal/benchmark"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func openTestStore(t *testing.T) *ResultStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history", "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleResult(id string, engine benchmark.Engine, start time.Time) *benchmark.Result {
	r := &benchmark.Result{
		ID:           id,
		Engine:       engine,
		Seed:         1<<63 + 5, // exercises the uint64 round trip
		SeriesLength: 2,
		StartTime:    start,
		EndTime:      start.Add(3 * time.Second),
		Duration:     3 * time.Second,
	}
	for i, size := range []int{100, 200} {
		s := benchmark.Series{
			Size:      size,
			Trials:    2,
			AvgTime:   time.Duration(i+1) * time.Millisecond,
			BestTime:  time.Duration(i+1) * 900 * time.Microsecond,
			WorstTime: time.Duration(i+1) * 1100 * time.Microsecond,
		}
		if engine == benchmark.EngineSelection {
			s.AvgPasses = float64(size - 1)
			s.AvgSwaps = float64(size - 1)
		} else {
			s.AvgPeakMemory = float64(size)
			s.AvgMaxDepth = 7.5
			s.AvgCalls = float64(2*size - 1)
		}
		r.Series = append(r.Series, s)
		r.Trials = append(r.Trials,
			benchmark.Trial{Size: size, Index: 0, Duration: s.BestTime},
			benchmark.Trial{Size: size, Index: 1, Duration: s.WorstTime})
	}
	return r
}

// =============================================================================
// RESULT STORE TESTS
// =============================================================================

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestResultStore_SaveAndLoad(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	start := time.Date(2025, 3, 1, 12, 0, 0, 123, time.UTC)
	want := sampleResult("a1b2c3d4-0000-4000-8000-000000000001", benchmark.EngineMerge, start)
	require.NoError(t, store.SaveResult(ctx, want))

	got, err := store.LoadResult(ctx, want.ID)
	require.NoError(t, err)

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Engine, got.Engine)
	assert.Equal(t, want.Seed, got.Seed)
	assert.Equal(t, want.SeriesLength, got.SeriesLength)
	assert.True(t, want.StartTime.Equal(got.StartTime))
	assert.True(t, want.EndTime.Equal(got.EndTime))
	assert.Equal(t, want.Duration, got.Duration)
	assert.Equal(t, want.Series, got.Series)
	assert.Equal(t, want.Trials, got.Trials)
}

func TestResultStore_SaveReplaces(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	r := sampleResult("feedbeef-0000-4000-8000-000000000000", benchmark.EngineSelection, time.Now())
	require.NoError(t, store.SaveResult(ctx, r))

	r.Series = r.Series[:1]
	require.NoError(t, store.SaveResult(ctx, r))

	got, err := store.LoadResult(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, got.Series, 1)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestResultStore_SaveRequiresID(t *testing.T) {
	store := openTestStore(t)
	assert.Error(t, store.SaveResult(context.Background(), &benchmark.Result{}))
	assert.Error(t, store.SaveResult(context.Background(), nil))
}

func TestResultStore_PrefixLookup(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.SaveResult(ctx, sampleResult("abcd1111-0000-4000-8000-000000000000", benchmark.EngineMerge, now)))
	require.NoError(t, store.SaveResult(ctx, sampleResult("abcd2222-0000-4000-8000-000000000000", benchmark.EngineMerge, now)))

	got, err := store.LoadResult(ctx, "abcd1")
	require.NoError(t, err)
	assert.Equal(t, "abcd1111-0000-4000-8000-000000000000", got.ID)

	_, err = store.LoadResult(ctx, "abcd")
	assert.ErrorIs(t, err, ErrAmbiguousID)

	_, err = store.LoadResult(ctx, "abc")
	assert.ErrorIs(t, err, ErrIDTooShort)

	_, err = store.LoadResult(ctx, "ffff")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResultStore_ListResults(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	ids := []string{
		"00000001-0000-4000-8000-000000000000",
		"00000002-0000-4000-8000-000000000000",
		"00000003-0000-4000-8000-000000000000",
	}
	for i, id := range ids {
		r := sampleResult(id, benchmark.EngineSelection, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, store.SaveResult(ctx, r))
	}

	metas, err := store.ListResults(ctx, 0)
	require.NoError(t, err)
	require.Len(t, metas, 3)
	assert.Equal(t, ids[2], metas[0].ID, "newest first")
	assert.Equal(t, ids[0], metas[2].ID)
	assert.Equal(t, 2, metas[0].SizeCount)
	assert.Equal(t, 200, metas[0].MaxSize)
	assert.Equal(t, benchmark.EngineSelection, metas[0].Engine)

	limited, err := store.ListResults(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestResultStore_ListEmpty(t *testing.T) {
	store := openTestStore(t)
	metas, err := store.ListResults(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, metas)
}

func TestResultStore_LatestForEngine(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveResult(ctx, sampleResult("11110000-0000-4000-8000-000000000000", benchmark.EngineMerge, base)))
	require.NoError(t, store.SaveResult(ctx, sampleResult("22220000-0000-4000-8000-000000000000", benchmark.EngineMerge, base.Add(time.Minute))))
	require.NoError(t, store.SaveResult(ctx, sampleResult("33330000-0000-4000-8000-000000000000", benchmark.EngineSelection, base.Add(time.Hour))))

	latest, err := store.LatestForEngine(ctx, benchmark.EngineMerge)
	require.NoError(t, err)
	assert.Equal(t, "22220000-0000-4000-8000-000000000000", latest.ID)

	require.NoError(t, store.DeleteResult(ctx, "3333"))
	_, err = store.LatestForEngine(ctx, benchmark.EngineSelection)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResultStore_Delete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	r := sampleResult("deadbeef-0000-4000-8000-000000000000", benchmark.EngineMerge, time.Now())
	require.NoError(t, store.SaveResult(ctx, r))

	require.NoError(t, store.DeleteResult(ctx, "deadbeef"))

	_, err := store.LoadResult(ctx, r.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.DeleteResult(ctx, r.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var orphans int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM series").Scan(&orphans))
	assert.Zero(t, orphans)
}

func TestResultStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	r := sampleResult("cafe0000-0000-4000-8000-000000000000", benchmark.EngineSelection, time.Now())
	require.NoError(t, store.SaveResult(ctx, r))
	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "second close is a no-op")

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.LoadResult(ctx, "cafe")
	require.NoError(t, err)
	assert.Equal(t, r.Series, got.Series)
	assert.Equal(t, path, store.Path())
}

func TestResultStore_RoundTripsRealRun(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	runner := benchmark.NewRunner(benchmark.NewRandomGenerator(9), benchmark.WithVerify(true))
	result, err := runner.Run(ctx, benchmark.EngineMerge, []int{0, 16, 33}, 3)
	require.NoError(t, err)
	require.NoError(t, store.SaveResult(ctx, result))

	got, err := store.LoadResult(ctx, result.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Series, got.Series)
	assert.Equal(t, uint64(9), got.Seed)
	assert.Len(t, got.Trials, 9)
}
