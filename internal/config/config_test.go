// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/sortbench/internal/benchmark"
)

// isolateHome points the config directory at a fresh temp dir.
func isolateHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SORTBENCH_HOME", dir)
	for _, key := range []string{
		"SORTBENCH_SIZES", "SORTBENCH_SERIES", "SORTBENCH_SEED", "SORTBENCH_ENGINE",
		"SORTBENCH_OUTPUT_DIR", "SORTBENCH_DB", "SORTBENCH_NO_HISTORY",
	} {
		t.Setenv(key, "")
	}
	return dir
}

func TestConfig_Default(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.NotEmpty(t, cfg.Version)
	assert.Equal(t, []string{"all"}, cfg.Benchmark.Engines)
	assert.Equal(t, []int{1000, 2000, 4000, 8000, 16000, 32000, 64000, 128000}, cfg.Benchmark.Sizes)
	assert.Equal(t, 20, cfg.Benchmark.SeriesLength)
	assert.True(t, cfg.Benchmark.Verify)
	assert.Equal(t, "sorting_data.csv", cfg.Output.SelectionFile)
	assert.Equal(t, "data.csv", cfg.Output.MergeFile)
	assert.True(t, cfg.Output.IncludeTrials)
	assert.Equal(t, 20, cfg.Storage.HistoryLimit)
	assert.True(t, cfg.Storage.Enabled)
	assert.NoError(t, cfg.Validate())

	// Default sizes must not alias the package-level slice
	cfg.Benchmark.Sizes[0] = 7
	assert.Equal(t, 1000, benchmark.DefaultSizes[0])
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		field   string
		wantErr bool
	}{
		{name: "defaults", modify: func(c *Config) {}},
		{name: "zero size allowed", modify: func(c *Config) { c.Benchmark.Sizes = []int{0, 1} }},
		{name: "zero history limit lists all", modify: func(c *Config) { c.Storage.HistoryLimit = 0 }},
		{name: "seed above int64", modify: func(c *Config) { c.Benchmark.Seed = math.MaxUint64 }},
		{
			name:    "no engines",
			modify:  func(c *Config) { c.Benchmark.Engines = nil },
			field:   "benchmark.engines",
			wantErr: true,
		},
		{
			name:    "unknown engine",
			modify:  func(c *Config) { c.Benchmark.Engines = []string{"bubble"} },
			field:   "benchmark.engines",
			wantErr: true,
		},
		{
			name:    "no sizes",
			modify:  func(c *Config) { c.Benchmark.Sizes = []int{} },
			field:   "benchmark.sizes",
			wantErr: true,
		},
		{
			name:    "negative size",
			modify:  func(c *Config) { c.Benchmark.Sizes = []int{10, -1} },
			field:   "benchmark.sizes",
			wantErr: true,
		},
		{
			name:    "zero series",
			modify:  func(c *Config) { c.Benchmark.SeriesLength = 0 },
			field:   "benchmark.series_length",
			wantErr: true,
		},
		{
			name:    "bad format",
			modify:  func(c *Config) { c.Output.Format = "xml" },
			field:   "output.format",
			wantErr: true,
		},
		{
			name:    "same csv names",
			modify:  func(c *Config) { c.Output.MergeFile = c.Output.SelectionFile },
			field:   "output.merge_file",
			wantErr: true,
		},
		{
			name:    "negative history limit",
			modify:  func(c *Config) { c.Storage.HistoryLimit = -1 },
			field:   "storage.history_limit",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs))
			found := false
			for _, v := range verrs {
				if v.Field == tt.field {
					found = true
				}
			}
			assert.True(t, found, "expected error on field %s, got %v", tt.field, err)
		})
	}
}

func TestConfig_ResolvedEngines(t *testing.T) {
	cfg := Default()
	cfg.Benchmark.Engines = []string{"all", "merge"}
	engines, err := cfg.ResolvedEngines()
	require.NoError(t, err)
	assert.Equal(t, []benchmark.Engine{benchmark.EngineSelection, benchmark.EngineMerge}, engines)

	cfg.Benchmark.Engines = []string{"Merge"}
	engines, err = cfg.ResolvedEngines()
	require.NoError(t, err)
	assert.Equal(t, []benchmark.Engine{benchmark.EngineMerge}, engines)

	cfg.Benchmark.Engines = []string{"quick"}
	_, err = cfg.ResolvedEngines()
	assert.ErrorIs(t, err, benchmark.ErrUnknownEngine)
}

func TestConfig_SaveAndLoadTOML(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Benchmark.Sizes = []int{10, 20}
	cfg.Benchmark.Seed = 42
	cfg.Output.Format = "json"
	require.NoError(t, SaveTOML(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# sortbench configuration file"))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20}, loaded.Benchmark.Sizes)
	assert.Equal(t, Seed(42), loaded.Benchmark.Seed)
	assert.Equal(t, "json", loaded.Output.Format)
	assert.True(t, loaded.Storage.Enabled)
}

func TestConfig_LoadPartialTOML(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[benchmark]\nseries_length = 5\nverify = false\n"), 0644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Benchmark.SeriesLength)
	assert.False(t, cfg.Benchmark.Verify)
	assert.Equal(t, benchmark.DefaultSizes, cfg.Benchmark.Sizes)
	assert.Equal(t, "csv", cfg.Output.Format)
}

func TestConfig_SeedRoundTrip(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()

	const big = Seed(1<<63 + 12345)

	cfg := Default()
	cfg.Benchmark.Seed = big
	tomlPath := filepath.Join(dir, "config.toml")
	require.NoError(t, SaveTOML(cfg, tomlPath))
	loaded, err := LoadFromPath(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, big, loaded.Benchmark.Seed)

	jsonPath := filepath.Join(dir, "config.json")
	require.NoError(t, SaveJSON(cfg, jsonPath))
	loaded, err = LoadFromPath(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, big, loaded.Benchmark.Seed)

	// Hand-written files use plain integers
	require.NoError(t, os.WriteFile(tomlPath, []byte("[benchmark]\nseed = 42\n"), 0644))
	loaded, err = LoadFromPath(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, Seed(42), loaded.Benchmark.Seed)

	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"benchmark": {"seed": 43}}`), 0644))
	loaded, err = LoadFromPath(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, Seed(43), loaded.Benchmark.Seed)

	require.NoError(t, os.WriteFile(tomlPath, []byte("[benchmark]\nseed = -1\n"), 0644))
	_, err = LoadFromPath(tomlPath)
	assert.Error(t, err)
}

func TestParseSeed(t *testing.T) {
	tests := []struct {
		in      string
		want    Seed
		wantErr bool
	}{
		{"0", 0, false},
		{"42", 42, false},
		{"1_000", 1000, false},
		{"18446744073709551615", math.MaxUint64, false},
		{"18446744073709551616", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseSeed(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestConfig_HistoryLimitZeroKept(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	require.NoError(t, os.WriteFile(path, []byte("[storage]\nhistory_limit = 0\n"), 0644))
	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Storage.HistoryLimit)

	// Missing keys keep the default
	require.NoError(t, os.WriteFile(path, []byte("[storage]\nenabled = true\n"), 0644))
	cfg, err = LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Storage.HistoryLimit)
}

func TestConfig_LoadInvalidTOML(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[benchmark]\nseries_length = 0\n"), 0644))

	// Zero is replaced by the default before validation.
	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, benchmark.DefaultSeriesLength, cfg.Benchmark.SeriesLength)

	require.NoError(t, os.WriteFile(path, []byte("[output]\nformat = \"xml\"\n"), 0644))
	_, err = LoadFromPath(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("not = [valid"), 0644))
	_, err = LoadFromPath(path)
	assert.Error(t, err)
}

func TestConfig_LoadJSON(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.Benchmark.Engines = []string{"selection"}
	require.NoError(t, SaveJSON(cfg, path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"selection"}, loaded.Benchmark.Engines)
}

func TestConfig_LoadPrefersTOML(t *testing.T) {
	home := isolateHome(t)

	jsonCfg := Default()
	jsonCfg.Benchmark.SeriesLength = 7
	require.NoError(t, SaveJSON(jsonCfg, filepath.Join(home, "config.json")))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Benchmark.SeriesLength)

	tomlCfg := Default()
	tomlCfg.Benchmark.SeriesLength = 9
	require.NoError(t, Save(tomlCfg))

	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Benchmark.SeriesLength)
}

func TestConfig_EnvOverrides(t *testing.T) {
	isolateHome(t)
	t.Setenv("SORTBENCH_SIZES", "10, 20,1_000")
	t.Setenv("SORTBENCH_SERIES", "3")
	t.Setenv("SORTBENCH_SEED", "7")
	t.Setenv("SORTBENCH_ENGINE", "merge")
	t.Setenv("SORTBENCH_OUTPUT_DIR", "/tmp/reports")
	t.Setenv("SORTBENCH_DB", "/tmp/history.db")
	t.Setenv("SORTBENCH_NO_HISTORY", "true")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, []int{10, 20, 1000}, cfg.Benchmark.Sizes)
	assert.Equal(t, 3, cfg.Benchmark.SeriesLength)
	assert.Equal(t, Seed(7), cfg.Benchmark.Seed)
	assert.Equal(t, []string{"merge"}, cfg.Benchmark.Engines)
	assert.Equal(t, "/tmp/reports", cfg.Output.Dir)
	assert.False(t, cfg.Storage.Enabled)

	path, err := cfg.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/history.db", path)
}

func TestConfig_EnvOverridesIgnoreMalformed(t *testing.T) {
	isolateHome(t)
	t.Setenv("SORTBENCH_SIZES", "ten")
	t.Setenv("SORTBENCH_SERIES", "many")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, benchmark.DefaultSizes, cfg.Benchmark.Sizes)
	assert.Equal(t, benchmark.DefaultSeriesLength, cfg.Benchmark.SeriesLength)
}

func TestConfig_DatabasePathDefault(t *testing.T) {
	home := isolateHome(t)
	path, err := Default().DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "results.db"), path)
}

func TestParseSizes(t *testing.T) {
	sizes, err := ParseSizes("1000, 2_000,,4000")
	require.NoError(t, err)
	assert.Equal(t, []int{1000, 2000, 4000}, sizes)

	for _, bad := range []string{"", ",", "abc", "10,-1"} {
		_, err := ParseSizes(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestConfig_Clone(t *testing.T) {
	original := Default()
	clone := original.Clone()

	clone.Version = "cloned"
	clone.Benchmark.Sizes[0] = 1
	clone.Benchmark.Engines[0] = "merge"

	assert.Equal(t, Default().Version, original.Version)
	assert.Equal(t, 1000, original.Benchmark.Sizes[0])
	assert.Equal(t, "all", original.Benchmark.Engines[0])
}

func TestConfig_String(t *testing.T) {
	s := Default().String()
	assert.Contains(t, s, "[benchmark]")
	assert.Contains(t, s, "series_length = 20")
	assert.Contains(t, s, "[storage]")
}
