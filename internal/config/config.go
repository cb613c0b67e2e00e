// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for sortbench.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.sortbench/config.toml
//   - ~/.sortbench/config.json
//   - Built-in defaults
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/sortbench/internal/benchmark"
	"github.com/jeranaias/sortbench/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete sortbench configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Benchmark run parameters
	Benchmark BenchmarkConfig `toml:"benchmark" json:"benchmark"`

	// Report files written after a run
	Output OutputConfig `toml:"output" json:"output"`

	// Run history database
	Storage StorageConfig `toml:"storage" json:"storage"`

	// Terminal output
	UI UIConfig `toml:"ui" json:"ui"`
}

// BenchmarkConfig contains the benchmark driver parameters.
type BenchmarkConfig struct {
	// Engines to run: "selection", "merge" or "all"
	Engines []string `toml:"engines" json:"engines"`
	// Sizes are the array lengths benchmarked, in run order
	Sizes []int `toml:"sizes" json:"sizes"`
	// SeriesLength is the number of trials per size
	SeriesLength int `toml:"series_length" json:"series_length"`
	// Seed for the input generator (0 = fresh seed every run)
	Seed Seed `toml:"seed" json:"seed"`
	// Verify checks every trial's output is sorted
	Verify bool `toml:"verify" json:"verify"`
}

// OutputConfig contains report file settings.
type OutputConfig struct {
	// Dir is where report files are written
	Dir string `toml:"dir" json:"dir"`
	// Format is "csv", "json" or "md"
	Format string `toml:"format" json:"format"`
	// SelectionFile is the CSV file name for selection sort results
	SelectionFile string `toml:"selection_file" json:"selection_file"`
	// MergeFile is the CSV file name for merge sort results
	MergeFile string `toml:"merge_file" json:"merge_file"`
	// IncludeTrials keeps per-trial measurements in JSON reports
	IncludeTrials bool `toml:"include_trials" json:"include_trials"`
}

// StorageConfig contains run history settings.
type StorageConfig struct {
	// Enabled records every run in the history database
	Enabled bool `toml:"enabled" json:"enabled"`
	// DatabasePath is the SQLite file (empty = ~/.sortbench/results.db)
	DatabasePath string `toml:"database_path" json:"database_path"`
	// HistoryLimit is the default number of runs listed (0 = all)
	HistoryLimit int `toml:"history_limit" json:"history_limit"`
}

// UIConfig contains terminal output settings.
type UIConfig struct {
	// Progress shows the interactive progress view on a TTY
	Progress bool `toml:"progress" json:"progress"`
	// Verbose writes harness log lines to stderr
	Verbose bool `toml:"verbose" json:"verbose"`
}

// Seed is an input generator seed covering the full uint64 range. TOML
// integers stop at MaxInt64, so larger seeds are written as quoted decimals:
// both `seed = 42` and `seed = "18446744073709551557"` are accepted.
type Seed uint64

// ParseSeed parses a decimal seed; underscores are allowed as separators.
func ParseSeed(s string) (Seed, error) {
	n, err := strconv.ParseUint(strings.ReplaceAll(strings.TrimSpace(s), "_", ""), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seed %q: must be an integer between 0 and %d", s, uint64(math.MaxUint64))
	}
	return Seed(n), nil
}

// MarshalText implements encoding.TextMarshaler.
func (s Seed) MarshalText() ([]byte, error) {
	return []byte(strconv.FormatUint(uint64(s), 10)), nil
}

// MarshalTOML implements toml.Marshaler.
func (s Seed) MarshalTOML() ([]byte, error) {
	text, _ := s.MarshalText()
	if uint64(s) > math.MaxInt64 {
		return []byte(strconv.Quote(string(text))), nil
	}
	return text, nil
}

// MarshalJSON writes the seed as a JSON number.
func (s Seed) MarshalJSON() ([]byte, error) {
	return s.MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Seed) UnmarshalText(text []byte) error {
	n, err := ParseSeed(string(text))
	if err != nil {
		return err
	}
	*s = n
	return nil
}

// UnmarshalJSON accepts a JSON number as well as a quoted decimal.
func (s *Seed) UnmarshalJSON(data []byte) error {
	text := strings.Trim(string(data), `"`)
	if text == "null" {
		return nil
	}
	return s.UnmarshalText([]byte(text))
}

// Valid output formats.
var outputFormats = []string{"csv", "json", "md"}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Benchmark: BenchmarkConfig{
			Engines:      []string{"all"},
			Sizes:        slices.Clone(benchmark.DefaultSizes),
			SeriesLength: benchmark.DefaultSeriesLength,
			Seed:         0,
			Verify:       true,
		},

		Output: OutputConfig{
			Dir:           ".",
			Format:        "csv",
			SelectionFile: "sorting_data.csv",
			MergeFile:     "data.csv",
			IncludeTrials: true,
		},

		Storage: StorageConfig{
			Enabled:      true,
			DatabasePath: "",
			HistoryLimit: 20,
		},

		UI: UIConfig{
			Progress: true,
			Verbose:  false,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the sortbench configuration directory path.
// SORTBENCH_HOME overrides the default ~/.sortbench.
func ConfigDir() (string, error) {
	if dir := os.Getenv("SORTBENCH_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".sortbench"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// DatabasePath returns the history database path, resolving the default.
func (c *Config) DatabasePath() (string, error) {
	if c.Storage.DatabasePath != "" {
		return c.Storage.DatabasePath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "results.db"), nil
}

// ResolvedEngines expands the configured engine names.
func (c *Config) ResolvedEngines() ([]benchmark.Engine, error) {
	var engines []benchmark.Engine
	for _, name := range c.Benchmark.Engines {
		if strings.EqualFold(strings.TrimSpace(name), "all") {
			for _, e := range benchmark.Engines() {
				if !slices.Contains(engines, e) {
					engines = append(engines, e)
				}
			}
			continue
		}
		e, err := benchmark.ParseEngine(name)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(engines, e) {
			engines = append(engines, e)
		}
	}
	return engines, nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			return LoadFromPath(tomlPath)
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return LoadFromPath(jsonPath)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		fmt.Fprintf(os.Stderr, "Warning: unknown config keys in %s: %s\n", path, strings.Join(keys, ", "))
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path.
// Values missing from the file keep their defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	// Determine file type and load accordingly
	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer

	// Write header comment
	fmt.Fprintln(&buf, "# sortbench configuration file")
	fmt.Fprintln(&buf, "# Generated by sortbench - edit with care")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// ==========================================================================
	// Benchmark Settings Validation
	// ==========================================================================

	if len(c.Benchmark.Engines) == 0 {
		errs = append(errs, ValidationError{
			Field:   "benchmark.engines",
			Message: "at least one engine is required (selection, merge, all)",
		})
	} else if _, err := c.ResolvedEngines(); err != nil {
		errs = append(errs, ValidationError{
			Field:   "benchmark.engines",
			Message: err.Error(),
		})
	}

	if len(c.Benchmark.Sizes) == 0 {
		errs = append(errs, ValidationError{
			Field:   "benchmark.sizes",
			Message: "at least one array size is required",
		})
	}
	for _, size := range c.Benchmark.Sizes {
		if size < 0 {
			errs = append(errs, ValidationError{
				Field:   "benchmark.sizes",
				Message: fmt.Sprintf("array size cannot be negative, got %d", size),
			})
		}
	}

	if c.Benchmark.SeriesLength < 1 {
		errs = append(errs, ValidationError{
			Field:   "benchmark.series_length",
			Message: fmt.Sprintf("must be at least 1, got %d", c.Benchmark.SeriesLength),
		})
	}

	// ==========================================================================
	// Output Settings Validation
	// ==========================================================================

	if !slices.Contains(outputFormats, strings.ToLower(c.Output.Format)) {
		errs = append(errs, ValidationError{
			Field:   "output.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: %s", c.Output.Format, strings.Join(outputFormats, ", ")),
		})
	}

	if c.Output.SelectionFile == c.Output.MergeFile {
		errs = append(errs, ValidationError{
			Field:   "output.merge_file",
			Message: "must differ from output.selection_file",
		})
	}

	// ==========================================================================
	// Storage Settings Validation
	// ==========================================================================

	if c.Storage.HistoryLimit < 0 {
		errs = append(errs, ValidationError{
			Field:   "storage.history_limit",
			Message: fmt.Sprintf("cannot be negative, got %d", c.Storage.HistoryLimit),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills empty fields with built-in defaults.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}

	// Benchmark defaults
	if len(c.Benchmark.Engines) == 0 {
		c.Benchmark.Engines = defaults.Benchmark.Engines
	}
	if len(c.Benchmark.Sizes) == 0 {
		c.Benchmark.Sizes = defaults.Benchmark.Sizes
	}
	if c.Benchmark.SeriesLength == 0 {
		c.Benchmark.SeriesLength = defaults.Benchmark.SeriesLength
	}

	// Output defaults
	if c.Output.Dir == "" {
		c.Output.Dir = defaults.Output.Dir
	}
	if c.Output.Format == "" {
		c.Output.Format = defaults.Output.Format
	}
	if c.Output.SelectionFile == "" {
		c.Output.SelectionFile = defaults.Output.SelectionFile
	}
	if c.Output.MergeFile == "" {
		c.Output.MergeFile = defaults.Output.MergeFile
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies SORTBENCH_* environment variables.
// Malformed values are reported on stderr and ignored.
func (c *Config) ApplyEnvOverrides() {
	// SORTBENCH_SIZES
	if sizes := os.Getenv("SORTBENCH_SIZES"); sizes != "" {
		if parsed, err := ParseSizes(sizes); err == nil {
			c.Benchmark.Sizes = parsed
		} else {
			fmt.Fprintf(os.Stderr, "Warning: ignoring SORTBENCH_SIZES: %v\n", err)
		}
	}

	// SORTBENCH_SERIES
	if series := os.Getenv("SORTBENCH_SERIES"); series != "" {
		if n, err := strconv.Atoi(series); err == nil {
			c.Benchmark.SeriesLength = n
		} else {
			fmt.Fprintf(os.Stderr, "Warning: ignoring SORTBENCH_SERIES: %v\n", err)
		}
	}

	// SORTBENCH_SEED
	if seed := os.Getenv("SORTBENCH_SEED"); seed != "" {
		if n, err := ParseSeed(seed); err == nil {
			c.Benchmark.Seed = n
		} else {
			fmt.Fprintf(os.Stderr, "Warning: ignoring SORTBENCH_SEED: %v\n", err)
		}
	}

	// SORTBENCH_ENGINE
	if engine := os.Getenv("SORTBENCH_ENGINE"); engine != "" {
		c.Benchmark.Engines = strings.Split(engine, ",")
	}

	// SORTBENCH_OUTPUT_DIR
	if dir := os.Getenv("SORTBENCH_OUTPUT_DIR"); dir != "" {
		c.Output.Dir = dir
	}

	// SORTBENCH_DB
	if db := os.Getenv("SORTBENCH_DB"); db != "" {
		c.Storage.DatabasePath = db
	}

	// SORTBENCH_NO_HISTORY
	if noHistory := os.Getenv("SORTBENCH_NO_HISTORY"); noHistory != "" {
		c.Storage.Enabled = !(noHistory == "1" || strings.ToLower(noHistory) == "true")
	}
}

// ParseSizes parses a comma-separated list of array sizes.
func ParseSizes(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	sizes := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(strings.ReplaceAll(part, "_", ""))
		if err != nil {
			return nil, fmt.Errorf("invalid size %q: %w", part, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("invalid size %q: must not be negative", part)
		}
		sizes = append(sizes, n)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("no sizes in %q", s)
	}
	return sizes, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Benchmark.Engines = slices.Clone(c.Benchmark.Engines)
	clone.Benchmark.Sizes = slices.Clone(c.Benchmark.Sizes)
	return &clone
}

// String returns the configuration as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("# failed to encode config: %v\n", err)
	}
	return buf.String()
}
