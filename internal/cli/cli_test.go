// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeranaias/sortbench/internal/benchmark"
	"github.com/jeranaias/sortbench/internal/config"
	"github.com/jeranaias/sortbench/internal/storage"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// isolate points the config directory at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("SORTBENCH_HOME", home)
	for _, key := range []string{
		"SORTBENCH_SIZES", "SORTBENCH_SERIES", "SORTBENCH_SEED", "SORTBENCH_ENGINE",
		"SORTBENCH_OUTPUT_DIR", "SORTBENCH_DB", "SORTBENCH_NO_HISTORY",
	} {
		t.Setenv(key, "")
	}
	return home
}

// run executes the CLI and returns stdout, stderr and the exit code.
func run(t *testing.T, argv ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Main(context.Background(), argv, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

// runJSON executes the CLI with --json and decodes the response data into v.
func runJSON(t *testing.T, v interface{}, argv ...string) {
	t.Helper()
	stdout, stderr, code := run(t, append(argv, "--json")...)
	if code != ExitSuccess {
		t.Fatalf("%v exited %d\nstdout: %s\nstderr: %s", argv, code, stdout, stderr)
	}
	resp := struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal([]byte(stdout), &resp); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout)
	}
	if !resp.Success {
		t.Fatalf("response not successful: %s", stdout)
	}
	if v != nil {
		if err := json.Unmarshal(resp.Data, v); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
}

// =============================================================================
// RUN COMMAND
// =============================================================================

func TestRun_WritesCSVAndHistory(t *testing.T) {
	home := isolate(t)
	out := filepath.Join(t.TempDir(), "reports")

	stdout, stderr, code := run(t, "run", "--engine", "selection", "--sizes", "8,16",
		"--series", "2", "--seed", "7", "--out", out)
	if code != ExitSuccess {
		t.Fatalf("exit %d\nstdout: %s\nstderr: %s", code, stdout, stderr)
	}

	data, err := os.ReadFile(filepath.Join(out, "sorting_data.csv"))
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("CSV has %d lines, want 3:\n%s", len(lines), data)
	}
	if lines[0] != "ArraySize,AvgTime,BestTime,WorstTime,AvgPasses,AvgSwaps" {
		t.Errorf("CSV header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "8,") || !strings.HasPrefix(lines[2], "16,") {
		t.Errorf("CSV rows out of order: %v", lines[1:])
	}

	if !strings.Contains(stdout, "Selection sort") {
		t.Errorf("stdout missing result table:\n%s", stdout)
	}
	if !strings.Contains(stdout, "Report written to") || !strings.Contains(stdout, "Recorded in history") {
		t.Errorf("stdout missing status lines:\n%s", stdout)
	}
	if !strings.Contains(stderr, "series 2/2") {
		t.Errorf("stderr missing plain progress:\n%s", stderr)
	}

	store, err := storage.Open(filepath.Join(home, "results.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	n, err := store.Count(context.Background())
	if err != nil || n != 1 {
		t.Errorf("history count = %d, %v; want 1", n, err)
	}
}

func TestRun_JSONAllEngines(t *testing.T) {
	isolate(t)
	out := t.TempDir()

	var data RunData
	runJSON(t, &data, "--sizes", "4,8", "--series", "1", "--seed", "99", "--out", out, "--no-history")

	if len(data.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(data.Results))
	}
	if data.Results[0].Engine != benchmark.EngineSelection || data.Results[1].Engine != benchmark.EngineMerge {
		t.Errorf("engines out of order: %s, %s", data.Results[0].Engine, data.Results[1].Engine)
	}
	for _, r := range data.Results {
		if r.Seed != 99 {
			t.Errorf("%s seed = %d, want 99", r.Engine, r.Seed)
		}
		if len(r.Series) != 2 {
			t.Errorf("%s has %d series, want 2", r.Engine, len(r.Series))
		}
	}
	if len(data.Files) != 2 || data.Saved {
		t.Errorf("files = %v saved = %t", data.Files, data.Saved)
	}
	if _, err := os.Stat(filepath.Join(out, "data.csv")); err != nil {
		t.Errorf("merge report missing: %v", err)
	}
}

func TestRun_ReplaysSeedAboveInt64(t *testing.T) {
	isolate(t)
	out := t.TempDir()
	const seed uint64 = 9223372036854788152

	var first RunData
	runJSON(t, &first, "--engine", "merge", "--sizes", "8", "--series", "1",
		"--seed", fmt.Sprint(seed), "--out", out)
	if len(first.Results) != 1 || first.Results[0].Seed != seed {
		t.Fatalf("first run = %+v", first)
	}

	// The seed shown by history must be accepted back by --seed
	var shown benchmark.Result
	runJSON(t, &shown, "history", "show", first.Results[0].ID)
	if shown.Seed != seed {
		t.Fatalf("history seed = %d, want %d", shown.Seed, seed)
	}

	var replay RunData
	runJSON(t, &replay, "--engine", "merge", "--sizes", "8", "--series", "1",
		"--seed", fmt.Sprint(shown.Seed), "--out", out, "--no-history")
	if len(replay.Results) != 1 || replay.Results[0].Seed != seed {
		t.Errorf("replay = %+v", replay)
	}

	t.Setenv("SORTBENCH_SEED", fmt.Sprint(seed))
	var fromEnv RunData
	runJSON(t, &fromEnv, "--engine", "merge", "--sizes", "8", "--series", "1",
		"--out", out, "--no-history")
	if len(fromEnv.Results) != 1 || fromEnv.Results[0].Seed != seed {
		t.Errorf("SORTBENCH_SEED run = %+v", fromEnv)
	}
}

func TestRun_MarkdownFormat(t *testing.T) {
	isolate(t)
	out := t.TempDir()

	var data RunData
	runJSON(t, &data, "--engine", "merge", "--sizes", "16", "--series", "1",
		"--format", "markdown", "--out", out, "--no-history")

	if len(data.Files) != 1 || !strings.HasSuffix(data.Files[0], ".md") {
		t.Fatalf("files = %v", data.Files)
	}
	content, err := os.ReadFile(data.Files[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "O(n log n)") {
		t.Errorf("markdown report missing growth:\n%s", content)
	}
}

func TestRun_InvalidFlags(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		argv []string
	}{
		{"bad sizes", []string{"run", "--sizes", "abc"}},
		{"negative size", []string{"run", "--sizes", "8,-1"}},
		{"zero series", []string{"run", "--series", "0"}},
		{"negative seed", []string{"run", "--seed", "-1"}},
		{"seed overflow", []string{"run", "--seed", "18446744073709551616"}},
		{"unknown engine", []string{"run", "--engine", "heap"}},
		{"unknown format", []string{"run", "--format", "xml"}},
		{"unknown flag", []string{"run", "--bogus"}},
		{"positional", []string{"run", "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, code := run(t, tt.argv...)
			if code != ExitUsageError {
				t.Errorf("exit = %d, want %d\nstderr: %s", code, ExitUsageError, stderr)
			}
			if !strings.Contains(stderr, "[ERROR]") {
				t.Errorf("stderr missing error: %s", stderr)
			}
		})
	}
}

func TestRun_Cancelled(t *testing.T) {
	isolate(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	code := Main(ctx, []string{"--sizes", "8", "--series", "1", "--out", t.TempDir()}, &stdout, &stderr)
	if code != ExitInterrupted {
		t.Errorf("exit = %d, want %d", code, ExitInterrupted)
	}
	if !strings.Contains(stdout.String(), "Run cancelled") {
		t.Errorf("stdout missing cancel notice:\n%s", stdout.String())
	}
}

// =============================================================================
// HISTORY AND REPORT COMMANDS
// =============================================================================

func TestHistoryAndReport(t *testing.T) {
	isolate(t)
	out := t.TempDir()

	var data RunData
	runJSON(t, &data, "--engine", "selection", "--sizes", "8", "--series", "2", "--out", out)
	if len(data.Results) != 1 || !data.Saved {
		t.Fatalf("run data = %+v", data)
	}
	id := data.Results[0].ID
	prefix := id[:8]

	var list HistoryListData
	runJSON(t, &list, "history", "list")
	if list.Total != 1 || len(list.Runs) != 1 || list.Runs[0].ID != id {
		t.Fatalf("history list = %+v", list)
	}

	stdout, _, code := run(t, "history")
	if code != ExitSuccess || !strings.Contains(stdout, prefix) {
		t.Errorf("history table missing %s (exit %d):\n%s", prefix, code, stdout)
	}

	stdout, _, code = run(t, "history", "show", prefix)
	if code != ExitSuccess || !strings.Contains(stdout, "Selection sort") {
		t.Errorf("history show failed (exit %d):\n%s", code, stdout)
	}

	stdout, _, code = run(t, "report", prefix, "--format", "csv")
	if code != ExitSuccess || !strings.HasPrefix(stdout, "ArraySize,") {
		t.Errorf("report csv failed (exit %d):\n%s", code, stdout)
	}

	stdout, _, code = run(t, "report", "latest")
	if code != ExitSuccess || !strings.Contains(stdout, "# Selection sort benchmark") {
		t.Errorf("report latest failed (exit %d):\n%s", code, stdout)
	}

	reportPath := filepath.Join(out, "run.json")
	var report ReportData
	runJSON(t, &report, "report", id, "--format", "json", "--output", reportPath)
	if report.Path != reportPath || report.ID != id {
		t.Errorf("report data = %+v", report)
	}
	raw, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatal(err)
	}
	var decoded benchmark.Result
	if err := json.Unmarshal(raw, &decoded); err != nil || decoded.ID != id {
		t.Errorf("report file = %s (%v)", raw, err)
	}
	if len(decoded.Trials) != 2 {
		t.Errorf("report file has %d trials, want 2", len(decoded.Trials))
	}
	if report.MimeType != "application/json" {
		t.Errorf("report mime type = %q", report.MimeType)
	}

	var slim ReportData
	runJSON(t, &slim, "report", id, "--format", "json", "--no-trials")
	if strings.Contains(slim.Output, `"trials": [`) || !strings.Contains(slim.Output, `"series"`) {
		t.Errorf("--no-trials output:\n%s", slim.Output)
	}

	_, _, code = run(t, "report", "latest", "--engine", "merge")
	if code != ExitNotFoundError {
		t.Errorf("report latest merge exit = %d, want %d", code, ExitNotFoundError)
	}

	_, _, code = run(t, "history", "delete", prefix)
	if code != ExitUsageError {
		t.Errorf("delete without --confirm exit = %d, want %d", code, ExitUsageError)
	}

	stdout, _, code = run(t, "history", "delete", "--confirm", prefix)
	if code != ExitSuccess || !strings.Contains(stdout, "Deleted run") {
		t.Errorf("delete failed (exit %d):\n%s", code, stdout)
	}

	_, _, code = run(t, "history", "show", prefix)
	if code != ExitNotFoundError {
		t.Errorf("show deleted exit = %d, want %d", code, ExitNotFoundError)
	}
}

func TestHistory_Errors(t *testing.T) {
	isolate(t)

	tests := []struct {
		argv []string
		want int
	}{
		{[]string{"history", "show"}, ExitUsageError},
		{[]string{"history", "show", "abc"}, ExitUsageError},
		{[]string{"history", "show", "abcd"}, ExitNotFoundError},
		{[]string{"history", "frobnicate"}, ExitUsageError},
		{[]string{"history", "list", "--limit", "x"}, ExitUsageError},
		{[]string{"report"}, ExitUsageError},
		{[]string{"report", "abcd", "--format", "xml"}, ExitUsageError},
		{[]string{"report", "latest"}, ExitNotFoundError},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.argv, "_"), func(t *testing.T) {
			_, stderr, code := run(t, tt.argv...)
			if code != tt.want {
				t.Errorf("exit = %d, want %d\nstderr: %s", code, tt.want, stderr)
			}
		})
	}
}

func TestHistory_ConfigLimitZeroListsAll(t *testing.T) {
	home := isolate(t)
	out := t.TempDir()

	for i := 0; i < 3; i++ {
		runJSON(t, nil, "--engine", "merge", "--sizes", "4", "--series", "1", "--out", out)
	}

	path := filepath.Join(home, "config.toml")
	if err := os.WriteFile(path, []byte("[storage]\nhistory_limit = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	var list HistoryListData
	runJSON(t, &list, "history", "list")
	if len(list.Runs) != 1 || list.Total != 3 {
		t.Errorf("history_limit = 1 listed %d of %d runs", len(list.Runs), list.Total)
	}

	if err := os.WriteFile(path, []byte("[storage]\nhistory_limit = 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	runJSON(t, &list, "history", "list")
	if len(list.Runs) != 3 {
		t.Errorf("history_limit = 0 listed %d runs, want 3", len(list.Runs))
	}
}

func TestHistory_EmptyList(t *testing.T) {
	isolate(t)
	stdout, _, code := run(t, "history", "list")
	if code != ExitSuccess || !strings.Contains(stdout, "No benchmark runs recorded.") {
		t.Errorf("empty history (exit %d):\n%s", code, stdout)
	}
}

// =============================================================================
// CONFIG, VERSION AND HELP COMMANDS
// =============================================================================

func TestConfigCommands(t *testing.T) {
	home := isolate(t)

	stdout, _, code := run(t, "config", "init")
	if code != ExitSuccess {
		t.Fatalf("config init exit %d", code)
	}
	path := filepath.Join(home, "config.toml")
	if !strings.Contains(stdout, path) {
		t.Errorf("config init output missing path:\n%s", stdout)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	_, _, code = run(t, "config", "init")
	if code != ExitUsageError {
		t.Errorf("second init exit = %d, want %d", code, ExitUsageError)
	}
	_, _, code = run(t, "config", "init", "--force")
	if code != ExitSuccess {
		t.Errorf("forced init exit = %d", code)
	}

	stdout, _, code = run(t, "config", "show")
	if code != ExitSuccess || !strings.Contains(stdout, "[benchmark]") || !strings.Contains(stdout, path) {
		t.Errorf("config show (exit %d):\n%s", code, stdout)
	}

	var cfgData ConfigData
	runJSON(t, &cfgData, "config")
	if !cfgData.Exists || cfgData.Config.Benchmark.SeriesLength != benchmark.DefaultSeriesLength {
		t.Errorf("config data = %+v", cfgData)
	}

	var paths map[string]string
	runJSON(t, &paths, "config", "path")
	if paths["database"] != filepath.Join(home, "results.db") {
		t.Errorf("config path = %v", paths)
	}
}

func TestConfig_ExplicitFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "bench.toml")
	cfg := config.Default()
	cfg.Benchmark.Sizes = []int{4}
	cfg.Benchmark.SeriesLength = 1
	cfg.Benchmark.Engines = []string{"merge"}
	cfg.Storage.Enabled = false
	cfg.Output.Dir = dir
	cfg.Output.Format = "json"
	cfg.Output.IncludeTrials = false
	if err := config.SaveTOML(cfg, good); err != nil {
		t.Fatal(err)
	}

	var data RunData
	runJSON(t, &data, "--config", good)
	if len(data.Results) != 1 || data.Results[0].Engine != benchmark.EngineMerge || data.Saved {
		t.Errorf("run with config file = %+v", data)
	}
	if len(data.Files) != 1 {
		t.Fatalf("files = %v", data.Files)
	}
	written, err := os.ReadFile(data.Files[0])
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(written), `"trials": [`) {
		t.Errorf("include_trials = false still wrote trials:\n%s", written)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[benchmark\nsizes = "), 0644); err != nil {
		t.Fatal(err)
	}
	_, _, code := run(t, "--config", bad)
	if code != ExitConfigError {
		t.Errorf("bad config exit = %d, want %d", code, ExitConfigError)
	}
}

func TestVersionAndHelp(t *testing.T) {
	stdout, _, code := run(t, "version")
	if code != ExitSuccess || !strings.Contains(stdout, "sortbench version "+Version) {
		t.Errorf("version output (exit %d):\n%s", code, stdout)
	}

	var v VersionData
	runJSON(t, &v, "version")
	if v.Version != Version || v.GoVersion == "" {
		t.Errorf("version data = %+v", v)
	}

	stdout, _, code = run(t, "help")
	if code != ExitSuccess || !strings.Contains(stdout, "Usage:") || !strings.Contains(stdout, "--engine") {
		t.Errorf("help output (exit %d):\n%s", code, stdout)
	}

	_, stderr, code := run(t, "frobnicate")
	if code != ExitUsageError || !strings.Contains(stderr, "unknown command") {
		t.Errorf("unknown command (exit %d):\n%s", code, stderr)
	}
}

func TestJSONErrorOutput(t *testing.T) {
	isolate(t)
	stdout, _, code := run(t, "history", "show", "zzzz", "--json")
	if code != ExitNotFoundError {
		t.Fatalf("exit = %d, want %d", code, ExitNotFoundError)
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("invalid JSON error: %v\n%s", err, stdout)
	}
	if out["success"] != false || out["error_type"] != "not_found_error" {
		t.Errorf("error JSON = %v", out)
	}
}

// =============================================================================
// ERROR MAPPING (errors.go)
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"cancelled", fmt.Errorf("run: %w", context.Canceled), ExitInterrupted},
		{"validation", NewValidationError("sizes", "x", "bad"), ExitUsageError},
		{"not found type", NewNotFoundError("run", "abcd"), ExitNotFoundError},
		{"storage not found", fmt.Errorf("load: %w", storage.ErrNotFound), ExitNotFoundError},
		{"unsorted", NewCommandError("run", "benchmark", "failed", benchmark.ErrNotSorted), ExitVerifyError},
		{"unknown engine", benchmark.ErrUnknownEngine, ExitUsageError},
		{"config validation", fmt.Errorf("invalid config: %w", config.ValidateErrors{{Field: "a", Message: "b"}}), ExitConfigError},
		{"database", fmt.Errorf("%w: disk I/O", storage.ErrDatabaseError), ExitStorageError},
		{"generic", errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	err := NewValidationErrorWithExample("series", "0", "must be positive", "--series 20")
	if err.Error() != "invalid series: must be positive (got: 0)\nExample: --series 20" {
		t.Errorf("ValidationError = %q", err.Error())
	}

	cmdErr := NewCommandError("history", "delete", "could not delete run", errors.New("locked"))
	if cmdErr.Error() != "history delete failed: could not delete run: locked" {
		t.Errorf("CommandError = %q", cmdErr.Error())
	}

	if WrapError(nil, "x") != nil {
		t.Error("WrapError(nil) should be nil")
	}
}
