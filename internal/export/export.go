// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jeranaias/sortbench/internal/benchmark"
	"github.com/jeranaias/sortbench/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// ErrNilResult is returned when an exporter is handed no result.
var ErrNilResult = errors.New("result is nil")

// Exporter defines the interface for result exporters.
type Exporter interface {
	// Export encodes a result in the target format.
	Export(r *benchmark.Result) ([]byte, error)

	// FileExtension returns the file extension (e.g., ".csv", ".md").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files will be saved.
	// Default: current working directory
	OutputDir string

	// SelectionFile and MergeFile name the CSV report of each engine.
	SelectionFile string
	MergeFile     string

	// IncludeMetadata writes the Markdown front matter.
	IncludeMetadata bool

	// IncludeTrials keeps per-trial measurements in JSON exports.
	IncludeTrials bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:       ".",
		SelectionFile:   "sorting_data.csv",
		MergeFile:       "data.csv",
		IncludeMetadata: true,
		IncludeTrials:   true,
	}
}

// Formats lists the accepted format names.
func Formats() []string {
	return []string{"csv", "json", "md"}
}

// NewExporter returns the exporter for a format name.
func NewExporter(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return NewCSVExporter(), nil
	case "json":
		return NewJSONExporter(opts), nil
	case "md", "markdown":
		return NewMarkdownExporter(opts), nil
	}
	return nil, fmt.Errorf("unknown export format %q (want one of: %s)", format, strings.Join(Formats(), ", "))
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// FileName returns the report file name for a result.
// CSV reports use the configured per-engine names; other formats are
// named after the engine and the run ID.
func FileName(r *benchmark.Result, exporter Exporter, opts *Options) string {
	if opts == nil {
		opts = DefaultOptions()
	}
	if _, ok := exporter.(*CSVExporter); ok {
		switch r.Engine {
		case benchmark.EngineSelection:
			return opts.SelectionFile
		case benchmark.EngineMerge:
			return opts.MergeFile
		}
	}
	return fmt.Sprintf("sortbench_%s_%s%s", r.Engine, util.ShortID(r.ID, 8), exporter.FileExtension())
}

// ExportToFile exports a result into opts.OutputDir and returns the path.
// RELIABILITY: Atomic write so a crash never leaves a half-written report
func ExportToFile(r *benchmark.Result, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if r == nil {
		return "", ErrNilResult
	}

	content, err := exporter.Export(r)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	outputPath := filepath.Join(opts.OutputDir, FileName(r, exporter, opts))
	if err := WriteFile(outputPath, content); err != nil {
		return "", err
	}
	return outputPath, nil
}

// WriteFile writes exported content to an explicit path.
func WriteFile(path string, content []byte) error {
	if err := util.AtomicWriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// formatFloat renders a value with the fewest digits that round-trip.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
