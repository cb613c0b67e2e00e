// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"

	"github.com/jeranaias/sortbench/internal/benchmark"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports the complete result as indented JSON.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Export converts a result to JSON.
func (e *JSONExporter) Export(r *benchmark.Result) ([]byte, error) {
	if r == nil {
		return nil, ErrNilResult
	}
	if !e.options.IncludeTrials {
		trimmed := *r
		trimmed.Trials = nil
		r = &trimmed
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
