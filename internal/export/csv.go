// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/jeranaias/sortbench/internal/benchmark"
)

// =============================================================================
// CSV EXPORTER
// =============================================================================

var (
	selectionHeader = []string{"ArraySize", "AvgTime", "BestTime", "WorstTime", "AvgPasses", "AvgSwaps"}
	mergeHeader     = []string{"ArraySize", "AvgTime", "BestTime", "WorstTime", "AvgMaxMemory", "AvgMaxDepth", "AvgTotalCalls"}
)

// CSVExporter writes one row per array size. Times are in seconds.
type CSVExporter struct{}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Header returns the CSV column names for an engine.
func Header(engine benchmark.Engine) ([]string, error) {
	switch engine {
	case benchmark.EngineSelection:
		return selectionHeader, nil
	case benchmark.EngineMerge:
		return mergeHeader, nil
	}
	return nil, fmt.Errorf("%w: %q", benchmark.ErrUnknownEngine, engine)
}

// Export converts a result to CSV.
func (e *CSVExporter) Export(r *benchmark.Result) ([]byte, error) {
	if r == nil {
		return nil, ErrNilResult
	}
	header, err := Header(r.Engine)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, s := range r.Series {
		row := []string{
			fmt.Sprint(s.Size),
			formatFloat(s.AvgTime.Seconds()),
			formatFloat(s.BestTime.Seconds()),
			formatFloat(s.WorstTime.Seconds()),
		}
		if r.Engine == benchmark.EngineSelection {
			row = append(row, formatFloat(s.AvgPasses), formatFloat(s.AvgSwaps))
		} else {
			row = append(row, formatFloat(s.AvgPeakMemory), formatFloat(s.AvgMaxDepth), formatFloat(s.AvgCalls))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	return buf.Bytes(), nil
}

// FileExtension returns the file extension for CSV.
func (e *CSVExporter) FileExtension() string {
	return ".csv"
}

// MimeType returns the MIME type for CSV.
func (e *CSVExporter) MimeType() string {
	return "text/csv"
}
