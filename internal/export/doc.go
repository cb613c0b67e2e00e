// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes benchmark results to report files.
//
// # Key Types
//
//   - Exporter: Format-specific encoder for a benchmark.Result
//   - Options: Output directory and file naming
//
// # Supported Formats
//
//   - CSV: One row per array size, in the column layout the plotting
//     scripts consume (sorting_data.csv for selection, data.csv for merge)
//   - JSON: The complete result, trials included
//   - Markdown: Front matter, a results table and the complexity fit
//
// # Usage
//
//	exporter, err := export.NewExporter("csv", opts)
//	if err != nil {
//	    return err
//	}
//	path, err := export.ExportToFile(result, exporter, opts)
package export
