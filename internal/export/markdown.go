// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/sortbench/internal/benchmark"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports results to Markdown format.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a result to Markdown format.
func (e *MarkdownExporter) Export(r *benchmark.Result) ([]byte, error) {
	if r == nil {
		return nil, ErrNilResult
	}
	if !r.Engine.Valid() {
		return nil, fmt.Errorf("%w: %q", benchmark.ErrUnknownEngine, r.Engine)
	}

	var sb strings.Builder
	title := fmt.Sprintf("%s sort benchmark", titleCase(string(r.Engine)))

	// YAML frontmatter with metadata
	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "title: %s\n", title)
		fmt.Fprintf(&sb, "run: %s\n", r.ID)
		fmt.Fprintf(&sb, "engine: %s\n", r.Engine)
		fmt.Fprintf(&sb, "seed: %d\n", r.Seed)
		fmt.Fprintf(&sb, "series_length: %d\n", r.SeriesLength)
		if !r.StartTime.IsZero() {
			fmt.Fprintf(&sb, "date: %s\n", r.StartTime.Format(time.RFC3339))
		}
		sb.WriteString("generator: sortbench\n")
		sb.WriteString("---\n\n")
	}

	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "%d trials per size, completed in %s.\n\n", r.SeriesLength, benchmark.FormatDuration(r.Duration))

	if len(r.Series) == 0 {
		sb.WriteString("_No completed series._\n")
		return []byte(sb.String()), nil
	}

	e.writeTable(&sb, r)
	e.writeComplexity(&sb, r)

	return []byte(sb.String()), nil
}

// writeTable writes one row per array size.
func (e *MarkdownExporter) writeTable(sb *strings.Builder, r *benchmark.Result) {
	columns := []string{"Size", "Avg (s)", "Best (s)", "Worst (s)"}
	if r.Engine == benchmark.EngineSelection {
		columns = append(columns, "Avg passes", "Avg swaps")
	} else {
		columns = append(columns, "Avg peak memory", "Avg max depth", "Avg calls")
	}

	sb.WriteString("| " + strings.Join(columns, " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat("---:|", len(columns)) + "\n")

	for _, s := range r.Series {
		cells := []string{
			benchmark.FormatCount(float64(s.Size)),
			fmt.Sprintf("%.6f", s.AvgTime.Seconds()),
			fmt.Sprintf("%.6f", s.BestTime.Seconds()),
			fmt.Sprintf("%.6f", s.WorstTime.Seconds()),
		}
		if r.Engine == benchmark.EngineSelection {
			cells = append(cells, benchmark.FormatCount(s.AvgPasses), benchmark.FormatCount(s.AvgSwaps))
		} else {
			cells = append(cells,
				benchmark.FormatCount(s.AvgPeakMemory),
				benchmark.FormatCount(s.AvgMaxDepth),
				benchmark.FormatCount(s.AvgCalls))
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	sb.WriteString("\n")
}

// writeComplexity writes the fitted bound on the worst time.
func (e *MarkdownExporter) writeComplexity(sb *strings.Builder, r *benchmark.Result) {
	growth, label := r.Engine.Growth()
	c := benchmark.FitConstant(r.Series, growth)

	sb.WriteString("## Complexity\n\n")
	fmt.Fprintf(sb, "- **Expected growth**: %s\n", label)
	if c == 0 {
		sb.WriteString("- **Fitted constant**: not enough data\n")
		return
	}
	fmt.Fprintf(sb, "- **Fitted constant**: c = %.4e\n", c)
	fmt.Fprintf(sb, "- Worst time stays within c·%s for every measured size.\n", growthExpr(r.Engine))
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

func growthExpr(engine benchmark.Engine) string {
	if engine == benchmark.EngineMerge {
		return "n·log2(n)"
	}
	return "n²"
}

// titleCase upper-cases the first rune.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}
