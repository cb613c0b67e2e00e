// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sortbench/internal/benchmark"
	"github.com/jeranaias/sortbench/internal/storage"
	"github.com/jeranaias/sortbench/internal/ui/styles"
	"github.com/jeranaias/sortbench/internal/util"
)

// =============================================================================
// RESULT VIEW
// =============================================================================

// ResultView renders benchmark results for the terminal.
type ResultView struct {
	width int
}

// NewResultView creates a result view that wraps boxes at width columns.
func NewResultView(width int) *ResultView {
	return &ResultView{width: width}
}

// SetWidth updates the view width.
func (v *ResultView) SetWidth(width int) {
	v.width = width
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Purple)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.TextSecondary)

	mutedStyle = lipgloss.NewStyle().Foreground(styles.TextMuted)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.Overlay).
			Padding(0, 1)
)

// RenderResult renders a single engine run as a titled table.
func (v *ResultView) RenderResult(result *benchmark.Result) string {
	if result == nil {
		return "No benchmark result available"
	}

	var b strings.Builder

	engineStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.EngineColor(string(result.Engine)))
	b.WriteString(titleStyle.Render("Benchmark Results: "))
	b.WriteString(engineStyle.Render(engineTitle(result.Engine)))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("run %s  seed %d  %d trials per size  %s",
		util.ShortID(result.ID, 8), result.Seed, result.SeriesLength, benchmark.FormatDuration(result.Duration))))
	b.WriteString("\n\n")

	if len(result.Series) == 0 {
		b.WriteString(mutedStyle.Render("No completed series."))
		return b.String()
	}

	b.WriteString(resultTable(result).render())
	b.WriteString("\n\n")

	f, label := result.Engine.Growth()
	if c := benchmark.FitConstant(result.Series, f); c > 0 {
		b.WriteString(fmt.Sprintf("Expected growth %s, fitted constant c = %.4e", label, c))
	} else {
		b.WriteString(fmt.Sprintf("Expected growth %s, not enough data to fit a constant", label))
	}

	return b.String()
}

// RenderComparison renders every engine of a comparison followed by a
// summary box naming the fastest engine at each size.
func (v *ResultView) RenderComparison(comparison *benchmark.Comparison) string {
	if comparison == nil {
		return "No comparison available"
	}

	var sections []string
	for _, engine := range comparison.Engines {
		if result := comparison.Results[engine]; result != nil {
			sections = append(sections, v.RenderResult(result))
		}
		if msg, ok := comparison.Errors[engine]; ok {
			line := fmt.Sprintf("%s: %s", engine, msg)
			if v.width > 0 {
				line = util.TruncateWidth(line, v.width-util.StringWidth(styles.IndicatorError)-1)
			}
			sections = append(sections, styles.RenderError(line))
		}
	}

	if len(comparison.Engines) > 1 {
		sections = append(sections, v.box(v.comparisonTable(comparison)))
	}

	return strings.Join(sections, "\n\n")
}

// comparisonTable lists the average time of every engine per size.
func (v *ResultView) comparisonTable(comparison *benchmark.Comparison) string {
	headers := []string{"Size"}
	for _, engine := range comparison.Engines {
		headers = append(headers, string(engine))
	}
	headers = append(headers, "Fastest")

	t := newTable(headers...)
	for i := 1; i < len(headers)-1; i++ {
		t.alignRight(i)
	}

	for _, size := range comparisonSizes(comparison) {
		row := []string{benchmark.FormatCount(float64(size))}
		for _, engine := range comparison.Engines {
			cell := "-"
			if result := comparison.Results[engine]; result != nil {
				if s := result.SeriesFor(size); s != nil {
					cell = benchmark.FormatSeconds(s.AvgTime)
				}
			}
			row = append(row, cell)
		}
		fastest, _ := comparison.FastestAt(size)
		row = append(row, string(fastest))
		t.addRow(row...)
	}

	return titleStyle.Render("Comparison") + "\n" + t.render()
}

// RenderHistory renders a listing of stored runs.
func (v *ResultView) RenderHistory(metas []storage.ResultMeta) string {
	if len(metas) == 0 {
		return mutedStyle.Render("No benchmark runs recorded.")
	}

	t := newTable("ID", "Engine", "Started", "Sizes", "Largest", "Trials", "Duration")
	t.alignRight(3)
	t.alignRight(4)
	t.alignRight(5)
	t.alignRight(6)
	for _, m := range metas {
		t.addRow(
			util.ShortID(m.ID, 8),
			string(m.Engine),
			m.StartTime.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", m.SizeCount),
			benchmark.FormatCount(float64(m.MaxSize)),
			fmt.Sprintf("%d", m.SeriesLength),
			benchmark.FormatDuration(m.Duration),
		)
	}

	return titleStyle.Render(fmt.Sprintf("Benchmark History (%d)", len(metas))) + "\n" + t.render()
}

func (v *ResultView) box(content string) string {
	style := boxStyle
	if v.width > 0 {
		style = style.MaxWidth(v.width)
	}
	return style.Render(content)
}

// =============================================================================
// TABLES
// =============================================================================

// resultTable lays out one row per series with the engine's own metrics.
func resultTable(result *benchmark.Result) *table {
	var t *table
	switch result.Engine {
	case benchmark.EngineMerge:
		t = newTable("Size", "Avg", "Best", "Worst", "Peak memory", "Max depth", "Calls")
	default:
		t = newTable("Size", "Avg", "Best", "Worst", "Passes", "Swaps")
	}
	for i := range t.headers {
		t.alignRight(i)
	}

	for _, s := range result.Series {
		row := []string{
			benchmark.FormatCount(float64(s.Size)),
			benchmark.FormatSeconds(s.AvgTime),
			benchmark.FormatSeconds(s.BestTime),
			benchmark.FormatSeconds(s.WorstTime),
		}
		if result.Engine == benchmark.EngineMerge {
			row = append(row,
				benchmark.FormatCount(s.AvgPeakMemory),
				benchmark.FormatCount(s.AvgMaxDepth),
				benchmark.FormatCount(s.AvgCalls))
		} else {
			row = append(row,
				benchmark.FormatCount(s.AvgPasses),
				benchmark.FormatCount(s.AvgSwaps))
		}
		t.addRow(row...)
	}
	return t
}

// table is a plain column-aligned text table. Cells are padded by display
// width before styling so escape sequences never skew the columns.
type table struct {
	headers []string
	rows    [][]string
	right   map[int]bool
}

func newTable(headers ...string) *table {
	return &table{headers: headers, right: make(map[int]bool)}
}

func (t *table) alignRight(col int) {
	t.right[col] = true
}

func (t *table) addRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) widths() []int {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = util.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], util.StringWidth(cell))
			}
		}
	}
	return widths
}

func (t *table) pad(col int, cell string, width int) string {
	if t.right[col] {
		return util.PadLeft(cell, width)
	}
	return util.PadRight(cell, width)
}

func (t *table) render() string {
	widths := t.widths()

	var b strings.Builder
	cells := make([]string, len(t.headers))
	for i, h := range t.headers {
		cells[i] = headerStyle.Render(t.pad(i, h, widths[i]))
	}
	b.WriteString(strings.Join(cells, "  "))

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("─", w)
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(strings.Join(rule, "  ")))

	for _, row := range t.rows {
		cells := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			cells[i] = t.pad(i, cell, widths[i])
		}
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(strings.Join(cells, "  "), " "))
	}

	return b.String()
}

// =============================================================================
// HELPERS
// =============================================================================

func engineTitle(engine benchmark.Engine) string {
	switch engine {
	case benchmark.EngineSelection:
		return "Selection sort"
	case benchmark.EngineMerge:
		return "Merge sort"
	}
	return string(engine)
}

// comparisonSizes returns the union of sizes across results, in first-seen order.
func comparisonSizes(comparison *benchmark.Comparison) []int {
	seen := make(map[int]bool)
	var sizes []int
	for _, engine := range comparison.Engines {
		result := comparison.Results[engine]
		if result == nil {
			continue
		}
		for _, size := range result.Sizes() {
			if !seen[size] {
				seen[size] = true
				sizes = append(sizes, size)
			}
		}
	}
	return sizes
}
