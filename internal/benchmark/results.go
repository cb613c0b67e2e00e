// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package benchmark

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrUnknownEngine = errors.New("unknown sort engine")
	ErrInvalidSize   = errors.New("invalid array size")
	ErrNotSorted     = errors.New("engine produced unsorted output")
)

// =============================================================================
// ENGINES
// =============================================================================

// Engine names a sort engine.
type Engine string

const (
	EngineSelection Engine = "selection"
	EngineMerge     Engine = "merge"
)

// Engines returns every supported engine in report order.
func Engines() []Engine {
	return []Engine{EngineSelection, EngineMerge}
}

// ParseEngine resolves an engine name case-insensitively.
func ParseEngine(name string) (Engine, error) {
	switch Engine(strings.ToLower(strings.TrimSpace(name))) {
	case EngineSelection:
		return EngineSelection, nil
	case EngineMerge:
		return EngineMerge, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEngine, name)
}

// Valid reports whether e is a supported engine.
func (e Engine) Valid() bool {
	return e == EngineSelection || e == EngineMerge
}

// =============================================================================
// RESULT TYPES
// =============================================================================

// Trial is the measurement of one sort over one generated array.
// Selection trials fill Passes and Swaps; merge trials fill the rest.
type Trial struct {
	Size       int           `json:"size"`
	Index      int           `json:"index"`
	Duration   time.Duration `json:"duration"`
	Passes     int           `json:"passes,omitempty"`
	Swaps      int           `json:"swaps,omitempty"`
	PeakMemory int           `json:"peak_memory,omitempty"`
	MaxDepth   int           `json:"max_depth,omitempty"`
	Calls      int           `json:"calls,omitempty"`
}

// Series aggregates the trials run at a single array size.
type Series struct {
	Size      int           `json:"size"`
	Trials    int           `json:"trials"`
	AvgTime   time.Duration `json:"avg_time"`
	BestTime  time.Duration `json:"best_time"`
	WorstTime time.Duration `json:"worst_time"`

	// Selection sort
	AvgPasses float64 `json:"avg_passes,omitempty"`
	AvgSwaps  float64 `json:"avg_swaps,omitempty"`

	// Merge sort
	AvgPeakMemory float64 `json:"avg_peak_memory,omitempty"`
	AvgMaxDepth   float64 `json:"avg_max_depth,omitempty"`
	AvgCalls      float64 `json:"avg_calls,omitempty"`
}

// Result contains the complete benchmark results for one engine.
type Result struct {
	ID           string        `json:"id"`
	Engine       Engine        `json:"engine"`
	Seed         uint64        `json:"seed,omitempty"`
	SeriesLength int           `json:"series_length"`
	StartTime    time.Time     `json:"start_time"`
	EndTime      time.Time     `json:"end_time"`
	Duration     time.Duration `json:"duration"`
	Series       []Series      `json:"series"`
	Trials       []Trial       `json:"trials,omitempty"`
}

// Comparison holds the results of several engines run over the same sizes.
type Comparison struct {
	Engines   []Engine           `json:"engines"`
	Results   map[Engine]*Result `json:"results"`
	Errors    map[Engine]string  `json:"errors,omitempty"`
	StartTime time.Time          `json:"start_time"`
	EndTime   time.Time          `json:"end_time"`
	Duration  time.Duration      `json:"duration"`
}

// Progress reports the completion of one trial.
type Progress struct {
	Engine       Engine `json:"engine"`
	Size         int    `json:"size"`
	Trial        int    `json:"trial"` // 1-based within the series
	SeriesLength int    `json:"series_length"`
	Completed    int    `json:"completed"`
	Total        int    `json:"total"`
	Last         Trial  `json:"last"`
}

// Percent returns overall completion in [0, 1].
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total)
}

// Done reports whether this was the final trial of the run.
func (p Progress) Done() bool {
	return p.Total > 0 && p.Completed >= p.Total
}

// =============================================================================
// RESULT ANALYSIS
// =============================================================================

// SeriesFor returns the series for an array size, or nil.
func (r *Result) SeriesFor(size int) *Series {
	for i := range r.Series {
		if r.Series[i].Size == size {
			return &r.Series[i]
		}
	}
	return nil
}

// Sizes returns the array sizes of the result in run order.
func (r *Result) Sizes() []int {
	sizes := make([]int, len(r.Series))
	for i, s := range r.Series {
		sizes[i] = s.Size
	}
	return sizes
}

// FastestAt returns the engine with the lowest average time at size.
// Returns an empty engine if no result has that size.
func (c *Comparison) FastestAt(size int) (Engine, *Series) {
	var fastest Engine
	var fastestSeries *Series

	for _, engine := range c.Engines {
		result, ok := c.Results[engine]
		if !ok || result == nil {
			continue
		}
		s := result.SeriesFor(size)
		if s == nil {
			continue
		}
		if fastestSeries == nil || s.AvgTime < fastestSeries.AvgTime {
			fastest = engine
			fastestSeries = s
		}
	}

	return fastest, fastestSeries
}

// =============================================================================
// SUMMARY GENERATION
// =============================================================================

// Summary returns a text summary of the benchmark result.
func (r *Result) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Engine: %s\n", r.Engine)
	fmt.Fprintf(&sb, "Run: %s\n", r.ID)
	fmt.Fprintf(&sb, "Duration: %s\n", FormatDuration(r.Duration))
	fmt.Fprintf(&sb, "Trials per size: %d\n", r.SeriesLength)

	for _, s := range r.Series {
		fmt.Fprintf(&sb, "Size %s: avg %s, best %s, worst %s",
			FormatCount(float64(s.Size)),
			FormatSeconds(s.AvgTime),
			FormatSeconds(s.BestTime),
			FormatSeconds(s.WorstTime))
		switch r.Engine {
		case EngineSelection:
			fmt.Fprintf(&sb, ", passes %s, swaps %s", FormatCount(s.AvgPasses), FormatCount(s.AvgSwaps))
		case EngineMerge:
			fmt.Fprintf(&sb, ", memory %s, depth %s, calls %s",
				FormatCount(s.AvgPeakMemory), FormatCount(s.AvgMaxDepth), FormatCount(s.AvgCalls))
		}
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

// ComparisonSummary returns a text summary of an engine comparison.
func (c *Comparison) ComparisonSummary() string {
	var sb strings.Builder
	sb.WriteString("Benchmark Comparison Summary\n")
	fmt.Fprintf(&sb, "Engines tested: %d\n", len(c.Engines))
	fmt.Fprintf(&sb, "Total duration: %s\n", FormatDuration(c.Duration))

	seen := make(map[int]bool)
	for _, engine := range c.Engines {
		result := c.Results[engine]
		if result == nil {
			continue
		}
		for _, size := range result.Sizes() {
			if seen[size] {
				continue
			}
			seen[size] = true
			if fastest, s := c.FastestAt(size); s != nil {
				fmt.Fprintf(&sb, "Fastest at %s: %s (%s)\n", FormatCount(float64(size)), fastest, FormatSeconds(s.AvgTime))
			}
		}
	}

	for _, engine := range c.Engines {
		if msg, ok := c.Errors[engine]; ok {
			fmt.Fprintf(&sb, "Failed: %s (%s)\n", engine, msg)
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}
