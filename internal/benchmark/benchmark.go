// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package benchmark provides the sort benchmarking harness for sortbench.
package benchmark

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jeranaias/sortbench/internal/sorting"
)

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultSizes are the array sizes of a standard run.
var DefaultSizes = []int{1000, 2000, 4000, 8000, 16000, 32000, 64000, 128000}

// DefaultSeriesLength is the number of trials per array size.
const DefaultSeriesLength = 20

// =============================================================================
// BENCHMARK RUNNER
// =============================================================================

// Runner executes benchmarks on sort engines.
// Note: Runner is not thread-safe and should not be used concurrently
// from multiple goroutines.
type Runner struct {
	gen        Generator
	verify     bool
	onProgress func(Progress)
	now        func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithVerify checks that every trial left its array sorted.
func WithVerify(verify bool) Option {
	return func(r *Runner) { r.verify = verify }
}

// WithProgress registers a callback invoked after every trial.
// The callback runs on the benchmark goroutine.
func WithProgress(fn func(Progress)) Option {
	return func(r *Runner) { r.onProgress = fn }
}

// WithClock replaces the clock used to time trials.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner creates a new benchmark runner.
func NewRunner(gen Generator, opts ...Option) *Runner {
	r := &Runner{gen: gen, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run benchmarks one engine over every size, seriesLen trials per size.
//
// If ctx is cancelled the run stops before the next trial and the partial
// result (completed series only) is returned together with ctx.Err().
func (r *Runner) Run(ctx context.Context, engine Engine, sizes []int, seriesLen int) (*Result, error) {
	if err := validateRun(engine, sizes, seriesLen); err != nil {
		return nil, err
	}

	result := &Result{
		ID:           uuid.New().String(),
		Engine:       engine,
		SeriesLength: seriesLen,
		StartTime:    time.Now(),
		Series:       make([]Series, 0, len(sizes)),
		Trials:       make([]Trial, 0, len(sizes)*seriesLen),
	}
	if seeded, ok := r.gen.(interface{ Seed() uint64 }); ok {
		result.Seed = seeded.Seed()
	}

	total := len(sizes) * seriesLen
	completed := 0

	for _, size := range sizes {
		trials := make([]Trial, 0, seriesLen)

		for i := 0; i < seriesLen; i++ {
			// Check for context cancellation before starting
			if err := ctx.Err(); err != nil {
				r.finish(result)
				return result, err
			}

			trial, err := r.runTrial(engine, size, i)
			if err != nil {
				r.finish(result)
				return result, err
			}
			trials = append(trials, trial)
			result.Trials = append(result.Trials, trial)
			completed++

			if r.onProgress != nil {
				r.onProgress(Progress{
					Engine:       engine,
					Size:         size,
					Trial:        i + 1,
					SeriesLength: seriesLen,
					Completed:    completed,
					Total:        total,
					Last:         trial,
				})
			}
		}

		series := computeSeries(size, trials)
		result.Series = append(result.Series, series)
		log.Printf("SERIES_COMPLETE | engine=%s size=%d trials=%d avg=%s best=%s worst=%s",
			engine, size, series.Trials, series.AvgTime, series.BestTime, series.WorstTime)
	}

	r.finish(result)
	return result, nil
}

// RunComparison runs every engine over the same sizes. Generators that can
// be rewound are reset before each engine so every engine sorts the same
// input arrays.
// Returns a comparison even if individual engines fail. Returns an error only
// if all engines fail or the context is cancelled.
func (r *Runner) RunComparison(ctx context.Context, engines []Engine, sizes []int, seriesLen int) (*Comparison, error) {
	if len(engines) == 0 {
		return nil, fmt.Errorf("%w: no engines given", ErrUnknownEngine)
	}

	comparison := &Comparison{
		Engines:   slices.Clone(engines),
		Results:   make(map[Engine]*Result),
		Errors:    make(map[Engine]string),
		StartTime: time.Now(),
	}

	successCount := 0
	var errs []error
	for _, engine := range engines {
		if resetter, ok := r.gen.(interface{ Reset() }); ok {
			resetter.Reset()
		}
		result, err := r.Run(ctx, engine, sizes, seriesLen)
		if result != nil {
			comparison.Results[engine] = result
		}
		if err != nil {
			comparison.Errors[engine] = err.Error()
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		successCount++
	}

	comparison.EndTime = time.Now()
	comparison.Duration = comparison.EndTime.Sub(comparison.StartTime)

	if err := ctx.Err(); err != nil {
		return comparison, err
	}
	if successCount == 0 {
		return comparison, fmt.Errorf("all engines failed to run: %w", errors.Join(errs...))
	}

	return comparison, nil
}

// runTrial generates one array, sorts it and measures the sort.
func (r *Runner) runTrial(engine Engine, size, index int) (Trial, error) {
	data := r.gen.Generate(size)
	trial := Trial{Size: size, Index: index}

	start := r.now()
	switch engine {
	case EngineSelection:
		stats := sorting.Selection(data)
		trial.Duration = r.now().Sub(start)
		trial.Passes = stats.Passes
		trial.Swaps = stats.Swaps
	case EngineMerge:
		stats := sorting.Merge(data)
		trial.Duration = r.now().Sub(start)
		trial.PeakMemory = stats.PeakMemory
		trial.MaxDepth = stats.MaxDepth
		trial.Calls = stats.Calls
	default:
		return trial, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}

	if r.verify && !slices.IsSorted(data) {
		return trial, fmt.Errorf("%w: engine=%s size=%d trial=%d", ErrNotSorted, engine, size, index)
	}

	return trial, nil
}

func (r *Runner) finish(result *Result) {
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
}

func validateRun(engine Engine, sizes []int, seriesLen int) error {
	if !engine.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
	if len(sizes) == 0 {
		return fmt.Errorf("%w: no sizes given", ErrInvalidSize)
	}
	for _, size := range sizes {
		if size < 0 {
			return fmt.Errorf("%w: %d", ErrInvalidSize, size)
		}
	}
	if seriesLen < 1 {
		return errors.New("series length must be at least 1")
	}
	return nil
}

// =============================================================================
// RESULT COMPUTATION
// =============================================================================

// computeSeries aggregates the trials of one array size.
func computeSeries(size int, trials []Trial) Series {
	s := Series{Size: size, Trials: len(trials)}
	if len(trials) == 0 {
		return s
	}

	var totalTime time.Duration
	var passes, swaps, memory, depth, calls float64

	s.BestTime = trials[0].Duration
	s.WorstTime = trials[0].Duration
	for _, t := range trials {
		totalTime += t.Duration
		s.BestTime = min(s.BestTime, t.Duration)
		s.WorstTime = max(s.WorstTime, t.Duration)

		passes += float64(t.Passes)
		swaps += float64(t.Swaps)
		memory += float64(t.PeakMemory)
		depth += float64(t.MaxDepth)
		calls += float64(t.Calls)
	}

	n := float64(len(trials))
	s.AvgTime = totalTime / time.Duration(len(trials))
	s.AvgPasses = passes / n
	s.AvgSwaps = swaps / n
	s.AvgPeakMemory = memory / n
	s.AvgMaxDepth = depth / n
	s.AvgCalls = calls / n

	return s
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

var numberPrinter = message.NewPrinter(language.English)

// FormatSeconds formats a duration as fractional seconds.
func FormatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.6fs", d.Seconds())
}

// FormatCount formats a count with thousands separators, keeping one decimal
// for non-integral averages.
func FormatCount(v float64) string {
	if v == float64(int64(v)) {
		return numberPrinter.Sprintf("%d", int64(v))
	}
	return numberPrinter.Sprintf("%.1f", v)
}

// FormatDuration formats duration for display.
func FormatDuration(d time.Duration) string {
	if d == 0 {
		return "N/A"
	}
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
