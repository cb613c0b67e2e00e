// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// run_cmd.go - The benchmark run command.

package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jeranaias/sortbench/internal/benchmark"
	"github.com/jeranaias/sortbench/internal/config"
	"github.com/jeranaias/sortbench/internal/export"
	"github.com/jeranaias/sortbench/internal/storage"
	"github.com/jeranaias/sortbench/internal/ui/components"
	"github.com/jeranaias/sortbench/internal/util"
)

var (
	runValueFlags = []string{"engine", "sizes", "series", "seed", "out", "format"}
	runBoolFlags  = []string{"verify", "no-verify", "no-history", "no-progress"}
)

// runOptions are the run parameters after config, environment and flags.
type runOptions struct {
	engines  []benchmark.Engine
	sizes    []int
	series   int
	seed     uint64
	verify   bool
	format   string
	export   *export.Options
	history  bool
	progress bool
	cfg      *config.Config
}

// HandleRun handles the "run" command.
func (a *App) HandleRun(ctx context.Context) error {
	parser := NewArgParser(a.Args.Raw, runBoolFlags...)
	if err := checkFlags("run", parser, append(runValueFlags, runBoolFlags...)...); err != nil {
		return err
	}
	if parser.PositionalCount() > 0 {
		return NewValidationErrorWithExample("argument", parser.Positional(0),
			"run takes no positional arguments", "sortbench run --sizes 1000,2000")
	}

	opts, err := a.resolveRunOptions(parser)
	if err != nil {
		return err
	}

	exporter, err := export.NewExporter(opts.format, opts.export)
	if err != nil {
		return ErrUnsupportedFormat(opts.format, export.Formats())
	}

	gen := benchmark.NewRandomGenerator(opts.seed)
	log.Printf("RUN_START | engines=%v sizes=%v series=%d seed=%d verify=%t",
		opts.engines, opts.sizes, opts.series, gen.Seed(), opts.verify)

	var comparison *benchmark.Comparison
	run := func(ctx context.Context, report func(benchmark.Progress)) error {
		runner := benchmark.NewRunner(gen,
			benchmark.WithVerify(opts.verify),
			benchmark.WithProgress(report))
		var err error
		comparison, err = runner.RunComparison(ctx, opts.engines, opts.sizes, opts.series)
		return err
	}

	var runErr error
	if a.Interactive && opts.progress {
		runErr = components.RunWithProgress(ctx, a.Stderr, "Benchmarking", run)
	} else {
		runErr = run(ctx, a.plainProgress())
	}
	if comparison == nil {
		return runErr
	}

	cancelled := errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded)
	log.Printf("RUN_END | duration=%s engines=%d failed=%d cancelled=%t",
		comparison.Duration, len(comparison.Results), len(comparison.Errors), cancelled)

	completed := completedResults(comparison)

	files, err := writeReports(completed, exporter, opts.export)
	if err != nil {
		return NewCommandError("run", "export", "could not write report", err)
	}

	saved := false
	if opts.history && len(completed) > 0 {
		if err := a.saveHistory(ctx, opts.cfg, completed); err != nil {
			fmt.Fprintln(a.Stderr, WarningStyle.Render(fmt.Sprintf("Warning: run not recorded in history: %v", err)))
		} else {
			saved = true
		}
	}

	if a.Args.JSON && !cancelled {
		data := RunData{
			Results: completed,
			Files:   files,
			Saved:   saved,
		}
		if len(comparison.Errors) > 0 {
			data.Errors = make(map[string]string, len(comparison.Errors))
			for engine, msg := range comparison.Errors {
				data.Errors[string(engine)] = msg
			}
		}
		if err := NewJSONResponse("run", data).Print(a.Stdout); err != nil {
			return err
		}
	} else {
		a.printRunSummary(comparison, completed, files, saved, cancelled)
	}

	if runErr != nil {
		return runErr
	}
	if n := len(comparison.Errors); n > 0 {
		return NewCommandError("run", "benchmark",
			fmt.Sprintf("%d of %d engines failed", n, len(opts.engines)), nil)
	}
	return nil
}

// resolveRunOptions layers the run flags over the loaded configuration.
func (a *App) resolveRunOptions(parser *ArgParser) (*runOptions, error) {
	cfg := a.Config.Clone()

	if parser.HasFlag("engine") {
		value := parser.Flag("engine")
		names := strings.Split(value, ",")
		for _, name := range names {
			if strings.EqualFold(strings.TrimSpace(name), "all") {
				continue
			}
			if _, err := benchmark.ParseEngine(name); err != nil {
				return nil, NewValidationErrorWithExample("engine", value,
					"must be selection, merge or all", "--engine merge")
			}
		}
		cfg.Benchmark.Engines = names
	}

	if parser.HasFlag("sizes") {
		value := parser.Flag("sizes")
		sizes, err := config.ParseSizes(value)
		if err != nil {
			return nil, NewValidationErrorWithExample("sizes", value, err.Error(), "--sizes 1000,2000,4000")
		}
		cfg.Benchmark.Sizes = sizes
	}

	if parser.HasFlag("series") {
		value := parser.Flag("series")
		n, err := ParseIntWithValidation(value, "series")
		if err != nil {
			return nil, NewValidationErrorWithExample("series", value, err.Error(), "--series 20")
		}
		cfg.Benchmark.SeriesLength = n
	}

	if parser.HasFlag("seed") {
		value := parser.Flag("seed")
		seed, err := config.ParseSeed(value)
		if err != nil {
			return nil, NewValidationErrorWithExample("seed", value,
				"must be an integer between 0 and 18446744073709551615", "--seed 42")
		}
		cfg.Benchmark.Seed = seed
	}

	if parser.BoolFlag("verify") {
		cfg.Benchmark.Verify = true
	}
	if parser.BoolFlag("no-verify") {
		cfg.Benchmark.Verify = false
	}

	if parser.HasFlag("out") {
		dir := parser.Flag("out")
		if dir == "" {
			return nil, ErrMissingArgument("out", "--out reports")
		}
		cfg.Output.Dir = dir
	}

	if parser.HasFlag("format") {
		format := strings.ToLower(parser.Flag("format"))
		if format == "markdown" {
			format = "md"
		}
		if !isOutputFormat(format) {
			return nil, ErrUnsupportedFormat(format, export.Formats())
		}
		cfg.Output.Format = format
	}

	if parser.BoolFlag("no-history") {
		cfg.Storage.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run configuration: %w", err)
	}

	engines, err := cfg.ResolvedEngines()
	if err != nil {
		return nil, err
	}

	exportOpts := export.DefaultOptions()
	exportOpts.OutputDir = cfg.Output.Dir
	exportOpts.SelectionFile = cfg.Output.SelectionFile
	exportOpts.MergeFile = cfg.Output.MergeFile
	exportOpts.IncludeTrials = cfg.Output.IncludeTrials

	return &runOptions{
		engines:  engines,
		sizes:    cfg.Benchmark.Sizes,
		series:   cfg.Benchmark.SeriesLength,
		seed:     uint64(cfg.Benchmark.Seed),
		verify:   cfg.Benchmark.Verify,
		format:   cfg.Output.Format,
		export:   exportOpts,
		history:  cfg.Storage.Enabled,
		progress: cfg.UI.Progress && !parser.BoolFlag("no-progress"),
		cfg:      cfg,
	}, nil
}

// plainProgress reports each finished series on stderr when the
// interactive view is off.
func (a *App) plainProgress() func(benchmark.Progress) {
	if a.Args.Quiet || a.Args.JSON {
		return nil
	}
	return func(p benchmark.Progress) {
		if p.Trial < p.SeriesLength {
			return
		}
		fmt.Fprintf(a.Stderr, "  %-9s  size %9s  %s\n",
			p.Engine,
			benchmark.FormatCount(float64(p.Size)),
			DimStyle.Render(fmt.Sprintf("series %d/%d", p.Completed/p.SeriesLength, p.Total/p.SeriesLength)))
	}
}

// saveHistory records the completed results in the history database.
func (a *App) saveHistory(ctx context.Context, cfg *config.Config, results []*benchmark.Result) error {
	path, err := cfg.DatabasePath()
	if err != nil {
		return err
	}
	store, err := storage.Open(path)
	if err != nil {
		return fmt.Errorf("open history database: %w", err)
	}
	defer store.Close()

	for _, r := range results {
		if err := store.SaveResult(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) printRunSummary(comparison *benchmark.Comparison, completed []*benchmark.Result, files []string, saved, cancelled bool) {
	if a.Args.Quiet || a.Args.JSON {
		return
	}

	view := components.NewResultView(GetTerminalWidth())
	fmt.Fprintln(a.Stdout)
	fmt.Fprintln(a.Stdout, view.RenderComparison(comparison))
	fmt.Fprintln(a.Stdout)

	for _, path := range files {
		fmt.Fprintf(a.Stdout, "%s Report written to %s\n", RenderStatus("ok"), path)
	}
	if saved {
		ids := make([]string, len(completed))
		for i, r := range completed {
			ids[i] = util.ShortID(r.ID, 8)
		}
		fmt.Fprintf(a.Stdout, "%s Recorded in history as %s\n", RenderStatus("saved"), strings.Join(ids, ", "))
	}
	if cancelled {
		fmt.Fprintf(a.Stdout, "%s Run cancelled; unfinished engines were not exported or recorded\n",
			RenderStatus("cancelled"))
	}
}

// completedResults returns the results of engines that finished without
// error, in engine order.
func completedResults(comparison *benchmark.Comparison) []*benchmark.Result {
	results := make([]*benchmark.Result, 0, len(comparison.Engines))
	for _, engine := range comparison.Engines {
		if _, failed := comparison.Errors[engine]; failed {
			continue
		}
		if r := comparison.Results[engine]; r != nil {
			results = append(results, r)
		}
	}
	return results
}

// writeReports exports every result into opts.OutputDir.
func writeReports(results []*benchmark.Result, exporter export.Exporter, opts *export.Options) ([]string, error) {
	files := make([]string, 0, len(results))
	if len(results) == 0 {
		return files, nil
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	for _, r := range results {
		path, err := export.ExportToFile(r, exporter, opts)
		if err != nil {
			return nil, err
		}
		log.Printf("REPORT_WRITTEN | engine=%s path=%s", r.Engine, path)
		files = append(files, path)
	}
	return files, nil
}

func isOutputFormat(format string) bool {
	for _, f := range export.Formats() {
		if f == format {
			return true
		}
	}
	return false
}
