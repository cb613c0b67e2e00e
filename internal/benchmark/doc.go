// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package benchmark provides the sort benchmarking harness for sortbench.
//
// This package runs the instrumented sort engines over freshly generated
// random arrays, times every trial and aggregates the trials of each array
// size into a series with mean/best/worst statistics.
//
// # Key Types
//
//   - Runner: Benchmark runner with a generator and options
//   - Generator: Source of random input arrays
//   - Trial: One sort of one freshly generated array
//   - Series: Aggregated trials for a single array size
//   - Result: All series of one engine run
//   - Comparison: Results of several engines over the same sizes
//
// # Usage
//
// Run a benchmark:
//
//	runner := benchmark.NewRunner(benchmark.NewRandomGenerator(0))
//	result, err := runner.Run(ctx, benchmark.EngineMerge, []int{1000, 2000}, 20)
//
// Compare engines:
//
//	cmp, err := runner.RunComparison(ctx, benchmark.Engines(), sizes, 20)
//	engine, series := cmp.FastestAt(1000)
//
// # Trials
//
// Trials run one after another on the calling goroutine and are never
// interrupted. A cancelled context is observed between trials only.
package benchmark
