// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sorting provides the instrumented sort engines benchmarked by sortbench.
//
// Both engines sort in place and report operation metrics alongside the
// sorted data. They are generic over ordered element types; the benchmark
// harness uses []float64.
//
// # Engines
//
//   - Selection: O(n²) selection sort counting passes and swaps
//   - Merge: top-down merge sort reporting peak auxiliary memory,
//     maximum recursion depth and total recursive calls
//
// # Usage
//
//	data := []float64{3, 1, 2}
//	stats := sorting.Merge(data)
//	fmt.Println(stats.Calls, stats.MaxDepth, stats.PeakMemory) // 5 2 3
//
// The *Func variants take a less function for element types that are not
// ordered, which is also how merge sort stability is observed.
//
// # Contract
//
// Invalid ranges panic. Neither engine returns errors; an allocation failure
// inside merge sort is fatal to the process.
package sorting
