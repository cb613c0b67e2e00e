// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package benchmark

import "math"

// =============================================================================
// COMPLEXITY FIT
// =============================================================================

// GrowthFunc is an asymptotic growth function f(n).
type GrowthFunc func(n float64) float64

// Quadratic is f(n) = n².
func Quadratic(n float64) float64 { return n * n }

// Linearithmic is f(n) = n·log2(n).
func Linearithmic(n float64) float64 {
	if n <= 1 {
		return 0
	}
	return n * math.Log2(n)
}

// Growth returns the expected growth of the engine's running time.
func (e Engine) Growth() (GrowthFunc, string) {
	if e == EngineMerge {
		return Linearithmic, "O(n log n)"
	}
	return Quadratic, "O(n²)"
}

// FitConstant returns the smallest c such that c·f(n) bounds the worst
// time, in seconds, of every series. Series where f(n) is zero are skipped.
func FitConstant(series []Series, f GrowthFunc) float64 {
	var c float64
	for _, s := range series {
		fn := f(float64(s.Size))
		if fn <= 0 {
			continue
		}
		c = max(c, s.WorstTime.Seconds()/fn)
	}
	return c
}
