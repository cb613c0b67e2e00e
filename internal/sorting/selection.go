// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sorting

import "golang.org/x/exp/constraints"

// SelectionStats holds the counters produced by one selection sort.
type SelectionStats struct {
	Passes int `json:"passes"` // outer-loop iterations
	Swaps  int `json:"swaps"`  // exchanges, including self-exchanges
}

// Selection sorts a ascending in place.
func Selection[T constraints.Ordered](a []T) SelectionStats {
	return SelectionFunc(a, func(x, y T) bool { return x < y })
}

// SelectionFunc sorts a in place using less. The sort is not stable.
//
// Every position 0..n-2 gets one pass and one swap, so both counters equal
// max(0, n-1). The minimum scan covers the whole unsorted suffix and keeps
// the first occurrence of the minimum.
func SelectionFunc[T any](a []T, less func(x, y T) bool) SelectionStats {
	var stats SelectionStats
	n := len(a)

	for i := 0; i < n-1; i++ {
		stats.Passes++

		minIdx := i
		for j := i + 1; j < n; j++ {
			if less(a[j], a[minIdx]) {
				minIdx = j
			}
		}

		a[i], a[minIdx] = a[minIdx], a[i]
		stats.Swaps++
	}

	return stats
}
