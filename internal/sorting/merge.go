// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sorting

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// MergeStats holds the metrics produced by one merge sort.
type MergeStats struct {
	// PeakMemory is the largest number of elements held in temporary
	// buffers at any instant.
	PeakMemory int `json:"peak_memory"`
	// MaxDepth is the deepest recursion level reached; the root is 0.
	MaxDepth int `json:"max_depth"`
	// Calls counts every recursive invocation, leaves included.
	Calls int `json:"calls"`
}

// Merge sorts a ascending in place.
func Merge[T constraints.Ordered](a []T) MergeStats {
	return MergeRange(a, 0, len(a))
}

// MergeRange sorts the half-open range a[left:right] ascending in place.
func MergeRange[T constraints.Ordered](a []T, left, right int) MergeStats {
	return MergeRangeFunc(a, left, right, func(x, y T) bool { return x < y })
}

// MergeFunc sorts a in place using less. Equal elements keep their order.
func MergeFunc[T any](a []T, less func(x, y T) bool) MergeStats {
	return MergeRangeFunc(a, 0, len(a), less)
}

// MergeRangeFunc sorts a[left:right] in place using less.
// It panics if the range is reversed or outside a.
func MergeRangeFunc[T any](a []T, left, right int, less func(x, y T) bool) MergeStats {
	if left < 0 || right > len(a) || left > right {
		panic(fmt.Sprintf("sorting: invalid range [%d, %d) for length %d", left, right, len(a)))
	}
	return mergeSort(a, left, right, 0, less)
}

// mergeSort returns the metrics of the subtree rooted at [left, right).
//
// Temporary buffers only live for the duration of a single merge, and the
// children have released theirs before the parent merges, so the subtree
// peak is the largest of the children's peaks and this node's merge size.
func mergeSort[T any](a []T, left, right, depth int, less func(x, y T) bool) MergeStats {
	if right-left <= 1 {
		return MergeStats{MaxDepth: depth, Calls: 1}
	}

	mid := left + (right-left)/2
	l := mergeSort(a, left, mid, depth+1, less)
	r := mergeSort(a, mid, right, depth+1, less)
	used := merge(a, left, mid, right, less)

	return MergeStats{
		PeakMemory: max(l.PeakMemory, r.PeakMemory, used),
		MaxDepth:   max(l.MaxDepth, r.MaxDepth),
		Calls:      1 + l.Calls + r.Calls,
	}
}

// merge combines the sorted runs a[left:mid] and a[mid:right] and returns
// the number of elements it buffered.
func merge[T any](a []T, left, mid, right int, less func(x, y T) bool) int {
	lbuf := make([]T, mid-left)
	rbuf := make([]T, right-mid)
	copy(lbuf, a[left:mid])
	copy(rbuf, a[mid:right])

	i, j, k := 0, 0, left
	for i < len(lbuf) && j < len(rbuf) {
		// Ties go left.
		if !less(rbuf[j], lbuf[i]) {
			a[k] = lbuf[i]
			i++
		} else {
			a[k] = rbuf[j]
			j++
		}
		k++
	}
	k += copy(a[k:], lbuf[i:])
	copy(a[k:], rbuf[j:])

	return len(lbuf) + len(rbuf)
}
