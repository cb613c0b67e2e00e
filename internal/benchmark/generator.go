// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package benchmark

import (
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"
)

// =============================================================================
// INPUT GENERATION
// =============================================================================

// Generator supplies benchmark input arrays.
type Generator interface {
	// Generate returns n values uniformly distributed in [-1, 1).
	Generate(n int) []float64
}

// seedSequence separates the seeds of generators created within the same
// clock tick.
var seedSequence atomic.Uint64

// RandomGenerator is a PCG-backed Generator.
// Note: RandomGenerator is not safe for concurrent use.
type RandomGenerator struct {
	rng  *rand.Rand
	seed uint64
}

// NewRandomGenerator creates a generator. A zero seed picks a fresh seed
// from the clock; any other seed makes the generated sequence reproducible.
func NewRandomGenerator(seed uint64) *RandomGenerator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano()) ^ seedSequence.Add(0x9e3779b97f4a7c15)
	}
	g := &RandomGenerator{seed: seed}
	g.Reset()
	return g
}

// Seed returns the seed the generator was created with.
func (g *RandomGenerator) Seed() uint64 {
	return g.seed
}

// Reset rewinds the generator to the start of its sequence.
func (g *RandomGenerator) Reset() {
	g.rng = rand.New(rand.NewPCG(g.seed, g.seed^0xda3e39cb94b95bdb))
}

// Generate returns n values in [-1, 1). It panics if n is negative.
func (g *RandomGenerator) Generate(n int) []float64 {
	if n < 0 {
		panic(fmt.Sprintf("benchmark: negative array size %d", n))
	}
	data := make([]float64, n)
	for i := range data {
		data[i] = g.rng.Float64()*2 - 1
	}
	return data
}
