// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package random exposes the counter-based Philox 4x32-10 generator that drives
// every dropout mask.
//
// The stream is a pure function of the seed: block n can be computed directly
// with At, which is what lets parallel backends reproduce the sequential mask.
package random

import "github.com/born-ml/mathengine/internal/random"

// DefaultSeed is the seed used when a caller does not choose one.
const DefaultSeed = random.DefaultSeed

// Philox is a position in a seeded Philox stream.
type Philox = random.Philox

// Block is one generator output of four 32-bit values.
type Block = random.Block

// New returns the stream for seed, positioned at block 0.
func New(seed int) Philox {
	return random.New(seed)
}

// At returns block n of the stream for seed.
func At(seed int, block uint64) Block {
	return random.At(seed, block)
}

// Threshold converts a keep probability into the largest kept generator value.
func Threshold(forwardRate float32) uint32 {
	return random.Threshold(forwardRate)
}
