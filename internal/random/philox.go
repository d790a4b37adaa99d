// Package random implements the counter-based Philox4x32-10 generator used by
// stochastic kernels.
//
// A Philox stream is a small value: a key derived from the seed and a 128-bit counter.
// Each block of output is a pure function of (key, counter), so any task can jump to
// logical block n with Skip(n) and obtain exactly the values any other task would see
// there. Streams are never shared between tasks; each task builds its own from the seed.
package random

import "math"

// BlockSize is the number of 32-bit values produced by one generator step.
const BlockSize = 4

// DefaultSeed is the seed used when a caller does not choose one.
const DefaultSeed = 195948557

// Philox round and key schedule constants.
const (
	philoxM0 uint32 = 0xD2511F53
	philoxM1 uint32 = 0xCD9E8D57
	philoxW0 uint32 = 0x9E3779B9
	philoxW1 uint32 = 0xBB67AE85

	philoxRounds = 10
)

// Seed whitening constants for the unused key and counter words.
const (
	keyMix      uint32 = 0xBADF00D
	counterMix2 uint32 = 0xBADFACE
	counterMix3 uint32 = 0xBADBEEF
)

// Block is one step of generator output.
type Block [BlockSize]uint32

// Philox is a Philox4x32-10 stream positioned at a logical block.
// The zero value is a valid stream for key 0 at block 0.
type Philox struct {
	key     [2]uint32
	counter [4]uint32
}

// New returns the stream for seed positioned at logical block 0.
func New(seed int) Philox {
	s := uint32(seed) //nolint:gosec // G115: seeds wrap modulo 2^32.
	return Philox{
		key:     [2]uint32{s, s ^ keyMix},
		counter: [4]uint32{0, 0, s ^ counterMix2, s ^ counterMix3},
	}
}

// Skip returns the stream advanced by n blocks. The position is a 64-bit counter,
// so skipping costs the same for any n.
func (p Philox) Skip(n uint64) Philox {
	lo := uint32(n)       //nolint:gosec // G115: low word.
	hi := uint32(n >> 32) //nolint:gosec // G115: high word.

	p.counter[0] += lo
	if p.counter[0] < lo {
		hi++
	}
	p.counter[1] += hi
	return p
}

// Next returns the block at the current position and the stream advanced by one block.
func (p Philox) Next() (Block, Philox) {
	return philox4x32(p.counter, p.key), p.Skip(1)
}

// Words returns the key and counter words of the stream, for kernels that rebuild
// the generator on a device.
func (p Philox) Words() (key [2]uint32, counter [4]uint32) {
	return p.key, p.counter
}

// At returns the block at logical position block of the stream for seed.
func At(seed int, block uint64) Block {
	b, _ := New(seed).Skip(block).Next()
	return b
}

// Threshold converts a keep probability into the largest generator value that keeps an element.
// The product is taken in float32, so Threshold(0.5) is 1<<31.
// Rates at or above 1 keep everything; rates at or below 0 keep only values equal to 0.
func Threshold(forwardRate float32) uint32 {
	switch {
	case forwardRate >= 1:
		return math.MaxUint32
	case !(forwardRate > 0):
		return 0
	}
	// Below 1 the float32 product is at most 2^32 - 256.
	return uint32(forwardRate * float32(math.MaxUint32))
}

// Keep reports whether a generator value keeps its element under threshold.
func Keep(value, threshold uint32) bool {
	return value <= threshold
}

func mulhilo(a, b uint32) (hi, lo uint32) {
	product := uint64(a) * uint64(b)
	return uint32(product >> 32), uint32(product) //nolint:gosec // G115: split of a 64-bit product.
}

func philoxRound(ctr [4]uint32, key [2]uint32) [4]uint32 {
	hi0, lo0 := mulhilo(philoxM0, ctr[0])
	hi1, lo1 := mulhilo(philoxM1, ctr[2])
	return [4]uint32{hi1 ^ ctr[1] ^ key[0], lo1, hi0 ^ ctr[3] ^ key[1], lo0}
}

// philox4x32 is the Philox4x32 bijection with 10 rounds.
func philox4x32(ctr [4]uint32, key [2]uint32) Block {
	ctr = philoxRound(ctr, key)
	for r := 1; r < philoxRounds; r++ {
		key[0] += philoxW0
		key[1] += philoxW1
		ctr = philoxRound(ctr, key)
	}
	return Block(ctr)
}
