// Package bits provides low-level bit manipulation primitives.
package bits

import (
	"math/bits"
	"sync/atomic"
)

// FastRange64 maps a 64-bit hash uniformly to [0, n) by taking the high
// word of hash*n, avoiding modulo bias.
func FastRange64(hash uint64, n uint64) uint64 {
	if n == 0 {
		return 0
	}
	hi, _ := bits.Mul64(hash, n)
	return hi
}

// WordsFor returns the number of 64-bit words needed to hold n bits.
func WordsFor(n uint64) uint64 {
	return (n + 63) / 64
}

// Vector is a fixed-size bit vector backed by 64-bit words.
// The zero value is an empty vector.
type Vector struct {
	words []uint64
	n     uint64
}

// NewVector returns a vector of n bits, all clear.
func NewVector(n uint64) *Vector {
	return &Vector{words: make([]uint64, WordsFor(n)), n: n}
}

// Len returns the number of bits in the vector.
func (v *Vector) Len() uint64 { return v.n }

// Words exposes the backing words. Bits beyond Len are always zero.
func (v *Vector) Words() []uint64 { return v.words }

// Get reports whether bit i is set.
func (v *Vector) Get(i uint64) bool {
	return v.words[i/64]&(1<<(i%64)) != 0
}

// Set sets bit i.
func (v *Vector) Set(i uint64) {
	v.words[i/64] |= 1 << (i % 64)
}

// TestAndSet sets bit i and reports whether it was already set.
func (v *Vector) TestAndSet(i uint64) bool {
	w := &v.words[i/64]
	mask := uint64(1) << (i % 64)
	old := *w
	*w = old | mask
	return old&mask != 0
}

// AtomicTestAndSet is TestAndSet for concurrent writers.
// Readers must not run concurrently with writers.
func (v *Vector) AtomicTestAndSet(i uint64) bool {
	mask := uint64(1) << (i % 64)
	old := atomic.OrUint64(&v.words[i/64], mask)
	return old&mask != 0
}

// AtomicSet is Set for concurrent writers.
func (v *Vector) AtomicSet(i uint64) {
	atomic.OrUint64(&v.words[i/64], 1<<(i%64))
}

// AndNot clears every bit of v that is set in o. Both vectors must have the same length.
func (v *Vector) AndNot(o *Vector) {
	for i := range v.words {
		v.words[i] &^= o.words[i]
	}
}

// Count returns the number of set bits.
func (v *Vector) Count() uint64 {
	var c uint64
	for _, w := range v.words {
		c += uint64(bits.OnesCount64(w))
	}
	return c
}

// rankSampleWords is the number of words covered by one rank sample (512 bits).
const rankSampleWords = 8

// Ranked is an immutable bit array with constant-time rank queries.
// One cumulative popcount is kept per 512 bits.
type Ranked struct {
	words   []uint64
	samples []uint64
}

// NewRanked builds rank samples over words. The slice is retained, not copied.
func NewRanked(words []uint64) *Ranked {
	samples := make([]uint64, 0, len(words)/rankSampleWords+1)
	var total uint64
	for i, w := range words {
		if i%rankSampleWords == 0 {
			samples = append(samples, total)
		}
		total += uint64(bits.OnesCount64(w))
	}
	return &Ranked{words: words, samples: samples}
}

// Get reports whether bit i is set.
func (r *Ranked) Get(i uint64) bool {
	return r.words[i/64]&(1<<(i%64)) != 0
}

// Rank returns the number of set bits strictly before position i.
func (r *Ranked) Rank(i uint64) uint64 {
	wi := i / 64
	sample := wi / rankSampleWords
	rank := r.samples[sample]
	for j := sample * rankSampleWords; j < wi; j++ {
		rank += uint64(bits.OnesCount64(r.words[j]))
	}
	return rank + uint64(bits.OnesCount64(r.words[wi]&(1<<(i%64)-1)))
}

// SizeBits returns the memory footprint of the bit array plus rank samples.
func (r *Ranked) SizeBits() uint64 {
	return uint64(len(r.words)+len(r.samples)) * 64
}
