package bbhash

import (
	"github.com/tamirms/boomap/internal/bits"
)

// level locates one level inside the concatenated bit array.
type level struct {
	offset uint64 // first bit of the level
	size   uint64 // bits in the level, a multiple of 64
}

// Table is a built minimal perfect hash function. It is immutable and safe
// for concurrent use.
type Table struct {
	n        uint64
	placed   uint64 // keys placed in levels; fallback indices start here
	levels   []level
	ranked   *bits.Ranked
	fallback map[uint64]uint64
}

// newTable concatenates the finalized levels and assigns fallback indices
// in the order of fallback, which must be sorted.
func newTable(n uint64, vectors []*bits.Vector, fallback []uint64) *Table {
	var total uint64
	levels := make([]level, len(vectors))
	for i, v := range vectors {
		levels[i] = level{offset: total, size: v.Len()}
		total += v.Len()
	}
	words := make([]uint64, 0, bits.WordsFor(total))
	var placed uint64
	for _, v := range vectors {
		words = append(words, v.Words()...)
		placed += v.Count()
	}

	t := &Table{
		n:      n,
		placed: placed,
		levels: levels,
		ranked: bits.NewRanked(words),
	}
	if len(fallback) > 0 {
		t.fallback = make(map[uint64]uint64, len(fallback))
		for i, h := range fallback {
			t.fallback[h] = placed + uint64(i)
		}
	}
	return t
}

// Lookup returns the index in [0, Len()) of the key with hash h.
//
// For a hash that was not part of the build set Lookup still returns some
// index in range (0 when the table is empty). Callers must compare the key
// stored at that index to detect absence.
func (t *Table) Lookup(h uint64) uint64 {
	for i, lv := range t.levels {
		pos := lv.offset + levelPos(h, i, lv.size)
		if t.ranked.Get(pos) {
			return t.ranked.Rank(pos)
		}
	}
	if idx, ok := t.fallback[h]; ok {
		return idx
	}
	return bits.FastRange64(h, t.n)
}

// Len returns the number of keys the table was built over.
func (t *Table) Len() uint64 { return t.n }

// NumLevels returns the number of bit array levels.
func (t *Table) NumLevels() int { return len(t.levels) }

// FallbackLen returns the number of keys held in the fallback table.
func (t *Table) FallbackLen() int { return len(t.fallback) }

// SizeBits returns the approximate memory footprint of the table, counting
// the level bits, rank samples and 128 bits per fallback entry.
func (t *Table) SizeBits() uint64 {
	return t.ranked.SizeBits() + uint64(len(t.fallback))*128
}

// BitsPerKey returns SizeBits divided by Len, or 0 for an empty table.
func (t *Table) BitsPerKey() float64 {
	if t.n == 0 {
		return 0
	}
	return float64(t.SizeBits()) / float64(t.n)
}
