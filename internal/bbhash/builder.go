// Package bbhash implements a multi-level bit array minimal perfect hash
// function (BBHash) over 64-bit key hashes.
//
// Each level is a bit array sized to gamma bits per key still unplaced.
// Every remaining key marks one bit; keys that land on a bit nobody else
// marked are placed at that level, the rest move on to the next. A key's
// index is the rank of its bit across the concatenated levels.
//
// Early levels re-stream the caller's key sequence instead of copying it.
// Once few keys remain their hashes are buffered, and keys still unplaced
// after the last level are kept in a small fallback table.
package bbhash

import (
	"fmt"
	"iter"
	"math"
	"slices"
	"sync"
	"sync/atomic"

	maperrors "github.com/tamirms/boomap/errors"
	"github.com/tamirms/boomap/internal/bits"
	"golang.org/x/sync/errgroup"
)

// builder holds state across level passes.
type builder[K any] struct {
	n    uint64
	keys iter.Seq[K]
	hash func(K) uint64
	cfg  Config

	// Finalized levels: a bit is set iff exactly one key landed on it.
	levels []*bits.Vector

	batchPool sync.Pool
}

// Build constructs a Table for the n keys yielded by keys.
//
// keys is iterated once per streaming level and must yield the same n keys
// every time. hash must be deterministic; keys with equal hashes cannot be
// told apart and fail with ErrIndistinguishableHashes.
//
// With cfg.Workers > 1 streaming passes fan batches of keys out to that
// many goroutines. The resulting Table does not depend on the worker count.
func Build[K any](n int, keys iter.Seq[K], hash func(K) uint64, cfg Config) (*Table, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative key count %d", maperrors.ErrInvalidConfig, n)
	}

	b := &builder[K]{
		n:    uint64(n),
		keys: keys,
		hash: hash,
		cfg:  cfg,
	}
	b.batchPool.New = func() any {
		return make([]K, 0, batchSize)
	}

	if n == 0 {
		if seen := b.count(); seen != 0 {
			return nil, fmt.Errorf("%w: sequence yielded %d keys, expected 0", maperrors.ErrKeyCountMismatch, seen)
		}
		return newTable(0, nil, nil), nil
	}

	bufferLimit := uint64(float64(n) * bufferFraction)
	remaining := b.n
	var buffered []uint64
	buffering := false

	for level := 0; remaining > 0 && level < cfg.MaxLevels; level++ {
		size := levelSize(remaining, cfg.Gamma)
		marked := bits.NewVector(size)
		collided := bits.NewVector(size)

		var inserted uint64
		if buffering {
			for _, h := range buffered {
				mark(marked, collided, levelPos(h, level, size))
			}
			inserted = uint64(len(buffered))
		} else {
			collect := remaining <= bufferLimit || level == cfg.MaxLevels-1
			seen, ins, col := b.streamPass(level, marked, collided, collect)
			if seen != b.n {
				return nil, fmt.Errorf("%w: sequence yielded %d keys at level %d, expected %d",
					maperrors.ErrKeyCountMismatch, seen, level, n)
			}
			if ins != remaining {
				return nil, fmt.Errorf("%w: key sequence changed between passes", maperrors.ErrKeyCountMismatch)
			}
			inserted = ins
			if collect {
				buffered = col
				buffering = true
			}
		}

		marked.AndNot(collided)
		b.levels = append(b.levels, marked)
		remaining = inserted - marked.Count()

		if buffering {
			buffered = slices.DeleteFunc(buffered, func(h uint64) bool {
				return marked.Get(levelPos(h, level, size))
			})
			if uint64(len(buffered)) != remaining {
				return nil, fmt.Errorf("%w: key sequence changed between passes", maperrors.ErrKeyCountMismatch)
			}
		}
	}

	var fallback []uint64
	if remaining > 0 {
		slices.Sort(buffered)
		for i := 1; i < len(buffered); i++ {
			if buffered[i] == buffered[i-1] {
				return nil, fmt.Errorf("%w: hash %#016x", maperrors.ErrIndistinguishableHashes, buffered[i])
			}
		}
		fallback = buffered
	}

	t := newTable(b.n, b.levels, fallback)
	if t.placed+uint64(len(t.fallback)) != b.n {
		return nil, fmt.Errorf("%w: placed %d keys, expected %d",
			maperrors.ErrKeyCountMismatch, t.placed+uint64(len(t.fallback)), n)
	}
	return t, nil
}

// levelSize returns the bit count of a level holding remaining keys,
// rounded up to whole words.
func levelSize(remaining uint64, gamma float64) uint64 {
	size := uint64(math.Ceil(float64(remaining) * gamma))
	return max(bits.WordsFor(size), 1) * 64
}

func levelPos(h uint64, level int, size uint64) uint64 {
	return bits.FastRange64(levelHash(h, level), size)
}

// mark records one key landing on pos.
func mark(marked, collided *bits.Vector, pos uint64) {
	if marked.TestAndSet(pos) {
		collided.Set(pos)
	}
}

func markAtomic(marked, collided *bits.Vector, pos uint64) {
	if marked.AtomicTestAndSet(pos) {
		collided.AtomicSet(pos)
	}
}

// placed reports whether a key with hash h was placed at a level before upto.
func (b *builder[K]) placed(h uint64, upto int) bool {
	for level := range upto {
		lv := b.levels[level]
		if lv.Get(levelPos(h, level, lv.Len())) {
			return true
		}
	}
	return false
}

func (b *builder[K]) count() uint64 {
	var n uint64
	for range b.keys {
		n++
	}
	return n
}

// streamPass iterates the key sequence and marks every key that was not
// placed at an earlier level. It returns the number of keys seen, the
// number marked and, if collect is set, the hashes of the marked keys.
func (b *builder[K]) streamPass(level int, marked, collided *bits.Vector, collect bool) (seen, inserted uint64, collected []uint64) {
	if b.cfg.workers() == 1 {
		size := marked.Len()
		for k := range b.keys {
			seen++
			h := b.hash(k)
			if b.placed(h, level) {
				continue
			}
			mark(marked, collided, levelPos(h, level, size))
			inserted++
			if collect {
				collected = append(collected, h)
			}
		}
		return seen, inserted, collected
	}
	return b.streamParallel(level, marked, collided, collect)
}

func (b *builder[K]) streamParallel(level int, marked, collided *bits.Vector, collect bool) (uint64, uint64, []uint64) {
	var (
		g         errgroup.Group
		inserted  atomic.Uint64
		mu        sync.Mutex
		collected []uint64
		seen      uint64
	)
	g.SetLimit(b.cfg.workers())
	size := marked.Len()

	process := func(batch []K) {
		var ins uint64
		var local []uint64
		for _, k := range batch {
			h := b.hash(k)
			if b.placed(h, level) {
				continue
			}
			markAtomic(marked, collided, levelPos(h, level, size))
			ins++
			if collect {
				local = append(local, h)
			}
		}
		inserted.Add(ins)
		if collect && len(local) > 0 {
			mu.Lock()
			collected = append(collected, local...)
			mu.Unlock()
		}
		b.batchPool.Put(batch[:0])
	}

	batch := b.batchPool.Get().([]K)
	for k := range b.keys {
		seen++
		batch = append(batch, k)
		if len(batch) == batchSize {
			full := batch
			g.Go(func() error {
				process(full)
				return nil
			})
			batch = b.batchPool.Get().([]K)
		}
	}
	if len(batch) > 0 {
		g.Go(func() error {
			process(batch)
			return nil
		})
	}
	// Workers never fail; Wait only joins them.
	_ = g.Wait()
	return seen, inserted.Load(), collected
}
