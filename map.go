package boomap

import (
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"time"

	maperrors "github.com/tamirms/boomap/errors"
	"github.com/tamirms/boomap/internal/permute"
)

// Entry is a key-value pair stored in a Map.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// Map is a static key-value map indexed by a minimal perfect hash.
//
// Entries are staged with Add, then Build constructs the oracle over the
// staged keys and permutes the entries in place so that the entry for key k
// sits at index Lookup(k). After Build the map holds exactly Len() entries
// in one slice with no empty slots.
//
// A Map is not safe for concurrent use while staging or building. Once
// Build returns successfully, Find, Get and iteration may be called from
// multiple goroutines.
type Map[K comparable, V any] struct {
	entries   []Entry[K, V]
	newOracle OracleBuilder[K]
	oracle    Oracle[K]
	built     bool
	logger    *slog.Logger
}

// New returns an empty map that builds the default BBHash oracle over keys
// hashed with hasher.
func New[K comparable, V any](hasher Hasher[K], opts ...Option) *Map[K, V] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Map[K, V]{
		newOracle: newHashOracleBuilder(hasher, cfg),
		logger:    cfg.logger,
	}
}

// NewWithOracle returns an empty map that builds its oracle with build.
// Options that tune the default oracle are ignored.
func NewWithOracle[K comparable, V any](build OracleBuilder[K], opts ...Option) *Map[K, V] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Map[K, V]{
		newOracle: build,
		logger:    cfg.logger,
	}
}

// Add stages a key-value pair. Keys are not deduplicated here; Build
// rejects duplicates. Add returns ErrBuilt once the map is built.
func (m *Map[K, V]) Add(key K, value V) error {
	if m.built {
		return maperrors.ErrBuilt
	}
	m.entries = append(m.entries, Entry[K, V]{Key: key, Value: value})
	return nil
}

// Grow reserves space for n more entries. It panics if n is negative.
func (m *Map[K, V]) Grow(n int) {
	m.entries = slices.Grow(m.entries, n)
}

// Build constructs the oracle over the staged keys and reorders the entries
// into oracle order. workers is passed to the oracle builder as a
// concurrency hint.
//
// If oracle construction fails, or the oracle does not map the keys onto
// [0, Len()) one to one, Build returns an error and leaves the map unbuilt
// with its entries in insertion order. Build returns ErrBuilt if called
// again after success.
func (m *Map[K, V]) Build(workers int) error {
	if m.built {
		return maperrors.ErrBuilt
	}
	start := time.Now()
	n := len(m.entries)

	m.logger.Debug("building oracle", slog.Int("keys", n), slog.Int("workers", workers))
	oracle, err := m.newOracle(n, m.Keys(), workers)
	if err != nil {
		return fmt.Errorf("%w: %w", maperrors.ErrOracleConstruction, err)
	}
	if oracle == nil {
		return fmt.Errorf("%w: builder returned a nil oracle", maperrors.ErrOracleConstruction)
	}

	order := make([]int, n)
	for i := range m.entries {
		idx := oracle.Lookup(m.entries[i].Key)
		if idx >= uint64(n) {
			return fmt.Errorf("%w: key %v mapped to index %d, want < %d",
				maperrors.ErrOracleNotBijective, m.entries[i].Key, idx, n)
		}
		order[i] = int(idx)
	}
	if i, bad := permute.FirstConflict(order); bad {
		return m.conflictError(order, i)
	}

	m.logger.Debug("reordering entries to oracle order", slog.Int("keys", n))
	permute.Apply(order, m.entries)

	m.oracle = oracle
	m.built = true
	m.logger.Debug("map built", slog.Int("keys", n), slog.Duration("elapsed", time.Since(start)))
	return nil
}

// conflictError describes why order[i] collides with an earlier target.
// All targets are known to be in range.
func (m *Map[K, V]) conflictError(order []int, i int) error {
	key := m.entries[i].Key
	j := permute.Claimant(order, i)
	if m.entries[j].Key == key {
		return fmt.Errorf("%w: %v", maperrors.ErrDuplicateKey, key)
	}
	return fmt.Errorf("%w: keys %v and %v both mapped to index %d",
		maperrors.ErrOracleNotBijective, m.entries[j].Key, key, order[i])
}

// Find returns the entry for key. The entry's Value may be modified in
// place. Find returns ErrNotFound if key was not added and ErrNotBuilt
// before Build has succeeded.
func (m *Map[K, V]) Find(key K) (*Entry[K, V], error) {
	if !m.built {
		return nil, maperrors.ErrNotBuilt
	}
	idx := m.oracle.Lookup(key)
	if idx >= uint64(len(m.entries)) {
		return nil, maperrors.ErrNotFound
	}
	e := &m.entries[idx]
	if e.Key != key {
		return nil, maperrors.ErrNotFound
	}
	return e, nil
}

// Get returns the value for key and whether it was found. It reports false
// for every key before Build has succeeded.
func (m *Map[K, V]) Get(key K) (V, bool) {
	e, err := m.Find(key)
	if err != nil {
		var zero V
		return zero, false
	}
	return e.Value, true
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int { return len(m.entries) }

// Built reports whether Build has succeeded.
func (m *Map[K, V]) Built() bool { return m.built }

// All yields every key-value pair, in insertion order before Build and in
// oracle order after.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i := range m.entries {
			if !yield(m.entries[i].Key, m.entries[i].Value) {
				return
			}
		}
	}
}

// Entries yields a copy of every entry in the same order as All.
func (m *Map[K, V]) Entries() iter.Seq[Entry[K, V]] {
	return func(yield func(Entry[K, V]) bool) {
		for i := range m.entries {
			if !yield(m.entries[i]) {
				return
			}
		}
	}
}

// Keys yields every key in the same order as All.
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for i := range m.entries {
			if !yield(m.entries[i].Key) {
				return
			}
		}
	}
}

// Values yields every value in the same order as All.
func (m *Map[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for i := range m.entries {
			if !yield(m.entries[i].Value) {
				return
			}
		}
	}
}

// Stats describes the size of a built map's index.
type Stats struct {
	Keys         int
	Levels       int     // default oracle only
	FallbackKeys int     // default oracle only
	OracleBits   uint64  // 0 if the oracle does not report its size
	BitsPerKey   float64 // OracleBits / Keys
}

// Stats returns index statistics. It returns the zero Stats before Build.
func (m *Map[K, V]) Stats() Stats {
	if !m.built {
		return Stats{}
	}
	s := Stats{Keys: len(m.entries)}
	if sz, ok := m.oracle.(interface{ SizeBits() uint64 }); ok {
		s.OracleBits = sz.SizeBits()
	}
	if ho, ok := m.oracle.(*hashOracle[K]); ok {
		s.Levels = ho.table.NumLevels()
		s.FallbackKeys = ho.table.FallbackLen()
	}
	if s.Keys > 0 {
		s.BitsPerKey = float64(s.OracleBits) / float64(s.Keys)
	}
	return s
}
