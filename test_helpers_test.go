package boomap

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"iter"
	"math/rand/v2"
	"testing"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

// generateKeys creates n distinct deterministic string keys.
func generateKeys(rng *rand.Rand, n int) []string {
	seen := make(map[string]struct{}, n)
	keys := make([]string, 0, n)
	for len(keys) < n {
		k := fmt.Sprintf("key-%016x", rng.Uint64())
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// buildStringMap adds keys with value i for the i-th key and builds the map.
func buildStringMap(t testing.TB, keys []string, workers int, opts ...Option) *Map[string, int] {
	t.Helper()
	m := New[string, int](XXH3(), opts...)
	m.Grow(len(keys))
	for i, k := range keys {
		if err := m.Add(k, i); err != nil {
			t.Fatalf("Add(%q): %v", k, err)
		}
	}
	if err := m.Build(workers); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

// tableOracle is a fixed key-to-index assignment for driving exact
// permutation shapes through Map.Build.
type tableOracle map[string]uint64

func (o tableOracle) Lookup(key string) uint64 {
	if idx, ok := o[key]; ok {
		return idx
	}
	return 0
}

// fixedOracle returns an OracleBuilder that ignores the keys and returns o.
func fixedOracle(o Oracle[string]) OracleBuilder[string] {
	return func(int, iter.Seq[string], int) (Oracle[string], error) {
		return o, nil
	}
}
