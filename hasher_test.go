package boomap

import (
	"testing"
)

func TestStringHashersDeterministic(t *testing.T) {
	hashers := map[string]Hasher[string]{
		"xxh3":       XXH3(),
		"xxhash":     XXHash(),
		"murmur3":    Murmur3(),
		"comparable": Comparable[string](),
	}
	for name, h := range hashers {
		t.Run(name, func(t *testing.T) {
			a := h.Hash("hello world", 1)
			if b := h.Hash("hello world", 1); a != b {
				t.Fatalf("Hash not deterministic: %#x != %#x", a, b)
			}
			if b := h.Hash("hello world", 2); a == b {
				t.Errorf("seed 1 and 2 gave the same hash %#x", a)
			}
			if b := h.Hash("hello worle", 1); a == b {
				t.Errorf("distinct keys gave the same hash %#x", a)
			}
			// empty keys must hash without panicking
			_ = h.Hash("", 0)
		})
	}
}

// TestMurmur3SeedFold checks both seed halves reach the 32-bit murmur seed.
func TestMurmur3SeedFold(t *testing.T) {
	h := Murmur3()
	base := h.Hash("key", 0)
	if h.Hash("key", 1) == base {
		t.Error("low seed bits ignored")
	}
	if h.Hash("key", 1<<40) == base {
		t.Error("high seed bits ignored")
	}
}

// TestUint64HasherInjective samples consecutive keys, which a weak mixer
// would be most likely to collide on.
func TestUint64HasherInjective(t *testing.T) {
	h := Uint64()
	seen := make(map[uint64]uint64, 1<<16)
	for k := uint64(0); k < 1<<16; k++ {
		v := h.Hash(k, 42)
		if prev, dup := seen[v]; dup {
			t.Fatalf("keys %d and %d both hash to %#x", prev, k, v)
		}
		seen[v] = k
	}
}

func TestHasherFunc(t *testing.T) {
	f := HasherFunc[int](func(k int, seed uint64) uint64 { return uint64(k) + seed })
	if got := f.Hash(3, 4); got != 7 {
		t.Errorf("HasherFunc.Hash(3, 4) = %d, want 7", got)
	}
}

func TestStringBytes(t *testing.T) {
	if got := string(stringBytes("abc")); got != "abc" {
		t.Errorf("stringBytes(abc) = %q", got)
	}
	if got := len(stringBytes("")); got != 0 {
		t.Errorf("len(stringBytes(\"\")) = %d, want 0", got)
	}
}
