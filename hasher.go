package boomap

import (
	"hash/maphash"
	"unsafe"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"
)

// Hasher maps keys to 64-bit hashes for the default oracle.
//
// Hash must be deterministic for a given (key, seed) pair, and distinct
// seeds should give independent hashes: the oracle retries with a new seed
// when two distinct keys hash identically.
type Hasher[K any] interface {
	Hash(key K, seed uint64) uint64
}

// HasherFunc adapts a function to the Hasher interface.
type HasherFunc[K any] func(key K, seed uint64) uint64

// Hash calls f(key, seed).
func (f HasherFunc[K]) Hash(key K, seed uint64) uint64 { return f(key, seed) }

// XXH3 hashes strings with seeded xxHash3-64. It is the fastest of the
// string hashers and the recommended default.
func XXH3() Hasher[string] {
	return HasherFunc[string](xxh3.HashStringSeed)
}

// XXHash hashes strings with seeded xxHash64.
func XXHash() Hasher[string] {
	return HasherFunc[string](func(key string, seed uint64) uint64 {
		var d xxhash.Digest
		d.ResetWithSeed(seed)
		_, _ = d.WriteString(key) // Digest writes never fail
		return d.Sum64()
	})
}

// Murmur3 hashes strings with seeded MurmurHash3 (x64, low 64 bits).
// The seed is folded to 32 bits.
func Murmur3() Hasher[string] {
	return HasherFunc[string](func(key string, seed uint64) uint64 {
		return murmur3.Sum64WithSeed(stringBytes(key), uint32(seed^seed>>32))
	})
}

// Uint64 hashes integer keys with the splitmix64 finalizer.
func Uint64() Hasher[uint64] {
	return HasherFunc[uint64](mixUint64)
}

// Comparable hashes any comparable key through hash/maphash.
//
// The maphash seed is drawn once per call to Comparable; hashes are stable
// only for the lifetime of the returned Hasher.
func Comparable[K comparable]() Hasher[K] {
	s := maphash.MakeSeed()
	return HasherFunc[K](func(key K, seed uint64) uint64 {
		var h maphash.Hash
		h.SetSeed(s)
		maphash.WriteComparable(&h, seed)
		maphash.WriteComparable(&h, key)
		return h.Sum64()
	})
}

// mixUint64 is the splitmix64 finalizer applied to key^seed. Every step is
// a bijection on uint64, so distinct keys never collide under one seed.
func mixUint64(key, seed uint64) uint64 {
	z := key ^ seed
	z = (z ^ z>>30) * 0xbf58476d1ce4e5b9
	z = (z ^ z>>27) * 0x94d049bb133111eb
	return z ^ z>>31
}

// stringBytes returns the bytes of s without copying. The result must not
// be modified.
func stringBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
