// Package boomap implements a static key-value map indexed by a Minimal
// Perfect Hash Function (MPHF).
//
// A Map holds N entries in a single slice with no empty slots. Lookups cost
// one oracle query plus one key comparison. The key set is fixed: entries
// are staged, the map is built once, and no insertion or deletion is
// possible afterwards.
//
// # Basic Usage
//
// Building a map:
//
//	m := boomap.New[string, int](boomap.XXH3())
//	for key, value := range data {
//	    if err := m.Add(key, value); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//	if err := m.Build(runtime.NumCPU()); err != nil {
//	    log.Fatal(err)
//	}
//
// Querying a map:
//
//	e, err := m.Find("mykey")
//	if errors.Is(err, boomaperrors.ErrNotFound) {
//	    // not a member
//	}
//	e.Value++ // entries are mutable in place
//
// # Oracles
//
// The default oracle is a BBHash multi-level bit array MPHF using about 3.7
// bits per key. It never reports absence by itself: a non-member key maps
// to an arbitrary slot, and Find rejects it by comparing keys. Any other
// MPHF can be plugged in with NewWithOracle.
//
// # Package Structure
//
//   - Public API: map.go (Map, Add, Build, Find, iteration), oracle.go (Oracle, OracleBuilder)
//   - Configuration: options.go (Option, With* functions)
//   - Hashing: hasher.go (Hasher, XXH3, XXHash, Murmur3, Uint64, Comparable)
//   - In-place reordering: internal/permute/
//   - Default oracle: internal/bbhash/, internal/bits/
package boomap
