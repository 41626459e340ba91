package boomap

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"

	maperrors "github.com/tamirms/boomap/errors"
	"github.com/tamirms/boomap/internal/bbhash"
)

// maxSeedAttempts bounds default oracle construction retries after a hash
// collision between distinct keys.
const maxSeedAttempts = 4

// seedStep is added to the seed between attempts (golden ratio increment).
const seedStep = 0x9e3779b97f4a7c15

// Oracle is a minimal perfect hash function over the key set it was built
// from.
//
// For each member key Lookup returns a distinct index in [0, n). For any
// other key it returns some arbitrary index and never signals absence, so
// a Map always compares the stored key before reporting a hit. Lookup must
// be safe for concurrent use once construction returns.
//
// Oracles may also implement interface{ SizeBits() uint64 } to report their
// memory footprint through Map.Stats.
type Oracle[K any] interface {
	Lookup(key K) uint64
}

// OracleBuilder constructs an Oracle over the n keys yielded by keys.
//
// keys is a non-owning view over the Map's entries. It may be iterated any
// number of times and yields the same keys in the same order each time.
// workers is the caller's concurrency hint. Builders must be deterministic
// for a fixed key set.
type OracleBuilder[K any] func(n int, keys iter.Seq[K], workers int) (Oracle[K], error)

// hashOracle adapts a bbhash.Table to keys of type K.
type hashOracle[K any] struct {
	table  *bbhash.Table
	hasher Hasher[K]
	seed   uint64
}

func (o *hashOracle[K]) hash(key K) uint64 {
	return o.hasher.Hash(key, o.seed)
}

// Lookup implements Oracle.
func (o *hashOracle[K]) Lookup(key K) uint64 {
	return o.table.Lookup(o.hash(key))
}

// SizeBits returns the footprint of the underlying table.
func (o *hashOracle[K]) SizeBits() uint64 {
	return o.table.SizeBits()
}

// newHashOracleBuilder returns the default OracleBuilder: a BBHash table
// over hasher's output.
//
// A collision between distinct keys is retried with a new seed. If the
// colliding keys are in fact equal the build fails with ErrDuplicateKey
// instead, since no seed can separate them.
func newHashOracleBuilder[K comparable](hasher Hasher[K], cfg *config) OracleBuilder[K] {
	return func(n int, keys iter.Seq[K], workers int) (Oracle[K], error) {
		bcfg := bbhash.Config{
			Gamma:     cfg.gamma,
			MaxLevels: cfg.maxLevels,
			Workers:   workers,
		}
		seed := cfg.seed
		var err error
		for attempt := range maxSeedAttempts {
			o := &hashOracle[K]{hasher: hasher, seed: seed}
			o.table, err = bbhash.Build(n, keys, o.hash, bcfg)
			if err == nil {
				cfg.logger.Debug("oracle built",
					slog.Int("levels", o.table.NumLevels()),
					slog.Int("fallback", o.table.FallbackLen()),
					slog.Float64("bits_per_key", o.table.BitsPerKey()))
				return o, nil
			}
			if !errors.Is(err, maperrors.ErrIndistinguishableHashes) {
				return nil, err
			}
			if attempt == 0 {
				if key, ok := firstDuplicate(keys); ok {
					return nil, fmt.Errorf("%w: %v", maperrors.ErrDuplicateKey, key)
				}
			}
			cfg.logger.Warn("oracle hash collision, retrying with new seed",
				slog.Int("attempt", attempt+1),
				slog.Uint64("seed", seed))
			seed += seedStep
		}
		return nil, fmt.Errorf("after %d seeds: %w", maxSeedAttempts, err)
	}
}

// firstDuplicate returns the first key yielded twice by keys.
func firstDuplicate[K comparable](keys iter.Seq[K]) (K, bool) {
	seen := make(map[K]struct{})
	for k := range keys {
		if _, ok := seen[k]; ok {
			return k, true
		}
		seen[k] = struct{}{}
	}
	var zero K
	return zero, false
}
