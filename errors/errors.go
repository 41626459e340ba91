// Package errors defines all exported error sentinels for the boomap library.
//
// This is the single source of truth for error values. Both the top-level
// boomap package and internal packages import from here, ensuring errors.Is
// checks work across package boundaries.
package errors

import "errors"

// Lifecycle errors
var (
	ErrBuilt    = errors.New("boomap: map is already built")
	ErrNotBuilt = errors.New("boomap: map is not built")
)

// Build errors
var (
	ErrOracleConstruction = errors.New("boomap: oracle construction failed")
	ErrDuplicateKey       = errors.New("boomap: duplicate key detected")
	ErrOracleNotBijective = errors.New("boomap: oracle is not a bijection over the key set")
)

// Query errors
var (
	ErrNotFound = errors.New("boomap: key not found")
)

// Oracle construction errors (default oracle)
var (
	ErrInvalidConfig           = errors.New("boomap: invalid oracle configuration")
	ErrKeyCountMismatch        = errors.New("boomap: key count mismatch")
	ErrIndistinguishableHashes = errors.New("boomap: indistinguishable key hashes - retry with different seed")
)
