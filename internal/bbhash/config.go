package bbhash

import (
	"fmt"

	maperrors "github.com/tamirms/boomap/errors"
)

// Algorithm constants.
const (
	// DefaultGamma is the bits-per-remaining-key load of each level.
	// Larger values place more keys per level at the cost of space
	// (about 3.7 bits/key at gamma=2).
	DefaultGamma = 2.0

	// DefaultMaxLevels bounds the number of levels before the remaining
	// keys are moved to the fallback table.
	DefaultMaxLevels = 25

	// maxLevelsLimit is the largest accepted MaxLevels.
	maxLevelsLimit = 64

	// bufferFraction is the share of n at or below which the remaining key
	// hashes are buffered instead of re-streaming the key sequence.
	bufferFraction = 0.03

	// batchSize is the number of keys handed to one worker at a time.
	batchSize = 4096
)

// Config holds construction parameters. The zero value is not valid;
// start from DefaultConfig.
type Config struct {
	Gamma     float64
	MaxLevels int
	Workers   int
}

// DefaultConfig returns the default construction parameters.
func DefaultConfig() Config {
	return Config{
		Gamma:     DefaultGamma,
		MaxLevels: DefaultMaxLevels,
		Workers:   1,
	}
}

func (c Config) validate() error {
	if c.Gamma < 1 {
		return fmt.Errorf("%w: gamma %g must be >= 1", maperrors.ErrInvalidConfig, c.Gamma)
	}
	if c.MaxLevels < 1 || c.MaxLevels > maxLevelsLimit {
		return fmt.Errorf("%w: max levels %d not in [1, %d]", maperrors.ErrInvalidConfig, c.MaxLevels, maxLevelsLimit)
	}
	return nil
}

func (c Config) workers() int {
	if c.Workers < 1 {
		return 1
	}
	return c.Workers
}
