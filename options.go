package boomap

import (
	"log/slog"

	"github.com/tamirms/boomap/internal/bbhash"
)

// Option is a functional option for configuring a Map.
type Option func(*config)

type config struct {
	gamma     float64
	maxLevels int
	seed      uint64
	logger    *slog.Logger
}

func defaultConfig() *config {
	return &config{
		gamma:     bbhash.DefaultGamma,
		maxLevels: bbhash.DefaultMaxLevels,
		seed:      0x1234567890abcdef, // Arbitrary default; overridden via WithSeed
		logger:    slog.New(slog.DiscardHandler),
	}
}

// WithGamma sets the default oracle's bits per remaining key at each level.
// Values must be at least 1; larger values build faster and look up faster
// at the cost of space. Default is 2.
func WithGamma(gamma float64) Option {
	return func(c *config) {
		c.gamma = gamma
	}
}

// WithMaxLevels sets the number of bit array levels the default oracle
// builds before moving unplaced keys to its fallback table.
func WithMaxLevels(n int) Option {
	return func(c *config) {
		c.maxLevels = n
	}
}

// WithSeed sets the hash seed of the default oracle.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.seed = seed
	}
}

// WithLogger sets the logger used for build progress. A nil logger is ignored.
// By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
