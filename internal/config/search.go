package config

import (
	"fmt"

	"github.com/lgbarn/fairychess-go/internal/errors"
)

// SearchConfig holds settings for the computer player.
type SearchConfig struct {
	// Level gates the evaluation terms, 1 to 5
	Level int `yaml:"level"`

	// Foresight selects alpha-beta lookahead over the greedy pick
	Foresight bool `yaml:"foresight"`

	// Depth is the lookahead depth in plies when Foresight is set
	Depth int `yaml:"depth"`

	// Tolerance is how far below the best score a greedy pick may be
	Tolerance float64 `yaml:"tolerance"`

	// Workers is the number of goroutines scoring root moves; 0 uses one per CPU
	Workers int `yaml:"workers"`

	// Seed fixes the random source; 0 seeds from the clock
	Seed uint64 `yaml:"seed"`

	// CacheSize caps the evaluation cache; 0 means unlimited
	CacheSize int `yaml:"cache_size"`
}

// NewSearchConfig creates a SearchConfig with default values.
func NewSearchConfig() *SearchConfig {
	return &SearchConfig{
		Level:     3,
		Depth:     2,
		Tolerance: 4,
		CacheSize: 1 << 16,
	}
}

// Validate checks that the search configuration is valid.
func (s *SearchConfig) Validate() error {
	if s.Level < 1 || s.Level > 5 {
		return fmt.Errorf("search level %d outside [1, 5]: %w", s.Level, errors.ErrInvalidConfig)
	}
	if s.Depth < 1 {
		return fmt.Errorf("search depth %d < 1: %w", s.Depth, errors.ErrInvalidConfig)
	}
	if s.Tolerance < 0 {
		return fmt.Errorf("search tolerance %v < 0: %w", s.Tolerance, errors.ErrInvalidConfig)
	}
	if s.Workers < 0 {
		return fmt.Errorf("search workers %d < 0: %w", s.Workers, errors.ErrInvalidConfig)
	}
	if s.CacheSize < 0 {
		return fmt.Errorf("search cache size %d < 0: %w", s.CacheSize, errors.ErrInvalidConfig)
	}
	return nil
}
