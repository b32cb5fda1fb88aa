package weights

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidWeights marks a weight configuration that does not pass
// validation. It is never auto-corrected: the admin must submit a valid one.
var ErrInvalidWeights = errors.New("invalid ranking weights")

// SumTolerance bounds how far the four pillar weights may drift from 1.0.
const SumTolerance = 0.01

// Config is the global, versioned pillar-weight configuration. Every score
// computation records the version it used so stale derived data is
// detectable after an admin change.
type Config struct {
	Strength    float64
	Stamina     float64
	Consistency float64
	Improvement float64
	Version     int64
	UpdatedAt   time.Time
}

func Default() Config {
	return Config{
		Strength:    0.30,
		Stamina:     0.25,
		Consistency: 0.25,
		Improvement: 0.20,
		Version:     1,
	}
}

func (c Config) Sum() float64 {
	return c.Strength + c.Stamina + c.Consistency + c.Improvement
}

func (c Config) Validate() error {
	pillars := map[string]float64{
		"strength":    c.Strength,
		"stamina":     c.Stamina,
		"consistency": c.Consistency,
		"improvement": c.Improvement,
	}
	for name, value := range pillars {
		if value < 0 {
			return fmt.Errorf("%w: %s weight %v is negative", ErrInvalidWeights, name, value)
		}
	}
	if sum := c.Sum(); math.Abs(sum-1.0) > SumTolerance {
		return fmt.Errorf("%w: weights sum to %.4f, expected 1.0±%.2f", ErrInvalidWeights, sum, SumTolerance)
	}
	return nil
}
