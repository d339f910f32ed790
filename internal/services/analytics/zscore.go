package analytics

import (
	"errors"
	"fmt"
)

// ErrInvalidStdDev is a contract violation: the caller must route degenerate
// series away from scoring before calling Score.
var ErrInvalidStdDev = errors.New("analytics: standard deviation must be positive")

// Score returns the standardized deviation of the latest price from the
// fitted mean: (latest - mean) / stddev. More negative scores mean the price
// sits further below its trailing mean; ranking consumers rely on that
// ordering.
func Score(latest, mean, stddev float64) (float64, error) {
	if stddev <= 0 {
		return 0, fmt.Errorf("%w: got %g", ErrInvalidStdDev, stddev)
	}
	return (latest - mean) / stddev, nil
}
