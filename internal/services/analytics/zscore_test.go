package analytics

import (
	"errors"
	"testing"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name   string
		latest float64
		mean   float64
		stddev float64
		want   float64
	}{
		{"at mean", 100, 100, 5.0, 0.0},
		{"one below", 90, 100, 10, -1.0},
		{"one above", 110, 100, 10, 1.0},
		{"two below", 96, 100, 2, -2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Score(tt.latest, tt.mean, tt.stddev)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestScoreContractViolation(t *testing.T) {
	if _, err := Score(100, 100, 0); !errors.Is(err, ErrInvalidStdDev) {
		t.Fatalf("expected ErrInvalidStdDev for zero stddev, got %v", err)
	}
	if _, err := Score(100, 100, -1); !errors.Is(err, ErrInvalidStdDev) {
		t.Fatalf("expected ErrInvalidStdDev for negative stddev, got %v", err)
	}
}
