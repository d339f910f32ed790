package analytics

import (
	"errors"
	"math"
	"testing"
)

// evenSpread returns n evenly spaced closes centered on mid. Symmetric and
// light-tailed enough that Jarque-Bera accepts it at the default level.
func evenSpread(n int, mid, halfWidth float64) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = mid - halfWidth + 2*halfWidth*float64(i)/float64(n-1)
	}
	return out
}

func TestClassifyInsufficientData(t *testing.T) {
	c := NewClassifier(20, 0.05)

	if _, err := c.Classify(evenSpread(19, 100, 5)); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData for 19 points, got %v", err)
	}

	// Exactly the floor proceeds to the test.
	fit, err := c.Classify(evenSpread(20, 100, 5))
	if err != nil {
		t.Fatalf("expected fit at exactly min observations, got %v", err)
	}
	if fit.N != 20 {
		t.Fatalf("expected N=20, got %d", fit.N)
	}
}

func TestClassifyAcceptsSymmetricSeries(t *testing.T) {
	c := NewClassifier(20, 0.05)

	fit, err := c.Classify(evenSpread(25, 100, 5))
	if err != nil {
		t.Fatalf("expected normal fit, got %v", err)
	}
	if math.Abs(fit.Mean-100) > 1e-9 {
		t.Fatalf("expected mean 100, got %v", fit.Mean)
	}
	if fit.StdDev <= 0 {
		t.Fatalf("expected positive stddev, got %v", fit.StdDev)
	}
	if fit.PValue < 0.05 {
		t.Fatalf("expected p-value above threshold, got %v", fit.PValue)
	}
}

func TestClassifyRejectsOutlierSeries(t *testing.T) {
	c := NewClassifier(20, 0.05)

	prices := make([]float64, 25)
	for i := range prices {
		prices[i] = 100
	}
	prices[24] = 200 // single extreme spike: heavy skew and kurtosis

	if _, err := c.Classify(prices); !errors.Is(err, ErrNotNormal) {
		t.Fatalf("expected ErrNotNormal, got %v", err)
	}
}

func TestClassifyConstantSeries(t *testing.T) {
	c := NewClassifier(20, 0.05)

	prices := make([]float64, 25)
	for i := range prices {
		prices[i] = 42.5
	}

	if _, err := c.Classify(prices); !errors.Is(err, ErrNotNormal) {
		t.Fatalf("expected ErrNotNormal for zero variance, got %v", err)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := NewClassifier(20, 0.05)
	prices := evenSpread(30, 55, 3)

	a, errA := c.Classify(prices)
	b, errB := c.Classify(prices)
	if errA != nil || errB != nil {
		t.Fatalf("unexpected errors: %v %v", errA, errB)
	}
	if a.Mean != b.Mean || a.StdDev != b.StdDev || a.PValue != b.PValue {
		t.Fatalf("classification not deterministic: %+v vs %+v", a, b)
	}
}

func TestClassifySampleStdDev(t *testing.T) {
	// ddof=1: for {98,99,100,101,102} the sample stddev is sqrt(2.5).
	c := NewClassifier(5, 0.05)

	fit, err := c.Classify([]float64{98, 99, 100, 101, 102})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(fit.StdDev-math.Sqrt(2.5)) > 1e-12 {
		t.Fatalf("expected sample stddev sqrt(2.5), got %v", fit.StdDev)
	}
}

func TestNewClassifierDefaults(t *testing.T) {
	c := NewClassifier(0, 0)
	if c.MinObservations() != DefaultMinObservations {
		t.Fatalf("expected default floor %d, got %d", DefaultMinObservations, c.MinObservations())
	}
	if c.alpha != DefaultSignificanceLevel {
		t.Fatalf("expected default alpha %v, got %v", DefaultSignificanceLevel, c.alpha)
	}
}
