package analytics

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrInsufficientData means the series is shorter than the configured
	// observation floor and no normality test was attempted.
	ErrInsufficientData = errors.New("analytics: insufficient observations")

	// ErrNotNormal means the goodness-of-fit test rejected the normal
	// distribution at the configured significance level.
	ErrNotNormal = errors.New("analytics: sample rejects normality")
)

const (
	DefaultMinObservations   = 20
	DefaultSignificanceLevel = 0.05
)

// NormalFit is the fitted normal distribution for a price series that passed
// the test. StdDev is the sample standard deviation (ddof=1), consistent with
// the z-scores stored downstream.
type NormalFit struct {
	Mean   float64
	StdDev float64
	PValue float64
	N      int
}

// Classifier decides whether a price series is well approximated by a normal
// distribution. It is pure: no side effects, deterministic for a given input.
//
// The test is Jarque-Bera over the sample's skewness and excess kurtosis,
// with the p-value taken from the chi-squared distribution with 2 degrees of
// freedom. A degenerate series (zero variance) is classified not normal.
type Classifier struct {
	minObs int
	alpha  float64
}

// NewClassifier builds a classifier with the given observation floor and
// significance level. Non-positive arguments fall back to the defaults.
func NewClassifier(minObs int, alpha float64) *Classifier {
	if minObs <= 0 {
		minObs = DefaultMinObservations
	}
	if alpha <= 0 || alpha >= 1 {
		alpha = DefaultSignificanceLevel
	}
	return &Classifier{minObs: minObs, alpha: alpha}
}

// Classify runs the normality test and, on acceptance, returns the fitted
// mean and sample standard deviation.
func (c *Classifier) Classify(prices []float64) (*NormalFit, error) {
	n := len(prices)
	if n < c.minObs {
		return nil, ErrInsufficientData
	}

	mean := stat.Mean(prices, nil)

	// Central moments over n (population convention, standard for JB).
	var m2, m3, m4 float64
	for _, p := range prices {
		d := p - mean
		d2 := d * d
		m2 += d2
		m3 += d2 * d
		m4 += d2 * d2
	}
	fn := float64(n)
	m2 /= fn
	m3 /= fn
	m4 /= fn

	if m2 == 0 {
		// Constant series: no spread to test against, and a zero stddev
		// would make the z-score undefined.
		return nil, ErrNotNormal
	}

	skew := m3 / math.Pow(m2, 1.5)
	kurt := m4 / (m2 * m2)
	jb := fn / 6.0 * (skew*skew + (kurt-3.0)*(kurt-3.0)/4.0)

	p := distuv.ChiSquared{K: 2}.Survival(jb)
	if p < c.alpha {
		return nil, ErrNotNormal
	}

	return &NormalFit{
		Mean:   mean,
		StdDev: stat.StdDev(prices, nil),
		PValue: p,
		N:      n,
	}, nil
}

// MinObservations returns the configured observation floor.
func (c *Classifier) MinObservations() int { return c.minObs }
