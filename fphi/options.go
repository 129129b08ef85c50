// SPDX-License-Identifier: MIT

package fphi

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// Estimator defaults.
const (
	DefaultPrecision     = 11
	DefaultMaxIterations = 100
	// BoundaryHigh and BoundaryLow trigger the boundary comparison.
	BoundaryHigh = 0.9
	BoundaryLow  = 0.1
	// hessianPivotEps is the smallest pivot accepted when inverting the
	// observed information.
	hessianPivotEps = 1e-10
)

// ChiSquareSurvival returns P(X > stat) for X ~ χ²(df).
type ChiSquareSurvival func(stat, df float64) float64

// Option configures Estimate.
type Option func(*Options)

// Options holds estimator parameters.
type Options struct {
	Precision     int
	MaxIterations int
	ChiSquare     ChiSquareSurvival

	err error
}

// DefaultOptions returns precision 11, 100 iterations and gonum's χ² survival.
func DefaultOptions() Options {
	return Options{
		Precision:     DefaultPrecision,
		MaxIterations: DefaultMaxIterations,
		ChiSquare:     gonumChiSquare,
	}
}

func gonumChiSquare(stat, df float64) float64 {
	return distuv.ChiSquared{K: df}.Survival(stat)
}

// WithPrecision sets the convergence tolerance to 10^-p, 1 ≤ p ≤ 15.
func WithPrecision(p int) Option {
	return func(o *Options) {
		if p < 1 || p > 15 {
			o.err = fmt.Errorf("%w: precision must be in [1,15] (%d)", ErrOptionViolation, p)
			return
		}
		o.Precision = p
	}
}

// WithMaxIterations caps the Newton loop. n must be positive.
func WithMaxIterations(n int) Option {
	return func(o *Options) {
		if n < 1 {
			o.err = fmt.Errorf("%w: max iterations must be >= 1 (%d)", ErrOptionViolation, n)
			return
		}
		o.MaxIterations = n
	}
}

// WithChiSquare replaces the χ² survival function.
func WithChiSquare(fn ChiSquareSurvival) Option {
	return func(o *Options) {
		if fn == nil {
			o.err = fmt.Errorf("%w: nil chi-square function", ErrOptionViolation)
			return
		}
		o.ChiSquare = fn
	}
}
