// SPDX-License-Identifier: MIT

package fphi

import (
	"fmt"

	"github.com/katalvlaran/fphi/evd"
	"github.com/katalvlaran/fphi/fault"
	"github.com/katalvlaran/fphi/phenotype"
)

// Param is a value with its standard error.
type Param struct {
	Value float64
	SE    float64
}

// Parameters is the reported parameter table.
type Parameters struct {
	Mean Param
	E2   Param
	H2r  Param
	SD   Param
}

// Result is the outcome of one heritability run.
type Result struct {
	Trait      string
	H2r        float64
	SE         float64
	LogLik     float64
	NullLogLik float64
	PValue     float64
	N          int

	// Iterations counts likelihood evaluations of the Newton search.
	Iterations int
	// Converged is false when the search stopped on the iteration cap or
	// on a non-finite step.
	Converged bool
	// Boundary is true when h2r was replaced by 0 or 1.
	Boundary bool
	// InformationSingular is true when standard errors are unavailable and
	// reported as 0.
	InformationSingular bool

	Params Parameters
}

// Estimate fits the heritability of trait for the subjects of a.
// Every subject of a must have a value in v. trait labels the result and
// defaults to v.Trait.
//
// Errors:
//   - fault.ErrNoData for fewer than two subjects;
//   - fault.ErrNoOverlap naming the first subject without a value;
//   - fault.ErrMalformedInput when the artifact is inconsistent;
//   - fault.ErrSingularDesign when XᵗΩX is exactly 0;
//   - ErrOptionViolation for invalid options.
func Estimate(a *evd.Artifact, v *phenotype.Values, trait string, opts ...Option) (*Result, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
		if o.err != nil {
			return nil, o.err
		}
	}
	if a == nil || v == nil {
		return nil, fmt.Errorf("fphi: nil artifact or phenotype values: %w", fault.ErrNoData)
	}
	if trait == "" {
		trait = v.Trait
	}

	n := a.N()
	if n < 2 {
		return nil, fmt.Errorf("fphi: %d subject(s), need at least 2: %w", n, fault.ErrNoData)
	}
	if len(a.Values) != n || a.Vectors == nil || a.Vectors.Rows() != n || a.Vectors.Cols() != n {
		return nil, fmt.Errorf("fphi: artifact with %d ids, %d eigenvalues: %w", n, len(a.Values), fault.ErrMalformedInput)
	}

	obs := make([]float64, n)
	for i, id := range a.IDs {
		val, ok := v.Lookup(id)
		if !ok {
			return nil, fmt.Errorf("fphi: no %q value for subject %q: %w", trait, id, fault.ErrNoOverlap)
		}
		obs[i] = val
	}

	m := rotate(a, obs)
	s, err := m.maximize(o.Precision, o.MaxIterations)
	if err != nil {
		return nil, err
	}
	p := m.parameters(&s.best)

	r := &Result{
		Trait:               trait,
		H2r:                 s.best.h2r,
		SE:                  p.e2SE,
		LogLik:              s.best.loglik,
		NullLogLik:          m.nullLogLik(),
		N:                   n,
		Iterations:          s.iterations,
		Converged:           s.converged,
		Boundary:            s.boundary,
		InformationSingular: p.informationSingular,
		Params: Parameters{
			Mean: Param{p.mean, p.meanSE},
			E2:   Param{p.e2, p.e2SE},
			H2r:  Param{s.best.h2r, p.e2SE},
			SD:   Param{p.sd, p.sdSE},
		},
	}
	r.PValue = pValue(r.LogLik, r.NullLogLik, o.ChiSquare)

	return r, nil
}

// pValue is the halved upper χ²₁ tail of the likelihood-ratio statistic, or
// 0.5 when the fit does not improve on the null.
func pValue(ll, ll0 float64, chi ChiSquareSurvival) float64 {
	if !(ll0 < ll) {
		return 0.5
	}

	return chi(2*(ll-ll0), 1) / 2
}
