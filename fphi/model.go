// SPDX-License-Identifier: MIT

package fphi

import (
	"fmt"
	"math"

	"github.com/katalvlaran/fphi/fault"
)

// model holds the rotated observations: y = Vᵗ·trait, x = Vᵗ·1 and the
// eigenvalues lambda of the relatedness matrix.
type model struct {
	y, x, lambda []float64
}

// fit is the profile solution at a fixed h2r.
type fit struct {
	h2r      float64
	beta     float64
	variance float64
	loglik   float64
	sigma    []float64 // (1-h2r) + h2r·λ
	resid    []float64
}

func (m *model) n() int { return len(m.y) }

// evaluate fills f with the weighted least squares intercept, the residual
// variance and the log-likelihood at h2r.
func (m *model) evaluate(h2r float64, f *fit) error {
	n := m.n()
	if len(f.sigma) != n {
		f.sigma = make([]float64, n)
		f.resid = make([]float64, n)
	}
	f.h2r = h2r

	var xox, xoy float64
	for i, l := range m.lambda {
		s := (1 - h2r) + h2r*l
		f.sigma[i] = s
		w := 1 / s
		xox += m.x[i] * w * m.x[i]
		xoy += m.x[i] * w * m.y[i]
	}
	if xox == 0 {
		return fmt.Errorf("fphi: XᵗΩX = 0 at h2r=%g: %w", h2r, fault.ErrSingularDesign)
	}
	f.beta = xoy / xox

	var rss, logdet float64
	for i := range m.y {
		r := m.y[i] - m.x[i]*f.beta
		f.resid[i] = r
		rss += r * r / f.sigma[i]
		logdet += math.Log(math.Abs(f.sigma[i]))
	}
	f.variance = rss / float64(n)
	f.loglik = logLik(f.variance, logdet, n)

	return nil
}

// logLik is -½(n·ln|σ²| + Σ ln|Σ_i| + n).
func logLik(variance, logdet float64, n int) float64 {
	fn := float64(n)

	return -0.5 * (math.Log(math.Abs(variance))*fn + logdet + fn)
}

// derivatives returns the first and second derivative of the log-likelihood
// with respect to h2r at fixed variance.
func (m *model) derivatives(f *fit) (dl, ddl float64) {
	var p1, p2, q1, q2 float64
	v := f.variance
	for i, l := range m.lambda {
		siv := 1 / (f.sigma[i] * v)
		lm1 := l - 1
		r2 := f.resid[i] * f.resid[i]
		p1 += v * lm1 * siv
		p2 += v * lm1 * r2 * siv * siv
		q1 += v * v * lm1 * lm1 * siv * siv
		q2 += 2 * v * v * lm1 * lm1 * r2 * siv * siv * siv
	}

	return -0.5 * (p1 - p2), -0.5 * (-q1 + q2)
}

// constraint maps the unconstrained t onto [0,1).
func constraint(t float64) float64 { return t * t / (1 + t*t) }

func dconstraint(t float64) float64 { return 2 * t / math.Pow(1+t*t, 2) }

func ddconstraint(t float64) float64 { return -2 * (3*t*t - 1) / math.Pow(t*t+1, 3) }

// newtonStep returns Δ = -score/hessian in t-space.
func (m *model) newtonStep(t float64, f *fit) float64 {
	dl, ddl := m.derivatives(f)
	dc := dconstraint(t)
	score := dc * dl
	hess := dc*dc*ddl + ddconstraint(t)*dl

	return -score / hess
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

// search state reported back to Estimate.
type search struct {
	best       fit
	iterations int
	converged  bool
	boundary   bool
}

// maximize runs the reparameterized Newton search followed by the boundary
// comparison. The returned fit is the last h2r whose likelihood was
// evaluated, or the boundary when that is strictly better.
func (m *model) maximize(precision, maxIter int) (*search, error) {
	s := &search{}
	cur := &s.best

	t, h2r := 1.0, 0.5
	if err := m.evaluate(h2r, cur); err != nil {
		return nil, err
	}
	s.iterations = 1
	delta := m.newtonStep(t, cur)
	next := 0.0
	if finite(delta) {
		t += delta
		next = constraint(t)
	}

	tol := math.Pow(10, -float64(precision))
	for iter := 0; finite(delta) && math.Abs(next-h2r) >= tol; {
		iter++
		if iter >= maxIter {
			break
		}
		h2r = next
		if err := m.evaluate(h2r, cur); err != nil {
			return nil, err
		}
		s.iterations++
		delta = m.newtonStep(t, cur)
		if finite(delta) {
			t += delta
			next = constraint(t)
		}
	}
	s.converged = finite(delta) && math.Abs(next-h2r) < tol

	s.boundary = m.snapToBoundary(cur)

	return s, nil
}

// snapToBoundary compares an estimate at or beyond BoundaryHigh (BoundaryLow)
// with the likelihood at exactly 1 (0) and replaces cur when the boundary is
// finite and strictly better.
func (m *model) snapToBoundary(cur *fit) bool {
	h := cur.h2r
	if !finite(h) || (h < BoundaryHigh && h > BoundaryLow) {
		return false
	}
	edge := 0.0
	if h >= BoundaryHigh {
		edge = 1.0
	}
	var b fit
	if err := m.evaluate(edge, &b); err != nil {
		return false
	}
	if !finite(b.loglik) || !(b.loglik > cur.loglik) {
		return false
	}
	*cur = b

	return true
}

// nullLogLik is the sporadic model: h2r = 0, no intercept, σ² = mean(y²).
func (m *model) nullLogLik() float64 {
	var ss float64
	for _, v := range m.y {
		ss += v * v
	}
	n := m.n()

	return logLik(ss/float64(n), 0, n)
}
