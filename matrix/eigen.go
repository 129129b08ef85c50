// SPDX-License-Identifier: MIT

package matrix

import (
	"math"
	"sort"
)

// SymmetricEigensolver decomposes a dense symmetric matrix.
//
// Contract:
//   - values are returned in ascending order;
//   - column i of vectors is the unit eigenvector paired with values[i];
//   - a failure to converge or a backend failure status is reported as ErrEigenFailed;
//   - the input is not modified.
type SymmetricEigensolver interface {
	EigenSym(m *Dense) (values []float64, vectors *Dense, err error)
}

// Default Jacobi controls.
const (
	DefaultJacobiTol     = 1e-12
	DefaultJacobiSweeps  = 100
	defaultSymmetryCheck = 1e-9
)

// JacobiSolver implements SymmetricEigensolver by repeated Jacobi rotations on
// the largest off-diagonal element.
//
// Tol bounds the final max |A[p,q]|; MaxIter caps the number of rotations and
// is scaled by n² when left zero. Zero values select the package defaults.
type JacobiSolver struct {
	Tol     float64
	MaxIter int
}

var _ SymmetricEigensolver = JacobiSolver{}

// EigenSym implements SymmetricEigensolver.
// Complexity: O(maxIter·n) time per rotation sweep, O(n²) space.
func (s JacobiSolver) EigenSym(m *Dense) ([]float64, *Dense, error) {
	if err := ValidateSymmetric(m, defaultSymmetryCheck); err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	tol := s.Tol
	if !(tol > 0) {
		tol = DefaultJacobiTol
	}
	n := m.r
	maxIter := s.MaxIter
	if maxIter <= 0 {
		maxIter = DefaultJacobiSweeps * n * n
	}

	a := m.Clone()
	q, err := Identity(n)
	if err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}

	var (
		iter, i, j, p, r    int
		maxOff, off         float64
		app, arr, apr       float64
		aip, air, qip, qir  float64
		theta, t, c, sn     float64
		converged           = n == 1
	)
	for iter = 0; iter < maxIter && !converged; iter++ {
		// pivot (p,r) = argmax |A[i,j]|, i<j, first in i→j order
		maxOff = 0
		for i = 0; i < n; i++ {
			for j = i + 1; j < n; j++ {
				if off = math.Abs(a.data[i*n+j]); off > maxOff {
					maxOff, p, r = off, i, j
				}
			}
		}
		if maxOff < tol {
			converged = true
			break
		}

		app = a.data[p*n+p]
		arr = a.data[r*n+r]
		apr = a.data[p*n+r]
		theta = (arr - app) / (2 * apr)
		t = math.Copysign(1.0/(math.Abs(theta)+math.Hypot(theta, 1)), theta)
		c = 1.0 / math.Sqrt(t*t+1)
		sn = t * c

		for i = 0; i < n; i++ {
			if i == p || i == r {
				continue
			}
			aip = a.data[i*n+p]
			air = a.data[i*n+r]
			a.data[i*n+p] = c*aip - sn*air
			a.data[p*n+i] = a.data[i*n+p]
			a.data[i*n+r] = sn*aip + c*air
			a.data[r*n+i] = a.data[i*n+r]
		}
		a.data[p*n+p] = c*c*app - 2*c*sn*apr + sn*sn*arr
		a.data[r*n+r] = sn*sn*app + 2*c*sn*apr + c*c*arr
		a.data[p*n+r], a.data[r*n+p] = 0, 0

		// accumulate Q ← Q·J
		for i = 0; i < n; i++ {
			qip = q.data[i*n+p]
			qir = q.data[i*n+r]
			q.data[i*n+p] = c*qip - sn*qir
			q.data[i*n+r] = sn*qip + c*qir
		}
	}
	if !converged {
		// the loop may have exhausted maxIter exactly on a converged matrix
		maxOff = 0
		for i = 0; i < n; i++ {
			for j = i + 1; j < n; j++ {
				maxOff = math.Max(maxOff, math.Abs(a.data[i*n+j]))
			}
		}
		if maxOff >= tol {
			return nil, nil, matrixErrorf(opEigen, ErrEigenFailed)
		}
	}

	values := make([]float64, n)
	for i = 0; i < n; i++ {
		values[i] = a.data[i*n+i]
	}

	return sortEigen(values, q)
}

// sortEigen reorders values ascending and permutes the columns of vectors to
// match. The sort is stable so equal eigenvalues keep their rotation order.
func sortEigen(values []float64, vectors *Dense) ([]float64, *Dense, error) {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool { return values[order[x]] < values[order[y]] })

	sortedVals := make([]float64, n)
	sortedVecs, err := NewDense(vectors.r, n)
	if err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	for k, src := range order {
		sortedVals[k] = values[src]
		for i := 0; i < vectors.r; i++ {
			sortedVecs.data[i*n+k] = vectors.data[i*n+src]
		}
	}

	return sortedVals, sortedVecs, nil
}
