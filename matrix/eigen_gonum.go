// SPDX-License-Identifier: MIT

package matrix

import (
	"gonum.org/v1/gonum/mat"
)

// GonumSolver implements SymmetricEigensolver on top of gonum's LAPACK-backed
// mat.EigenSym. It is the default solver of the pipeline.
type GonumSolver struct{}

var _ SymmetricEigensolver = GonumSolver{}

// EigenSym implements SymmetricEigensolver.
// gonum already returns eigenvalues in ascending order; the result is still
// passed through sortEigen so the contract holds regardless of backend.
func (GonumSolver) EigenSym(m *Dense) ([]float64, *Dense, error) {
	if err := ValidateSymmetric(m, defaultSymmetryCheck); err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	n := m.r

	// mat.NewSymDense reads only the upper triangle
	sym := mat.NewSymDense(n, append([]float64(nil), m.data...))

	var es mat.EigenSym
	if ok := es.Factorize(sym, true); !ok {
		return nil, nil, matrixErrorf(opEigen, ErrEigenFailed)
	}
	values := es.Values(nil)

	var ev mat.Dense
	es.VectorsTo(&ev)

	vectors, err := NewDense(n, n)
	if err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			vectors.data[i*n+j] = ev.At(i, j)
		}
	}

	return sortEigen(values, vectors)
}
