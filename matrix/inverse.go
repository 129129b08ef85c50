// SPDX-License-Identifier: MIT

package matrix

import "math"

// DefaultPivotEps is the pivot magnitude below which Invert reports ErrSingular.
const DefaultPivotEps = 1e-10

// Invert returns m⁻¹ using Gauss–Jordan elimination with partial pivoting.
//
// At each column k the row with the largest |a[i,k]| (i ≥ k, first wins on
// ties) is swapped into place. If that magnitude is below pivotEps the matrix
// is reported singular. A non-positive pivotEps selects DefaultPivotEps.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch (non-square), ErrSingular.
// Complexity: O(n³) time, O(n²) extra memory. m is not modified.
func Invert(m *Dense, pivotEps float64) (*Dense, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opInvert, err)
	}
	if !(pivotEps > 0) {
		pivotEps = DefaultPivotEps
	}

	n := m.r
	a := m.Clone()
	inv, err := Identity(n)
	if err != nil {
		return nil, matrixErrorf(opInvert, err)
	}

	var (
		i, j, k, piv int
		best, v, f   float64
	)
	for k = 0; k < n; k++ {
		piv, best = k, math.Abs(a.data[k*n+k])
		for i = k + 1; i < n; i++ {
			if v = math.Abs(a.data[i*n+k]); v > best {
				piv, best = i, v
			}
		}
		if !(best >= pivotEps) {
			return nil, matrixErrorf(opInvert, ErrSingular)
		}
		if piv != k {
			swapRows(a, k, piv)
			swapRows(inv, k, piv)
		}

		// normalize pivot row
		f = 1 / a.data[k*n+k]
		for j = 0; j < n; j++ {
			a.data[k*n+j] *= f
			inv.data[k*n+j] *= f
		}

		// eliminate column k from every other row
		for i = 0; i < n; i++ {
			if i == k {
				continue
			}
			f = a.data[i*n+k]
			if f == 0 {
				continue
			}
			for j = 0; j < n; j++ {
				a.data[i*n+j] -= f * a.data[k*n+j]
				inv.data[i*n+j] -= f * inv.data[k*n+j]
			}
		}
	}

	return inv, nil
}

// swapRows exchanges rows r1 and r2 in place.
func swapRows(m *Dense, r1, r2 int) {
	c := m.c
	for j := 0; j < c; j++ {
		m.data[r1*c+j], m.data[r2*c+j] = m.data[r2*c+j], m.data[r1*c+j]
	}
}
