// SPDX-License-Identifier: MIT

package evd

import (
	"fmt"

	"github.com/katalvlaran/fphi/matrix"
)

// Artifact is an eigendecomposition of a relatedness matrix.
// Column i of Vectors is the eigenvector of Values[i]; Values ascend.
type Artifact struct {
	IDs     []string
	Values  []float64
	Vectors *matrix.Dense
}

// N returns the number of subjects.
func (a *Artifact) N() int { return len(a.IDs) }

// Reconstruct returns V·diag(λ)·Vᵗ.
func (a *Artifact) Reconstruct() (*matrix.Dense, error) {
	if a.Vectors == nil || a.Vectors.Cols() != len(a.Values) {
		return nil, fmt.Errorf("evd: %d eigenvalues for a %dx%d basis: %w",
			len(a.Values), rowsOf(a.Vectors), colsOf(a.Vectors), matrix.ErrDimensionMismatch)
	}
	scaled := a.Vectors.Clone()
	n := scaled.Cols()
	d := scaled.Data()
	for i := 0; i < scaled.Rows(); i++ {
		for k, l := range a.Values {
			d[i*n+k] *= l
		}
	}
	vt, err := matrix.Transpose(a.Vectors)
	if err != nil {
		return nil, err
	}

	return matrix.Mul(scaled, vt)
}

func rowsOf(m *matrix.Dense) int {
	if m == nil {
		return 0
	}
	return m.Rows()
}

func colsOf(m *matrix.Dense) int {
	if m == nil {
		return 0
	}
	return m.Cols()
}
