// SPDX-License-Identifier: MIT

package fphi

import (
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/fphi/evd"
)

// rotate projects trait and the all-ones design onto the eigenbasis:
// y[i] = Σ_j V[j][i]·trait[j], x[i] = Σ_j V[j][i].
func rotate(a *evd.Artifact, trait []float64) *model {
	n := a.N()
	m := &model{
		y:      make([]float64, n),
		x:      make([]float64, n),
		lambda: append([]float64(nil), a.Values...),
	}
	for i := 0; i < n; i++ {
		col := a.Vectors.Col(i)
		m.y[i] = floats.Dot(col, trait)
		m.x[i] = floats.Sum(col)
	}

	return m
}
