// SPDX-License-Identifier: MIT

package fphi

import (
	"math"

	"github.com/katalvlaran/fphi/matrix"
)

// finalParams are the point estimates on the scale reported to the user.
type finalParams struct {
	mean, e2, sd        float64
	meanSE, e2SE, sdSE  float64
	informationSingular bool
}

// parameters recomputes the intercept with Ω = 1/(σ²·Σ) at the final h2r and
// derives standard errors from the observed information over (mean, e2, sd).
func (m *model) parameters(f *fit) finalParams {
	n := m.n()
	h := f.h2r
	omega := make([]float64, n)
	var xox, xoy float64
	for i, l := range m.lambda {
		omega[i] = 1 / (f.variance * ((1 - h) + h*l))
		xox += m.x[i] * omega[i] * m.x[i]
		xoy += m.x[i] * omega[i] * m.y[i]
	}
	beta := xoy / xox

	p := finalParams{mean: beta, e2: 1 - h, sd: math.Sqrt(f.variance)}

	h3, err := m.information(beta, p.sd, omega)
	if err != nil {
		p.informationSingular = true
		return p
	}
	inv, err := matrix.Invert(h3, hessianPivotEps)
	if err != nil {
		p.informationSingular = true
		return p
	}
	d := inv.Data()
	p.meanSE = math.Sqrt(math.Abs(d[0]))
	p.e2SE = math.Sqrt(math.Abs(d[4]))
	p.sdSE = math.Sqrt(math.Abs(d[8]))

	return p
}

// information builds the symmetric 3×3 observed information in the order
// (mean, e2, sd).
func (m *model) information(beta, sd float64, omega []float64) (*matrix.Dense, error) {
	n := m.n()
	var (
		bb, be, bs float64
		omlSq      float64
		resTerm    float64
		se         float64
		rOmega     float64
	)
	for i := 0; i < n; i++ {
		r := m.y[i] - m.x[i]*beta
		oml := 1 - m.lambda[i]
		w := omega[i]

		bb += m.x[i] * w * m.x[i]
		be += sd * sd * m.x[i] * w * w * oml * r
		bs += 2 * m.x[i] * r * w / sd
		omlSq += oml * oml * w * w
		resTerm += oml * oml * w * w * w * r * r
		se += sd * oml * (r * w) * (r * w)
		rOmega += r * r * w
	}
	ee := -math.Pow(sd, 4) * (0.5*omlSq - resTerm)
	ss := -math.Pow(sd, -2) * (float64(n) - 3*rOmega)

	return matrix.NewDenseFrom(3, 3, []float64{
		bb, be, bs,
		be, ee, se,
		bs, se, ss,
	})
}
