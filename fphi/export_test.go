// SPDX-License-Identifier: MIT

package fphi

import (
	"fmt"
	"math"

	"github.com/katalvlaran/fphi/evd"
	"github.com/katalvlaran/fphi/matrix"
	"github.com/katalvlaran/fphi/phenotype"
)

// lcg is a reproducible generator shared by the internal and external tests.
type lcg struct{ s uint64 }

func (g *lcg) uniform() float64 {
	g.s = g.s*6364136223846793005 + 1442695040888963407
	return (float64(g.s>>11) + 0.5) / (1 << 53)
}

func (g *lcg) norm() float64 {
	u1, u2 := g.uniform(), g.uniform()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// FamilyDesign simulates nfam families of k members with pairwise
// relatedness r and true heritability h, and returns the exact
// eigendecomposition of the block-diagonal relatedness matrix together with
// the simulated trait. Subjects are named "f<family>_<member>".
func FamilyDesign(nfam, k int, r, h float64, seed uint64, mu float64) (*evd.Artifact, *phenotype.Values) {
	g := &lcg{s: seed}
	n := nfam * k
	ids := make([]string, n)
	y := make([]float64, n)
	for f := 0; f < nfam; f++ {
		fam := g.norm()
		for i := 0; i < k; i++ {
			u := g.norm()
			e := g.norm()
			ids[f*k+i] = fmt.Sprintf("f%d_%d", f, i)
			y[f*k+i] = mu + math.Sqrt(h*r)*fam + math.Sqrt(h*(1-r))*u + math.Sqrt(1-h)*e
		}
	}

	vecs, _ := matrix.NewDense(n, n)
	vals := make([]float64, n)
	data := vecs.Data()
	small := nfam * (k - 1)
	for f := 0; f < nfam; f++ {
		// Helmert contrasts within the family.
		for j := 1; j < k; j++ {
			c := f*(k-1) + (j - 1)
			cj := 1 / math.Sqrt(float64(j*(j+1)))
			for i := 0; i < j; i++ {
				data[(f*k+i)*n+c] = cj
			}
			data[(f*k+j)*n+c] = -float64(j) * cj
			vals[c] = 1 - r
		}
		c := small + f
		for i := 0; i < k; i++ {
			data[(f*k+i)*n+c] = 1 / math.Sqrt(float64(k))
		}
		vals[c] = 1 + float64(k-1)*r
	}

	return &evd.Artifact{IDs: ids, Values: vals, Vectors: vecs},
		phenotype.NewValues("trait", ids, y)
}
