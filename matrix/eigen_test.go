package matrix_test

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/katalvlaran/fphi/matrix"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// EigenSuite runs the same contract checks against every solver.
type EigenSuite struct {
	suite.Suite
	solver matrix.SymmetricEigensolver
}

func TestGonumSolver(t *testing.T) {
	suite.Run(t, &EigenSuite{solver: matrix.GonumSolver{}})
}

func TestJacobiSolver(t *testing.T) {
	suite.Run(t, &EigenSuite{solver: matrix.JacobiSolver{}})
}

func (s *EigenSuite) TestDiagonal() {
	m, _ := matrix.NewDenseFrom(3, 3, []float64{3, 0, 0, 0, 1, 0, 0, 0, 2})
	vals, vecs, err := s.solver.EigenSym(m)
	s.Require().NoError(err)
	s.Require().InDeltaSlice([]float64{1, 2, 3}, vals, 1e-12)

	// eigenvalue 1 belongs to the second basis vector
	s.Require().InDelta(1.0, math.Abs(vecs.Col(0)[1]), 1e-12)
}

func (s *EigenSuite) TestKnown2x2() {
	m, _ := matrix.NewDenseFrom(2, 2, []float64{2, 1, 1, 2})
	vals, _, err := s.solver.EigenSym(m)
	s.Require().NoError(err)
	s.Require().InDeltaSlice([]float64{1, 3}, vals, 1e-10)
}

func (s *EigenSuite) TestReconstructs() {
	m := randomSymmetric(12, 7)
	vals, vecs, err := s.solver.EigenSym(m)
	s.Require().NoError(err)
	s.Require().True(sort.Float64sAreSorted(vals))

	n := m.Rows()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var sum float64
			for k := 0; k < n; k++ {
				vik, _ := vecs.At(i, k)
				vjk, _ := vecs.At(j, k)
				sum += vik * vals[k] * vjk
			}
			want, _ := m.At(i, j)
			s.Require().InDelta(want, sum, 1e-8)
		}
	}

	// orthonormal columns
	vt, _ := matrix.Transpose(vecs)
	g, _ := matrix.Mul(vt, vecs)
	id, _ := matrix.Identity(n)
	s.Require().InDeltaSlice(id.Data(), g.Data(), 1e-8)
}

func (s *EigenSuite) TestRejectsAsymmetric() {
	m, _ := matrix.NewDenseFrom(2, 2, []float64{1, 2, 3, 4})
	_, _, err := s.solver.EigenSym(m)
	s.Require().ErrorIs(err, matrix.ErrAsymmetry)
}

func (s *EigenSuite) TestSingleElement() {
	m, _ := matrix.NewDenseFrom(1, 1, []float64{0.5})
	vals, vecs, err := s.solver.EigenSym(m)
	s.Require().NoError(err)
	s.Require().Equal([]float64{0.5}, vals)
	s.Require().InDelta(1.0, math.Abs(vecs.Data()[0]), 1e-15)
}

func TestSolversAgree(t *testing.T) {
	m := randomSymmetric(9, 42)
	gv, _, err := matrix.GonumSolver{}.EigenSym(m)
	require.NoError(t, err)
	jv, _, err := matrix.JacobiSolver{}.EigenSym(m)
	require.NoError(t, err)
	require.InDeltaSlice(t, gv, jv, 1e-9)
}

func TestJacobiSolver_IterationCap(t *testing.T) {
	m := randomSymmetric(6, 3)
	_, _, err := matrix.JacobiSolver{MaxIter: 1, Tol: 1e-15}.EigenSym(m)
	require.ErrorIs(t, err, matrix.ErrEigenFailed)
}

// randomSymmetric builds a deterministic symmetric n×n matrix.
func randomSymmetric(n int, seed int64) *matrix.Dense {
	rng := rand.New(rand.NewSource(seed))
	m, _ := matrix.NewDense(n, n)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := rng.Float64()*2 - 1
			_ = m.Set(i, j, v)
			_ = m.Set(j, i, v)
		}
	}

	return m
}
