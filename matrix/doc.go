// Package matrix provides the small dense linear-algebra surface the
// heritability pipeline needs.
//
// What:
//
//   - Dense: a row-major float64 matrix with bounds-checked At/Set.
//   - Invert: Gauss–Jordan elimination with partial pivoting and an explicit
//     pivot threshold, used for the 3×3 observed-information matrix.
//   - SymmetricEigensolver: the contract of a dense symmetric eigensolver
//     (eigenvalues ascending, column i of the vector matrix pairs with value i).
//     GonumSolver delegates to gonum's mat.EigenSym; JacobiSolver is a pure
//     cyclic-max Jacobi implementation useful for cross-checking small inputs.
//
// Determinism:
//
//	Every kernel uses fixed loop orders and never iterates maps, so identical
//	inputs produce bit-identical outputs.
//
// Errors:
//
//   - ErrInvalidDimensions, ErrOutOfRange, ErrDimensionMismatch, ErrNilMatrix
//   - ErrAsymmetry (solver input not symmetric)
//   - ErrSingular (Invert), ErrEigenFailed (solvers)
package matrix
