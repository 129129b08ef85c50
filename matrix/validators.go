// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//  - Provide one source of truth for the nil/shape/symmetry guards used by
//    Invert and the eigensolvers.
//  - Return sentinels wrapped with a validator tag so call sites can wrap again.
//
// Determinism & Performance:
//  - All checks are pure and allocate nothing.

package matrix

import (
	"fmt"
	"math"
)

// validatorErrorf wraps an underlying error with the given validator tag.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateSquare ensures m is non-nil and square.
// Complexity: O(1).
func ValidateSquare(m *Dense) error {
	if m == nil {
		return validatorErrorf("ValidateSquare", ErrNilMatrix)
	}
	if m.r != m.c {
		return validatorErrorf("ValidateSquare", ErrDimensionMismatch)
	}

	return nil
}

// ValidateSymmetric checks m is square and |m[i,j] - m[j,i]| ≤ tol for all i<j.
// A NaN or negative tol is treated as zero.
// Complexity: O(n²).
func ValidateSymmetric(m *Dense, tol float64) error {
	if err := ValidateSquare(m); err != nil {
		return err
	}
	if math.IsNaN(tol) || tol < 0 {
		tol = 0
	}
	if !m.IsSymmetric(tol) {
		return validatorErrorf("ValidateSymmetric", ErrAsymmetry)
	}

	return nil
}
