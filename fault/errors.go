// SPDX-License-Identifier: MIT

package fault

import "errors"

var (
	// ErrMalformedInput marks a record with a bad shape or an unparseable value.
	// The record is skipped; the stage continues.
	ErrMalformedInput = errors.New("fault: malformed input record")

	// ErrNoData indicates a stage is left without enough usable rows to proceed.
	ErrNoData = errors.New("fault: no usable data")

	// ErrColumnNotFound indicates a required identifier, kinship or trait column is missing.
	ErrColumnNotFound = errors.New("fault: required column not found")

	// ErrNoOverlap indicates no identifier is shared between pedigree and phenotypes.
	ErrNoOverlap = errors.New("fault: no overlapping subject ids")

	// ErrSingularDesign indicates the weighted regression denominator XᵗΩX is zero.
	ErrSingularDesign = errors.New("fault: singular design in weighted regression")

	// ErrDecomposition indicates the symmetric eigensolver reported a failure.
	ErrDecomposition = errors.New("fault: eigen decomposition failed")

	// ErrIO indicates a required file could not be opened, created or read.
	ErrIO = errors.New("fault: i/o failure")
)
