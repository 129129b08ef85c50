// SPDX-License-Identifier: MIT

package kinship

import "errors"

// Sentinel errors for kinship loading and clustering.
var (
	// ErrOptionViolation indicates an invalid option value (negative or
	// non-finite threshold, unknown format).
	ErrOptionViolation = errors.New("kinship: invalid option supplied")

	// ErrUnsupportedFormat is returned when FormatAuto cannot recognise the
	// table as a pairwise (IDA, IDB, KIN) kinship list.
	ErrUnsupportedFormat = errors.New("kinship: unsupported pedigree format")
)
