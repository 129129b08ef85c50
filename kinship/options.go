// SPDX-License-Identifier: MIT

package kinship

import (
	"fmt"
	"math"
)

// Format selects how a kinship table is interpreted.
type Format int

const (
	// FormatAuto detects the pairwise format from the header.
	FormatAuto Format = iota
	// FormatEmpirical forces the pairwise (IDA, IDB, KIN) format.
	FormatEmpirical
)

// String returns the lowercase format name.
func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatEmpirical:
		return "empirical"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// ParseFormat maps "auto"/"empirical" (or "") to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "auto", "AUTO":
		return FormatAuto, nil
	case "empirical", "EMPIRICAL":
		return FormatEmpirical, nil
	}

	return FormatAuto, fmt.Errorf("%w: unknown format %q", ErrOptionViolation, s)
}

// Option configures clustering via functional arguments.
type Option func(*Options)

// Options holds clustering parameters.
type Options struct {
	// Threshold is the minimum accepted kinship; 0 means "strictly positive".
	Threshold float64

	// Format controls header interpretation.
	Format Format

	// internal error recorded during option parsing
	err error
}

// DefaultOptions returns threshold 0 and FormatAuto.
func DefaultOptions() Options {
	return Options{Threshold: 0, Format: FormatAuto}
}

// WithThreshold sets the kinship acceptance threshold.
// Negative, NaN and infinite values are rejected with ErrOptionViolation.
func WithThreshold(t float64) Option {
	return func(o *Options) {
		if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
			o.err = fmt.Errorf("%w: threshold must be finite and >= 0 (%v)", ErrOptionViolation, t)
			return
		}
		o.Threshold = t
	}
}

// WithFormat sets the table format.
func WithFormat(f Format) Option {
	return func(o *Options) {
		if f != FormatAuto && f != FormatEmpirical {
			o.err = fmt.Errorf("%w: %s", ErrOptionViolation, f)
			return
		}
		o.Format = f
	}
}

// buildOptions applies opts over the defaults and returns the first violation.
func buildOptions(opts ...Option) (Options, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
		if o.err != nil {
			return o, o.err
		}
	}

	return o, nil
}

// accepts reports whether an entry passes the inclusion rule.
func (o Options) accepts(self bool, kinship float64) bool {
	if self {
		return true
	}
	if o.Threshold == 0 {
		return kinship > 0
	}

	return kinship >= o.Threshold
}
