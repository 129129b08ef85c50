// SPDX-License-Identifier: MIT

package fault

import "fmt"

// RecordError describes one skipped input record. It unwraps to
// ErrMalformedInput so a caller can fold diagnostics into the taxonomy.
type RecordError struct {
	Source string // file or stream name
	Line   int    // 1-based line number, header is line 1
	Reason string // human-readable cause
}

// Error implements error.
func (e RecordError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Reason)
}

// Unwrap exposes ErrMalformedInput to errors.Is.
func (e RecordError) Unwrap() error { return ErrMalformedInput }
