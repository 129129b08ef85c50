// SPDX-License-Identifier: MIT

package session

import "errors"

var (
	// ErrNotReady indicates a stage was called before its prerequisites.
	ErrNotReady = errors.New("session: not ready")

	// ErrInvalidConfig wraps configuration validation failures.
	ErrInvalidConfig = errors.New("session: invalid config")

	// ErrUnsafeTrait rejects a trait name that would place the default
	// outputs outside OutputDir.
	ErrUnsafeTrait = errors.New("session: unsafe trait name")

	// ErrOptionViolation indicates an invalid functional option.
	ErrOptionViolation = errors.New("session: option violation")
)
