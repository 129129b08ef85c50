// SPDX-License-Identifier: MIT

package fphi

import "errors"

// ErrOptionViolation indicates an invalid estimator option.
var ErrOptionViolation = errors.New("fphi: invalid option supplied")
