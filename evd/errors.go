// SPDX-License-Identifier: MIT

package evd

import "errors"

// ErrOptionViolation indicates an invalid option value.
var ErrOptionViolation = errors.New("evd: invalid option supplied")
