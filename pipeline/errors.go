// SPDX-License-Identifier: EPL-2.0

package pipeline

import "errors"

// ErrCategoryMismatch is returned when a file does not belong to the
// requested Category. It is raised before any decoding.
var ErrCategoryMismatch = errors.New("file does not match conversion category")
