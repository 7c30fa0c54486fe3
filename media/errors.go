// SPDX-License-Identifier: EPL-2.0

package media

import "errors"

var (
	// ErrUnsupportedFormat is returned when a file cannot be mapped to a known Format.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	ErrNegativeOffset = errors.New("negative offset")
)
