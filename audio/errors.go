// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// ErrNoSamples is returned by ReadAll when the source produced no frames.
	ErrNoSamples = errors.New("source produced no samples")

	// ErrInvalidFormat is returned for non-positive sample rates or channel counts.
	ErrInvalidFormat = errors.New("invalid sample rate or channel count")
)
