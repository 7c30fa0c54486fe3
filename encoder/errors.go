// SPDX-License-Identifier: EPL-2.0

package encoder

import "errors"

var (
	// ErrEncode wraps engine construction and block failures.
	ErrEncode = errors.New("encode failed")
	// ErrHandleState is returned when a Handle is used out of order.
	ErrHandleState = errors.New("encoder handle used in wrong state")

	ErrUnsupportedSampleRate = errors.New("unsupported MP3 sample rate")
	ErrUnsupportedChannels   = errors.New("unsupported MP3 channel count")
	ErrUnsupportedBitrate    = errors.New("unsupported MP3 bitrate")
)
