// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files with github.com/go-audio/aiff.
//
// Signed PCM at 8, 16, 24 and 32 bits is supported. Samples are normalized
// to float32 in [-1.0, 1.0].
package aiff
