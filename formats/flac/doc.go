// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC streams with the pure Go github.com/mewkiz/flac
// decoder. Any bit depth from 4 to 32 is normalized to float32 in
// [-1.0, 1.0]; channels keep the stream order.
package flac
