// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams with
// github.com/jfreymuth/oggvorbis.
//
// Channel count and order are taken from the stream headers unchanged.
//
//	src, err := vorbis.Decoder{}.Decode(file)
package vorbis
