// SPDX-License-Identifier: EPL-2.0

// Package media describes pipeline inputs: the read-only File handle and the
// fixed table of supported container/codec families.
//
// The table maps extensions and MIME aliases to a Format:
//
//	.mp3  -> audio/mpeg
//	.ogg  -> audio/ogg
//	.opus -> audio/opus
//	.flac -> audio/flac
//	.m4a  -> audio/m4a
//	.wav  -> audio/wav
//	.webm -> audio/webm
//	.mp4  -> video/mp4
//	.aiff -> audio/aiff
//
// Files without an extension are resolved from their declared type or, as a
// last resort, by sniffing their content.
package media
