// SPDX-License-Identifier: EPL-2.0

// Package decode maps media formats to their decoders and drains a file into
// an audio.PCMBuffer. Native Go decoders handle WAV, MP3, Ogg Vorbis, FLAC
// and AIFF; Opus, M4A, WebM and MP4 go through ffmpeg.
//
// Every failure is reported as ErrDecode wrapping the cause, except context
// cancellation which is returned unwrapped.
package decode
