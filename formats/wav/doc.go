// SPDX-License-Identifier: EPL-2.0

// Package wav decodes RIFF/WAVE files and writes 16-bit PCM WAV files.
//
// Decoding is done with github.com/go-audio/wav and supports integer PCM at
// 8, 16, 24 and 32 bits with any channel count and sample rate:
//
//	src, err := wav.Decoder{}.Decode(file)
//	if errors.Is(err, wav.ErrNotWavFile) {
//	    // not RIFF/WAVE at all
//	}
//
// Samples are normalized to float32 in [-1.0, 1.0]. 8-bit data is unsigned
// and is re-centered around zero.
//
// WriteWAV16 writes interleaved int16 samples behind a canonical 44-byte
// header:
//
//	err := wav.WriteWAV16(w, 16000, 1, samples)
package wav
