// SPDX-License-Identifier: EPL-2.0

// Package encoder turns planar PCM into an MP3 byte stream.
//
// Samples are converted to 16-bit with asymmetric scaling (see
// utils.Float32ToInt16), grouped into blocks of BlockFrames interleaved frames
// and submitted in order to an Engine through a Handle. The Handle is flushed
// exactly once at the end.
//
// Mono input is written as mono frames; two channels are written as joint
// stereo. The default engine is a pure Go port of the shine fixed-point
// encoder; it emits plain stereo frames, so the channel-mode bits of every
// frame header are rewritten on the way out.
//
//	enc, err := encoder.Encode(ctx, pcm, encoder.Options{})
//	if err != nil {
//		return err
//	}
//	os.WriteFile("out.mp3", enc.Bytes(), 0o644)
package encoder
