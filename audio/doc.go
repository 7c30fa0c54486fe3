// SPDX-License-Identifier: EPL-2.0

// Package audio provides the PCM primitives shared by the decoders and the
// encoder.
//
// # Source Interface
//
// Every format decoder returns a Source, a pull-based stream of interleaved
// float32 samples in [-1.0, 1.0]:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// ReadSamples returns io.EOF once the stream is exhausted. It may return the
// last samples together with io.EOF.
//
// # PCM Buffers
//
// ReadAll drains a Source into a PCMBuffer, which stores each channel in its
// own slice in the source channel order:
//
//	pcm, err := audio.ReadAll(src)
//	left := pcm.Samples[0]
//
// BufferSource turns a PCMBuffer back into a Source.
//
// # Processing
//
// Resampler changes the sample rate using cubic interpolation and MonoMixer
// averages all channels into one. Both wrap another Source:
//
//	src := audio.NewMonoMixer(audio.NewResampler(audio.NewBufferSource(pcm), 16000))
//
// # Registry
//
// Registry maps a format key to a Decoder:
//
//	registry := audio.NewRegistry()
//	registry.Register("audio/wav", wav.Decoder{})
//	decoder, ok := registry.Get("audio/wav")
package audio
