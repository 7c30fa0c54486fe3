// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"io"
	"math"
)

// Waveform returns the value of a sample given its frame index and channel.
type Waveform func(frame int, channel int) float32

// MockSource generates audio for tests. It satisfies audio.Source without
// importing it so the audio package itself can use it.
type MockSource struct {
	sampleRate int
	channels   int
	frames     int
	generated  int
	waveform   Waveform

	// FailAfter makes ReadSamples return Err once this many frames were produced.
	FailAfter int
	Err       error
	Closed    bool
}

// NewMockSource creates a source producing frames frames of waveform.
func NewMockSource(sampleRate, channels, frames int, waveform Waveform) *MockSource {
	return &MockSource{
		sampleRate: sampleRate,
		channels:   channels,
		frames:     frames,
		waveform:   waveform,
		FailAfter:  -1,
	}
}

// NewSilentSource creates a source of zeros.
func NewSilentSource(sampleRate, channels, frames int) *MockSource {
	return NewMockSource(sampleRate, channels, frames, Constant(0))
}

// NewSineSource creates a source of a sine tone on every channel.
func NewSineSource(sampleRate, channels, frames int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, frames, Sine(sampleRate, frequency))
}

// NewRampSource creates a source where channel c carries (c+1)*frame/frames.
// Channels are distinguishable, which makes ordering bugs visible.
func NewRampSource(sampleRate, channels, frames int) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(frame, channel int) float32 {
		return float32(channel+1) * float32(frame) / float32(frames) / float32(channels)
	})
}

// Constant returns a waveform with a fixed value.
func Constant(v float32) Waveform {
	return func(int, int) float32 { return v }
}

// Sine returns a sine waveform at frequency Hz.
func Sine(sampleRate int, frequency float64) Waveform {
	return func(frame int, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	}
}

// Planar renders frames frames of waveform as per-channel slices.
func Planar(channels, frames int, waveform Waveform) [][]float32 {
	out := make([][]float32, channels)
	for c := range out {
		out[c] = make([]float32, frames)
		for f := range frames {
			out[c][f] = waveform(f, c)
		}
	}
	return out
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }

func (m *MockSource) Close() error {
	m.Closed = true
	return nil
}

// Reset rewinds the source.
func (m *MockSource) Reset() {
	m.generated = 0
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.FailAfter >= 0 && m.generated >= m.FailAfter {
		return 0, m.Err
	}
	if m.generated >= m.frames {
		return 0, io.EOF
	}

	n := min(len(dst)/m.channels, m.frames-m.generated)
	if m.FailAfter >= 0 {
		n = min(n, m.FailAfter-m.generated)
	}

	for f := range n {
		idx := m.generated + f
		for c := range m.channels {
			dst[f*m.channels+c] = m.waveform(idx, c)
		}
	}
	m.generated += n

	if m.generated >= m.frames {
		return n * m.channels, io.EOF
	}
	return n * m.channels, nil
}
