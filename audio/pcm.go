// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"time"
)

// maxEmptyReads bounds how many (0, nil) reads ReadAll tolerates in a row.
const maxEmptyReads = 100

// PCMBuffer holds a fully decoded clip as planar float32 samples.
// Samples[c][i] is sample i of channel c, in [-1, 1].
type PCMBuffer struct {
	SampleRate int
	Channels   int
	Samples    [][]float32
}

// NewPCMBuffer allocates an empty buffer with capacity for frames samples
// per channel.
func NewPCMBuffer(sampleRate, channels, frames int) (*PCMBuffer, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: %d Hz, %d channels", ErrInvalidFormat, sampleRate, channels)
	}

	samples := make([][]float32, channels)
	for c := range samples {
		samples[c] = make([]float32, 0, max(frames, 0))
	}

	return &PCMBuffer{
		SampleRate: sampleRate,
		Channels:   channels,
		Samples:    samples,
	}, nil
}

// Len returns the number of frames (samples per channel).
func (p *PCMBuffer) Len() int {
	if p == nil || len(p.Samples) == 0 {
		return 0
	}
	return len(p.Samples[0])
}

// Duration of the clip at its sample rate.
func (p *PCMBuffer) Duration() time.Duration {
	if p == nil || p.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(p.Len()) / float64(p.SampleRate) * float64(time.Second))
}

// AppendInterleaved splits interleaved frames into the per-channel slices.
// len(src) must be a multiple of p.Channels.
func (p *PCMBuffer) AppendInterleaved(src []float32) error {
	if len(src)%p.Channels != 0 {
		return ErrInvalidDstSize
	}

	frames := len(src) / p.Channels
	if p.Channels == 1 {
		p.Samples[0] = append(p.Samples[0], src...)
		return nil
	}

	for c := range p.Channels {
		ch := p.Samples[c]
		for f := range frames {
			ch = append(ch, src[f*p.Channels+c])
		}
		p.Samples[c] = ch
	}

	return nil
}

// ReadAll drains src into a PCMBuffer. It does not close src.
func ReadAll(src Source) (*PCMBuffer, error) {
	channels := src.Channels()
	pcm, err := NewPCMBuffer(src.SampleRate(), channels, 0)
	if err != nil {
		return nil, err
	}

	size := src.BufSize()
	if size <= 0 {
		size = 4096
	}
	size = max(size-size%channels, channels)
	buf := make([]float32, size)

	// pending holds the head of a frame split across two reads.
	pending := make([]float32, 0, channels)
	empty := 0

	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			empty = 0
			chunk := buf[:n]

			if len(pending) > 0 {
				need := min(channels-len(pending), len(chunk))
				pending = append(pending, chunk[:need]...)
				chunk = chunk[need:]
				if len(pending) == channels {
					_ = pcm.AppendInterleaved(pending)
					pending = pending[:0]
				}
			}

			whole := len(chunk) - len(chunk)%channels
			_ = pcm.AppendInterleaved(chunk[:whole])
			pending = append(pending, chunk[whole:]...)
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}

		if n == 0 {
			empty++
			if empty >= maxEmptyReads {
				return nil, io.ErrNoProgress
			}
		}
	}

	if pcm.Len() == 0 {
		return nil, ErrNoSamples
	}

	return pcm, nil
}

// BufferSource replays a PCMBuffer as an interleaved Source so it can be fed
// through Resampler or MonoMixer.
type BufferSource struct {
	pcm *PCMBuffer
	pos int
}

var _ Source = (*BufferSource)(nil)

func NewBufferSource(pcm *PCMBuffer) *BufferSource {
	return &BufferSource{pcm: pcm}
}

func (b *BufferSource) SampleRate() int { return b.pcm.SampleRate }
func (b *BufferSource) Channels() int   { return b.pcm.Channels }
func (b *BufferSource) BufSize() int    { return 4096 }
func (b *BufferSource) Close() error    { return nil }

func (b *BufferSource) ReadSamples(dst []float32) (int, error) {
	channels := b.pcm.Channels
	total := b.pcm.Len()
	if b.pos >= total {
		return 0, io.EOF
	}

	frames := min(len(dst)/channels, total-b.pos)
	for f := range frames {
		for c := range channels {
			dst[f*channels+c] = b.pcm.Samples[c][b.pos+f]
		}
	}
	b.pos += frames

	if b.pos >= total {
		return frames * channels, io.EOF
	}
	return frames * channels, nil
}
