// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audpipe/audio"
	"github.com/mewkiz/flac"
)

var (
	ErrNotFlac             = errors.New("not a FLAC stream")
	ErrUnsupportedBitDepth = errors.New("unsupported FLAC bit depth")
)

// blockReader yields decoded FLAC frames as per-channel int32 samples.
type blockReader interface {
	next() ([][]int32, error)
	close() error
}

type streamReader struct {
	stream *flac.Stream
}

func (s streamReader) next() ([][]int32, error) {
	f, err := s.stream.ParseNext()
	if err != nil {
		return nil, err
	}

	out := make([][]int32, len(f.Subframes))
	for i, sub := range f.Subframes {
		out[i] = sub.Samples
	}
	return out, nil
}

func (s streamReader) close() error { return s.stream.Close() }

type source struct {
	dec        blockReader
	sampleRate int
	channels   int
	scale      float32

	block [][]int32
	pos   int
	eof   bool
}

var _ audio.Source = (*source)(nil)

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) BufSize() int    { return 4096 * s.channels }

func (s *source) Close() error {
	err := s.dec.close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	frames := len(dst) / s.channels
	written := 0

	for written < frames {
		if s.block == nil || s.pos >= len(s.block[0]) {
			if s.eof {
				break
			}

			block, err := s.dec.next()
			if err == io.EOF {
				s.eof = true
				break
			}
			if err != nil {
				return written * s.channels, fmt.Errorf("%w", err)
			}
			if len(block) != s.channels {
				return written * s.channels, fmt.Errorf("%w: frame has %d channels, stream %d",
					ErrNotFlac, len(block), s.channels)
			}
			s.block, s.pos = block, 0
			continue
		}

		n := min(frames-written, len(s.block[0])-s.pos)
		out := dst[written*s.channels:]
		for f := range n {
			for c := range s.channels {
				out[f*s.channels+c] = float32(s.block[c][s.pos+f]) / s.scale
			}
		}
		s.pos += n
		written += n
	}

	if written == 0 && s.eof {
		return 0, io.EOF
	}
	return written * s.channels, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFlac, err)
	}

	info := stream.Info
	if info == nil || info.NChannels == 0 || info.SampleRate == 0 {
		_ = stream.Close()
		return nil, ErrNotFlac
	}

	depth := int(info.BitsPerSample)
	if depth < 4 || depth > 32 {
		_ = stream.Close()
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, depth)
	}

	return &source{
		dec:        streamReader{stream: stream},
		sampleRate: int(info.SampleRate),
		channels:   int(info.NChannels),
		scale:      float32(int64(1) << (depth - 1)),
	}, nil
}
