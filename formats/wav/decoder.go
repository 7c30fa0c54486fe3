// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/riff"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/audpipe/audio"
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
)

// pcmReader is the part of gowav.Decoder used by source, to allow testing.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	dec        pcmReader
	sampleRate int
	channels   int
	bitDepth   int
	intBuf     *goaudio.IntBuffer
}

var _ audio.Source = (*source)(nil)

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }

func (s *source) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}
	return 4096
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{Data: make([]int, len(dst))}
	}
	s.intBuf.Data = s.intBuf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("%w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	// 8-bit WAV is unsigned, wider depths are signed.
	switch s.bitDepth {
	case 8:
		for i := range n {
			dst[i] = float32(s.intBuf.Data[i]-128) / 128.0
		}
	default:
		scale := float32(int64(1) << (s.bitDepth - 1))
		for i := range n {
			dst[i] = float32(s.intBuf.Data[i]) / scale
		}
	}

	return n, nil
}

type Decoder struct{}

// Decode parses the RIFF headers with go-audio/wav. Non seekable readers are
// buffered in memory first.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	if err := checkRIFF(rs); err != nil {
		return nil, err
	}

	code, err := formatCode(rs)
	if err != nil {
		return nil, err
	}
	if code != formatPCM {
		return nil, fmt.Errorf("%w: format code %d", ErrOnlyPCMSupported, code)
	}

	dec := gowav.NewDecoder(rs)
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptHeader, err)
		}
		return nil, ErrCorruptHeader
	}

	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptHeader, err)
	}

	switch dec.BitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d-bit samples", ErrUnsupportedWavLayout, dec.BitDepth)
	}

	if dec.NumChans == 0 || dec.SampleRate == 0 {
		return nil, ErrUnsupportedWavLayout
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavChunks, err)
	}

	return &source{
		dec:        dec,
		sampleRate: int(dec.SampleRate),
		channels:   int(dec.NumChans),
		bitDepth:   int(dec.BitDepth),
	}, nil
}

// checkRIFF verifies the RIFF/WAVE magic and rewinds rs.
func checkRIFF(rs io.ReadSeeker) error {
	header := make([]byte, 12)
	if _, err := io.ReadFull(rs, header); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptHeader, err)
	}

	if !bytes.Equal(header[:4], []byte("RIFF")) || !bytes.Equal(header[8:12], []byte("WAVE")) {
		return ErrNotWavFile
	}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// formatCode returns the sample format of the fmt chunk, looking through
// WAVE_FORMAT_EXTENSIBLE to its SubFormat GUID, and rewinds rs.
func formatCode(rs io.ReadSeeker) (code uint16, err error) {
	defer func() {
		if _, serr := rs.Seek(0, io.SeekStart); serr != nil && err == nil {
			err = fmt.Errorf("%w", serr)
		}
	}()

	p := riff.New(rs)
	if err := p.ParseHeaders(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCorruptHeader, err)
	}

	for {
		ch, err := p.NextChunk()
		if err != nil {
			return 0, fmt.Errorf("%w: no fmt chunk: %w", ErrCorruptHeader, err)
		}
		if ch.ID != riff.FmtID {
			ch.Drain()
			continue
		}

		if ch.Size < 16 {
			return 0, fmt.Errorf("%w: fmt chunk of %d bytes", ErrCorruptHeader, ch.Size)
		}
		body := make([]byte, min(ch.Size, 40))
		if _, err := io.ReadFull(ch, body); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrCorruptHeader, err)
		}

		code := binary.LittleEndian.Uint16(body)
		if code != formatExtensible {
			return code, nil
		}
		// cbSize, valid bits and channel mask precede the GUID, whose
		// first two bytes are the format code.
		if len(body) < 40 {
			return 0, fmt.Errorf("%w: extensible fmt chunk of %d bytes", ErrCorruptHeader, ch.Size)
		}
		return binary.LittleEndian.Uint16(body[24:26]), nil
	}
}
