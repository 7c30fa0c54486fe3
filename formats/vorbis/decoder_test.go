// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// mockOggReader simulates oggvorbis.Reader with interleaved values.
type mockOggReader struct {
	sampleRate int
	channels   int
	data       []float32
	offset     int
	err        error

	// eofWithData returns io.EOF along with the final values.
	eofWithData bool
}

func (m *mockOggReader) SampleRate() int { return m.sampleRate }
func (m *mockOggReader) Channels() int   { return m.channels }

func (m *mockOggReader) Read(p []float32) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.offset >= len(m.data) {
		return 0, io.EOF
	}
	n := copy(p, m.data[m.offset:])
	m.offset += n
	if m.eofWithData && m.offset >= len(m.data) {
		return n, io.EOF
	}
	return n, nil
}

func newSource(rate, channels int, data []float32) (*source, *mockOggReader) {
	m := &mockOggReader{sampleRate: rate, channels: channels, data: data}
	return &source{dec: m, sampleRate: rate, channels: channels}, m
}

func ramp(n int) []float32 {
	data := make([]float32, n)
	for i := range data {
		data[i] = float32(i%1000) / 1000
	}
	return data
}

// drain reads s to the end with a buffer of bufLen values.
func drain(t *testing.T, s *source, bufLen int) []float32 {
	t.Helper()

	var got []float32
	buf := make([]float32, bufLen)
	for range 100000 {
		n, err := s.ReadSamples(buf)
		got = append(got, buf[:n]...)
		if err == io.EOF {
			return got
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
		if n == 0 && bufLen >= s.channels {
			t.Fatal("ReadSamples() made no progress")
		}
	}
	t.Fatal("ReadSamples() never reached EOF")
	return nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	for _, data := range [][]byte{[]byte("OggS but not really a vorbis stream"), {}} {
		_, err := Decoder{}.Decode(bytes.NewReader(data))
		if !errors.Is(err, ErrNotVorbis) {
			t.Errorf("Decode(%q) error = %v, want ErrNotVorbis", data, err)
		}
	}
}

func TestSource_ReadSamples_WholeFrames(t *testing.T) {
	t.Parallel()

	data := []float32{0.1, -0.1, 0.2, -0.2, 0.3, -0.3}
	s := &source{
		dec:        &mockOggReader{sampleRate: 48000, channels: 2, data: data},
		sampleRate: 48000,
		channels:   2,
	}

	// An odd buffer is trimmed to whole frames.
	buf := make([]float32, 5)
	n, err := s.ReadSamples(buf)
	if err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if n != 4 {
		t.Fatalf("ReadSamples() n = %d, want 4", n)
	}
	for i := range n {
		if buf[i] != data[i] {
			t.Errorf("sample %d = %v, want %v", i, buf[i], data[i])
		}
	}

	n, _ = s.ReadSamples(buf)
	if n != 2 {
		t.Errorf("second ReadSamples() n = %d, want 2", n)
	}

	if n, err = s.ReadSamples(buf); n != 0 || err != io.EOF {
		t.Errorf("final ReadSamples() = %d, %v, want 0, EOF", n, err)
	}
}

func TestSource_ReadSamples_TooSmall(t *testing.T) {
	t.Parallel()

	s := &source{dec: &mockOggReader{channels: 6}, channels: 6}

	n, err := s.ReadSamples(make([]float32, 5))
	if n != 0 || err != nil {
		t.Errorf("ReadSamples() = %d, %v, want 0, nil", n, err)
	}
}

func TestSource_ReadSamples_Error(t *testing.T) {
	t.Parallel()

	s := &source{dec: &mockOggReader{channels: 1, err: io.ErrUnexpectedEOF}, channels: 1}

	_, err := s.ReadSamples(make([]float32, 4))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSamples() error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	for _, rate := range []int{8000, 16000, 22050, 44100, 48000, 96000} {
		s, _ := newSource(rate, 2, nil)
		if s.SampleRate() != rate {
			t.Errorf("SampleRate() = %d, want %d", s.SampleRate(), rate)
		}
		if s.Channels() != 2 {
			t.Errorf("Channels() = %d, want 2", s.Channels())
		}
		if s.BufSize() <= 0 {
			t.Errorf("BufSize() = %d, want positive", s.BufSize())
		}
		if err := s.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	}
}

func TestSource_ReadSizes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		channels    int
		values      int
		bufLen      int
		eofWithData bool
	}{
		{"mono one value", 1, 100, 1, false},
		{"mono odd buffer", 1, 100, 7, false},
		{"mono large buffer", 1, 100, 4096, false},
		{"mono eof with data", 1, 100, 5, true},
		{"stereo odd buffer", 2, 100, 5, false},
		{"stereo three values", 2, 100, 3, true},
		{"stereo large buffer", 2, 10000, 10000, false},
		{"stereo exact buffer eof with data", 2, 100, 100, true},
		{"5.1 uneven buffer", 6, 120, 13, false},
		{"7.1 eof with data", 8, 128, 20, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data := ramp(tt.values)
			s, m := newSource(48000, tt.channels, data)
			m.eofWithData = tt.eofWithData

			got := drain(t, s, tt.bufLen)
			if len(got) != len(data) {
				t.Fatalf("read %d values, want %d", len(got), len(data))
			}
			for i := range got {
				if got[i] != data[i] {
					t.Fatalf("value %d = %v, want %v", i, got[i], data[i])
				}
			}
		})
	}
}

func TestSource_EOFWithData(t *testing.T) {
	t.Parallel()

	data := []float32{0.1, 0.9, 0.2, 0.8}
	s, m := newSource(44100, 2, data)
	m.eofWithData = true

	buf := make([]float32, 8)
	n, err := s.ReadSamples(buf)
	if n != 4 || err != io.EOF {
		t.Fatalf("ReadSamples() = %d, %v, want 4, EOF", n, err)
	}
	for i := range n {
		if buf[i] != data[i] {
			t.Errorf("value %d = %v, want %v", i, buf[i], data[i])
		}
	}

	if n, err = s.ReadSamples(buf); n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() after EOF = %d, %v, want 0, EOF", n, err)
	}
}

func TestSource_ReadSamples_KeepsFrameBoundary(t *testing.T) {
	t.Parallel()

	// Each read must end on a frame so channels never slip.
	s, _ := newSource(48000, 6, ramp(600))
	buf := make([]float32, 17)
	for {
		n, err := s.ReadSamples(buf)
		if n%6 != 0 {
			t.Fatalf("ReadSamples() n = %d, not a whole number of frames", n)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	for _, bench := range []struct {
		name     string
		channels int
		bufLen   int
	}{
		{"mono", 1, 4096},
		{"stereo", 2, 4096},
		{"small buffer", 1, 64},
		{"large buffer", 2, 16384},
	} {
		b.Run(bench.name, func(b *testing.B) {
			s, m := newSource(44100, bench.channels, ramp(441000))
			dst := make([]float32, bench.bufLen)

			b.ReportAllocs()
			for b.Loop() {
				m.offset = 0
				_, _ = s.ReadSamples(dst)
			}
		})
	}
}
