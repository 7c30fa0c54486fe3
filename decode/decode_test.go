// SPDX-License-Identifier: EPL-2.0

package decode_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/decode"
	"github.com/ik5/audpipe/formats/wav"
	"github.com/ik5/audpipe/internal/audiotest"
	"github.com/ik5/audpipe/media"
)

func wavFile(t *testing.T, name string, rate, channels int, samples []int16) media.File {
	t.Helper()

	var buf bytes.Buffer
	if err := wav.WriteWAV16(&buf, rate, channels, samples); err != nil {
		t.Fatalf("WriteWAV16() error = %v", err)
	}
	return media.NewFile(name, "audio/wav", buf.Bytes())
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestNew_RegistersAllFormats(t *testing.T) {
	t.Parallel()

	d := decode.New(decode.Options{Logger: quiet()})
	for _, f := range media.Formats() {
		if _, ok := d.Registry().Get(f.String()); !ok {
			t.Errorf("no decoder for %s", f)
		}
	}
}

func TestDecode_WAV(t *testing.T) {
	t.Parallel()

	d := decode.New(decode.Options{Logger: quiet()})
	f := wavFile(t, "tone.wav", 8000, 2, []int16{16384, -16384, 0, 0, 32767, -32768})

	pcm, err := d.Decode(context.Background(), f)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if pcm.SampleRate != 8000 || pcm.Channels != 2 || pcm.Len() != 3 {
		t.Fatalf("got %d Hz %d ch %d frames", pcm.SampleRate, pcm.Channels, pcm.Len())
	}
	if pcm.Samples[0][0] != 0.5 || pcm.Samples[1][0] != -0.5 {
		t.Errorf("frame 0 = (%v, %v), want (0.5, -0.5)", pcm.Samples[0][0], pcm.Samples[1][0])
	}
	if pcm.Samples[1][2] != -1 {
		t.Errorf("Samples[1][2] = %v, want -1", pcm.Samples[1][2])
	}
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	d := decode.New(decode.Options{Logger: quiet()})

	tests := []struct {
		name string
		file media.File
		want []error
	}{
		{"corrupt wav", media.NewFile("broken.wav", "", []byte("definitely not riff")),
			[]error{decode.ErrDecode, wav.ErrNotWavFile}},
		{"unknown extension", media.NewFile("notes.txt", "", []byte("hello")),
			[]error{decode.ErrDecode, media.ErrUnsupportedFormat}},
		{"header only wav", wavFile(t, "empty.wav", 8000, 1, nil),
			[]error{decode.ErrDecode}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pcm, err := d.Decode(context.Background(), tt.file)
			if pcm != nil {
				t.Error("Decode() returned PCM on failure")
			}
			for _, want := range tt.want {
				if !errors.Is(err, want) {
					t.Errorf("Decode() error = %v, want %v", err, want)
				}
			}
		})
	}
}

type stubDecoder struct {
	src *audiotest.MockSource
}

func (s stubDecoder) Decode(io.Reader) (audio.Source, error) { return s.src, nil }

func TestDecode_ClosesSource(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSineSource(16000, 1, 1600, 440)
	r := audio.NewRegistry()
	r.Register(media.FLAC.String(), stubDecoder{src: src})

	d := decode.NewWithRegistry(r, quiet())
	pcm, err := d.Decode(context.Background(), media.NewFile("a.flac", "", []byte{0}))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if pcm.Len() != 1600 {
		t.Errorf("frames = %d, want 1600", pcm.Len())
	}
	if !src.Closed {
		t.Error("source was not closed")
	}
}

func TestDecode_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := decode.New(decode.Options{Logger: quiet()})
	_, err := d.Decode(ctx, wavFile(t, "a.wav", 8000, 1, []int16{1}))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Decode() error = %v, want context.Canceled", err)
	}
}

func TestDecode_MissingRegistration(t *testing.T) {
	t.Parallel()

	d := decode.NewWithRegistry(audio.NewRegistry(), quiet())
	_, err := d.Decode(context.Background(), wavFile(t, "a.wav", 8000, 1, []int16{1}))
	if !errors.Is(err, decode.ErrDecode) {
		t.Errorf("Decode() error = %v, want ErrDecode", err)
	}
}
