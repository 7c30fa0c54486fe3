// SPDX-License-Identifier: EPL-2.0

package ffmpeg

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ik5/audpipe/audio"
)

var (
	ErrNoAudioStream = errors.New("no audio stream")
	ErrProbe         = errors.New("ffprobe failed")
	ErrTranscode     = errors.New("ffmpeg failed")
)

// Runner executes name with args and collects stdout.
type Runner func(ctx context.Context, stdout io.Writer, name string, args ...string) error

// Decoder decodes anything ffmpeg understands (opus, m4a, webm, mp4, ...) by
// transcoding the first audio stream to 32-bit float PCM.
type Decoder struct {
	// FFmpegPath and FFprobePath default to "ffmpeg" and "ffprobe" in $PATH.
	FFmpegPath  string
	FFprobePath string
	// TempDir holds the spooled input; empty means os.TempDir.
	TempDir string

	run Runner
}

var _ audio.ContextDecoder = (*Decoder)(nil)

func New(ffmpegPath, ffprobePath string) *Decoder {
	return &Decoder{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath}
}

// WithRunner returns a copy of d that uses run instead of os/exec.
func (d *Decoder) WithRunner(run Runner) *Decoder {
	c := *d
	c.run = run
	return &c
}

func (d *Decoder) Decode(r io.Reader) (audio.Source, error) {
	return d.DecodeContext(context.Background(), r)
}

// DecodeContext spools r to a temporary file: MP4 and M4A files with the
// moov atom after the media data cannot be read from a pipe.
func (d *Decoder) DecodeContext(ctx context.Context, r io.Reader) (audio.Source, error) {
	path, err := d.spool(r)
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	rate, channels, err := d.probe(ctx, path)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	err = d.runner()(ctx, &out, d.binary(d.FFmpegPath, "ffmpeg"),
		"-nostdin", "-hide_banner", "-loglevel", "error",
		"-i", path,
		"-map", "0:a:0",
		"-f", "f32le",
		"-acodec", "pcm_f32le",
		"-ar", strconv.Itoa(rate),
		"-ac", strconv.Itoa(channels),
		"pipe:1",
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTranscode, err)
	}

	return newSource(out.Bytes(), rate, channels), nil
}

func (d *Decoder) spool(r io.Reader) (string, error) {
	f, err := os.CreateTemp(d.TempDir, "audpipe-*.in")
	if err != nil {
		return "", fmt.Errorf("spooling input: %w", err)
	}

	_, err = io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("spooling input: %w", err)
	}
	return f.Name(), nil
}

type probeOutput struct {
	Streams []struct {
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
}

// probe reads the sample rate and channel count of the first audio stream.
func (d *Decoder) probe(ctx context.Context, path string) (int, int, error) {
	var out bytes.Buffer
	err := d.runner()(ctx, &out, d.binary(d.FFprobePath, "ffprobe"),
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=sample_rate,channels",
		"-of", "json",
		path,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrProbe, err)
	}

	return parseProbe(out.Bytes())
}

func parseProbe(raw []byte) (int, int, error) {
	var p probeOutput
	if err := json.Unmarshal(raw, &p); err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrProbe, err)
	}
	if len(p.Streams) == 0 {
		return 0, 0, ErrNoAudioStream
	}

	s := p.Streams[0]
	rate, err := strconv.Atoi(s.SampleRate)
	if err != nil || rate <= 0 || s.Channels <= 0 {
		return 0, 0, fmt.Errorf("%w: sample_rate=%q channels=%d", ErrNoAudioStream, s.SampleRate, s.Channels)
	}
	return rate, s.Channels, nil
}

func (d *Decoder) runner() Runner {
	if d.run != nil {
		return d.run
	}
	return execRun
}

func (d *Decoder) binary(path, fallback string) string {
	if path != "" {
		return path
	}
	return fallback
}

func execRun(ctx context.Context, stdout io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// source serves little-endian float32 samples from memory.
type source struct {
	data       []byte
	pos        int
	sampleRate int
	channels   int
}

var _ audio.Source = (*source)(nil)

func newSource(data []byte, rate, channels int) *source {
	// drop a trailing partial frame
	frame := 4 * channels
	data = data[:len(data)-len(data)%frame]
	return &source{data: data, sampleRate: rate, channels: channels}
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) BufSize() int    { return 4096 * s.channels }
func (s *source) Close() error    { return nil }

func (s *source) ReadSamples(dst []float32) (int, error) {
	remaining := (len(s.data) - s.pos) / 4
	if remaining == 0 {
		return 0, io.EOF
	}

	n := min(len(dst), remaining)
	for i := range n {
		bits := binary.LittleEndian.Uint32(s.data[s.pos:])
		dst[i] = float32(math.Max(-1, math.Min(1, float64(math.Float32frombits(bits)))))
		s.pos += 4
	}

	if s.pos >= len(s.data) {
		return n, io.EOF
	}
	return n, nil
}
