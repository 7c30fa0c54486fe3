// SPDX-License-Identifier: EPL-2.0

package decode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/formats/aiff"
	"github.com/ik5/audpipe/formats/ffmpeg"
	"github.com/ik5/audpipe/formats/flac"
	"github.com/ik5/audpipe/formats/mp3"
	"github.com/ik5/audpipe/formats/vorbis"
	"github.com/ik5/audpipe/formats/wav"
	"github.com/ik5/audpipe/media"
)

// ErrDecode wraps every failure to turn a file into PCM.
var ErrDecode = errors.New("decode failed")

type Options struct {
	// FFmpegPath and FFprobePath locate the binaries used for containers
	// without a native decoder. Empty means $PATH lookup.
	FFmpegPath  string
	FFprobePath string

	Logger *slog.Logger
}

// Decoder turns a media.File into planar PCM.
type Decoder struct {
	registry *audio.Registry
	logger   *slog.Logger
}

// New returns a Decoder with every built-in format registered.
func New(opts Options) *Decoder {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := audio.NewRegistry()
	r.Register(media.WAV.String(), wav.Decoder{})
	r.Register(media.MP3.String(), mp3.Decoder{})
	r.Register(media.Ogg.String(), vorbis.Decoder{})
	r.Register(media.FLAC.String(), flac.Decoder{})
	r.Register(media.AIFF.String(), aiff.Decoder{})

	ff := ffmpeg.New(opts.FFmpegPath, opts.FFprobePath)
	for _, f := range []media.Format{media.Opus, media.M4A, media.WebM, media.MP4} {
		r.Register(f.String(), ff)
	}

	return &Decoder{registry: r, logger: logger}
}

// NewWithRegistry uses r as is.
func NewWithRegistry(r *audio.Registry, logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{registry: r, logger: logger}
}

// Registry exposes the decoder table so callers can override entries.
func (d *Decoder) Registry() *audio.Registry { return d.registry }

// Decode resolves the format of f and decodes it completely.
func (d *Decoder) Decode(ctx context.Context, f media.File) (*audio.PCMBuffer, error) {
	format, err := media.FormatOf(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return d.DecodeFormat(ctx, f, format)
}

// DecodeFormat decodes f as format, skipping detection.
func (d *Decoder) DecodeFormat(ctx context.Context, f media.File, format media.Format) (*audio.PCMBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dec, ok := d.registry.Get(format.String())
	if !ok {
		return nil, fmt.Errorf("%w: no decoder for %s", ErrDecode, format)
	}

	src, err := audio.DecodeWith(ctx, dec, media.Reader(f))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, f.Name(), err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			d.logger.Debug("closing source", slog.String("file", f.Name()), slog.Any("error", cerr))
		}
	}()

	pcm, err := audio.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, f.Name(), err)
	}

	d.logger.Debug("decoded",
		slog.String("file", f.Name()),
		slog.String("format", format.String()),
		slog.Int("sample_rate", pcm.SampleRate),
		slog.Int("channels", pcm.Channels),
		slog.Int("frames", pcm.Len()),
	)

	return pcm, nil
}
