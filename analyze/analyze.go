// SPDX-License-Identifier: EPL-2.0

package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/media"
)

// DurationUnknown marks a clip whose duration could not be measured.
const DurationUnknown time.Duration = -1

// Metadata describes an input file.
type Metadata struct {
	Format          media.Format
	Size            int64
	Duration        time.Duration
	NeedsConversion bool
}

// HasDuration reports whether the duration probe succeeded.
func (m Metadata) HasDuration() bool { return m.Duration >= 0 }

// PCMDecoder is the part of decode.Decoder used to measure duration.
type PCMDecoder interface {
	DecodeFormat(ctx context.Context, f media.File, format media.Format) (*audio.PCMBuffer, error)
}

type Analyzer struct {
	decoder PCMDecoder
	logger  *slog.Logger
}

func New(decoder PCMDecoder, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{decoder: decoder, logger: logger}
}

// Analyze resolves the format of f and measures its duration by decoding it.
// Only an unsupported format is an error; a failed duration probe leaves
// Duration at DurationUnknown.
func (a *Analyzer) Analyze(ctx context.Context, f media.File) (Metadata, error) {
	md, err := Inspect(f)
	if err != nil {
		return Metadata{}, err
	}

	if a.decoder == nil {
		return md, nil
	}

	pcm, err := a.decoder.DecodeFormat(ctx, f, md.Format)
	switch {
	case err == nil:
		md.Duration = pcm.Duration()
	case ctx.Err() != nil:
		return Metadata{}, ctx.Err()
	default:
		a.logger.Debug("duration probe failed",
			slog.String("file", f.Name()),
			slog.String("format", md.Format.String()),
			slog.Any("error", err),
		)
	}

	return md, nil
}

// Inspect resolves format, size and NeedsConversion without decoding;
// Duration is DurationUnknown.
func Inspect(f media.File) (Metadata, error) {
	format, err := media.FormatOf(f)
	if err != nil {
		return Metadata{}, fmt.Errorf("analyzing %s: %w", f.Name(), err)
	}

	return Metadata{
		Format:          format,
		Size:            f.Size(),
		Duration:        DurationUnknown,
		NeedsConversion: NeedsConversion(format, f.Type()),
	}, nil
}

// NeedsConversion is false only when the file is already MP3, either by its
// resolved format or by its declared type.
func NeedsConversion(format media.Format, declared string) bool {
	if format.IsMP3() {
		return false
	}
	if f, ok := media.ParseTag(declared); ok && f.IsMP3() {
		return false
	}
	return true
}
