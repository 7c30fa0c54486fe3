// SPDX-License-Identifier: EPL-2.0

package audpipe

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ik5/audpipe/media"
	"github.com/ik5/audpipe/pipeline"
)

// Option configures Convert.
type Option func(*settings)

type settings struct {
	opts pipeline.Options
	req  pipeline.Request
}

// WithSplit allows splitting output above the ceiling into parts.
func WithSplit(split bool) Option {
	return func(s *settings) { s.req.Split = split }
}

// WithCategory restricts which inputs are converted.
func WithCategory(c pipeline.Category) Option {
	return func(s *settings) { s.req.Category = c }
}

// WithBitrate sets the MP3 bitrate in kbps.
func WithBitrate(kbps int) Option {
	return func(s *settings) { s.opts.Encoder.BitrateKbps = kbps }
}

// WithLimits sets the part size and the ceiling above which output is split.
func WithLimits(maxChunkBytes, ceilingBytes int) Option {
	return func(s *settings) {
		s.opts.MaxChunkBytes = maxChunkBytes
		s.opts.CeilingBytes = ceilingBytes
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.opts.Logger = l }
}

func WithObserver(o pipeline.Observer) Option {
	return func(s *settings) { s.opts.Observer = o }
}

// Convert runs a single job with a throwaway Pipeline. Long-running callers
// should build one pipeline.Pipeline and reuse it.
func Convert(ctx context.Context, f media.File, options ...Option) (pipeline.Job, error) {
	var s settings
	for _, o := range options {
		o(&s)
	}

	return pipeline.New(s.opts).Run(ctx, f, s.req)
}

// ConvertPath opens path and converts it.
func ConvertPath(ctx context.Context, path string, options ...Option) (pipeline.Job, error) {
	f, err := media.Open(path)
	if err != nil {
		return pipeline.Job{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return Convert(ctx, f, options...)
}
