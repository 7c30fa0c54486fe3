// SPDX-License-Identifier: EPL-2.0

package encoder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/utils"
)

// BlockFrames is the number of sample frames submitted per call, two MP3
// granules of 576.
const BlockFrames = 1152

type Options struct {
	// BitrateKbps defaults to DefaultBitrateKbps. It is lowered to the
	// nearest bitrate the output rate and channels allow, see FitBitrate.
	BitrateKbps int
	// SampleRate resamples before encoding when set and different from the
	// input rate.
	SampleRate int
	// Mono downmixes multichannel input before encoding.
	Mono bool

	// Engine defaults to NewShineEngine.
	Engine EngineFactory
	Logger *slog.Logger
}

// Encoded is the MP3 stream as emitted, one buffer per non-empty engine
// output. The flush output, when non-empty, is last.
type Encoded struct {
	Frames      [][]byte
	SampleRate  int
	Channels    int
	Mode        Mode
	BitrateKbps int
}

// Len is the total size in bytes.
func (e *Encoded) Len() int {
	n := 0
	for _, f := range e.Frames {
		n += len(f)
	}
	return n
}

// Bytes concatenates the buffers.
func (e *Encoded) Bytes() []byte {
	out := make([]byte, 0, e.Len())
	for _, f := range e.Frames {
		out = append(out, f...)
	}
	return out
}

// Encode converts pcm to MP3. On failure no partial output is returned.
func Encode(ctx context.Context, pcm *audio.PCMBuffer, opts Options) (*Encoded, error) {
	if pcm == nil || pcm.Channels < 1 || len(pcm.Samples) != pcm.Channels {
		return nil, fmt.Errorf("%w: %w", ErrEncode, audio.ErrInvalidFormat)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pcm, err := prepare(pcm, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	bitrate := opts.BitrateKbps
	if bitrate == 0 {
		bitrate = DefaultBitrateKbps
	}
	bitrate, err = FitBitrate(pcm.SampleRate, pcm.Channels, bitrate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	cfg := EngineConfig{
		SampleRate:  pcm.SampleRate,
		Channels:    pcm.Channels,
		BitrateKbps: bitrate,
		Mode:        ModeFor(pcm.Channels),
	}

	h, err := NewHandle(cfg, opts.Engine)
	if err != nil {
		return nil, err
	}

	enc := &Encoded{
		SampleRate:  cfg.SampleRate,
		Channels:    cfg.Channels,
		Mode:        cfg.Mode,
		BitrateKbps: cfg.BitrateKbps,
	}

	total := pcm.Len()
	block := make([]int16, 0, BlockFrames*pcm.Channels)

	for start := 0; start < total; start += BlockFrames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frames := min(BlockFrames, total-start)
		block = utils.InterleaveInt16(block[:0], pcm.Samples, start, frames)

		out, err := h.Submit(block)
		if err != nil {
			return nil, err
		}
		if len(out) > 0 {
			enc.Frames = append(enc.Frames, out)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := h.Flush()
	if err != nil {
		return nil, err
	}
	if len(out) > 0 {
		enc.Frames = append(enc.Frames, out)
	}

	logger.Debug("encoded",
		slog.Int("sample_rate", enc.SampleRate),
		slog.Int("channels", enc.Channels),
		slog.String("mode", enc.Mode.String()),
		slog.Int("bitrate_kbps", enc.BitrateKbps),
		slog.Int("bytes", enc.Len()),
	)

	return enc, nil
}

// prepare applies the optional downmix and resampling.
func prepare(pcm *audio.PCMBuffer, opts Options) (*audio.PCMBuffer, error) {
	downmix := opts.Mono && pcm.Channels > 1
	resample := opts.SampleRate > 0 && opts.SampleRate != pcm.SampleRate
	if !downmix && !resample {
		return pcm, nil
	}
	if pcm.Len() == 0 {
		return pcm, nil
	}

	var src audio.Source = audio.NewBufferSource(pcm)
	if downmix {
		src = audio.NewMonoMixer(src)
	}
	if resample {
		if !IsMP3SampleRate(opts.SampleRate) {
			return nil, fmt.Errorf("%w: %d Hz", ErrUnsupportedSampleRate, opts.SampleRate)
		}
		src = audio.NewResampler(src, opts.SampleRate)
	}

	return audio.ReadAll(src)
}
