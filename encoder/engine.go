// SPDX-License-Identifier: EPL-2.0

package encoder

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/braheezy/shine-mp3/pkg/mp3"
)

const (
	// DefaultBitrateKbps is used when Options.BitrateKbps is zero.
	DefaultBitrateKbps = 128

	MinBitrateKbps = 8
	MaxBitrateKbps = 320
)

const (
	granuleSize = 576

	// part2_3_length is a 12 bit field; keep a byte of room for the
	// alignment stuffing the encoder adds at the end of a frame.
	maxGranuleBits = 4095 - 8

	// shine only carries the MPEG-2.5 rates up to this bitrate.
	maxMPEG25Kbps = 64
)

// mp3SampleRates lists the rates MPEG-1, 2 and 2.5 Layer III can carry.
var mp3SampleRates = []int{8000, 11025, 12000, 16000, 22050, 24000, 32000, 44100, 48000}

// IsMP3SampleRate reports whether rate can be encoded without resampling.
func IsMP3SampleRate(rate int) bool {
	return slices.Contains(mp3SampleRates, rate)
}

// EngineConfig is what an engine is constructed with.
type EngineConfig struct {
	SampleRate  int
	Channels    int
	BitrateKbps int
	Mode        Mode
}

// Engine is a streaming MP3 codec. Encode takes interleaved samples of one
// block and returns whatever bytes became ready; Flush drains the rest.
type Engine interface {
	Encode(samples []int16) ([]byte, error)
	Flush() ([]byte, error)
}

// EngineFactory builds an Engine or reports an unsupported configuration.
type EngineFactory func(cfg EngineConfig) (Engine, error)

// layerIII returns the header bitrate table and granules per frame used at
// sampleRate.
func layerIII(sampleRate int) ([16]int, int) {
	switch {
	case sampleRate >= 32000:
		return bitratesV1, 2
	case sampleRate >= 16000:
		return bitratesV2, 1
	}

	table := bitratesV2
	for i, br := range table {
		if br > maxMPEG25Kbps {
			table[i] = 0
		}
	}
	return table, 1
}

// sideInfoBits of one frame, in bits.
func sideInfoBits(granules, channels int) int {
	if granules == 2 {
		if channels == 1 {
			return (4 + 17) * 8
		}
		return (4 + 32) * 8
	}
	if channels == 1 {
		return (4 + 9) * 8
	}
	return (4 + 17) * 8
}

// granuleFits reports whether the mean bit budget of one granule and channel
// at kbps stays within what a granule can hold.
func granuleFits(sampleRate, channels, granules, kbps int) bool {
	slots := granules*granuleSize*kbps*1000/(8*sampleRate) + 1
	mean := (slots*8 - sideInfoBits(granules, channels)) / granules / channels
	return mean <= maxGranuleBits
}

// bitrateIndex returns the header index of kbps at sampleRate and channels, or
// -1 when the encoder cannot write it.
func bitrateIndex(sampleRate, channels, kbps int) int {
	table, granules := layerIII(sampleRate)
	i := slices.Index(table[:], kbps)
	if kbps == 0 || i < 0 || !granuleFits(sampleRate, channels, granules, kbps) {
		return -1
	}
	return i
}

// FitBitrate returns the highest bitrate not above kbps that can be written
// at sampleRate with channels. When kbps is below every valid bitrate for the
// rate the lowest one is returned. Low sample rates cap the bitrate: MPEG-2.5
// stops at 64 kbps and a mono granule holds at most 4095 bits.
func FitBitrate(sampleRate, channels, kbps int) (int, error) {
	if kbps < MinBitrateKbps || kbps > MaxBitrateKbps {
		return 0, fmt.Errorf("%w: %d kbps", ErrUnsupportedBitrate, kbps)
	}
	if err := validate(EngineConfig{SampleRate: sampleRate, Channels: channels}); err != nil {
		return 0, err
	}

	table, granules := layerIII(sampleRate)
	best := 0
	for _, br := range table {
		if br == 0 {
			continue
		}
		if best != 0 && br > kbps {
			break
		}
		if !granuleFits(sampleRate, channels, granules, br) {
			break
		}
		best = br
	}
	if best == 0 {
		return 0, fmt.Errorf("%w: nothing fits %d Hz %d ch", ErrUnsupportedBitrate, sampleRate, channels)
	}
	return best, nil
}

// NewShineEngine is the default EngineFactory, backed by the pure Go shine
// port. cfg.BitrateKbps must be valid for the rate; see FitBitrate.
func NewShineEngine(cfg EngineConfig) (Engine, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	index := bitrateIndex(cfg.SampleRate, cfg.Channels, cfg.BitrateKbps)
	if index < 0 || mp3.CheckConfig(cfg.SampleRate, cfg.BitrateKbps) < 0 {
		return nil, fmt.Errorf("%w: %d kbps at %d Hz %d ch",
			ErrUnsupportedBitrate, cfg.BitrateKbps, cfg.SampleRate, cfg.Channels)
	}

	enc := mp3.NewEncoder(cfg.SampleRate, cfg.Channels)
	setBitrate(enc, cfg.BitrateKbps, index)

	return &shineEngine{
		enc:      enc,
		channels: cfg.Channels,
		// one frame of interleaved samples
		frame: int(enc.Mpeg.GranulesPerFrame) * granuleSize * cfg.Channels,
	}, nil
}

// setBitrate replaces the 128 kbps NewEncoder starts with and recomputes the
// frame slot counts derived from it.
func setBitrate(enc *mp3.Encoder, kbps, index int) {
	enc.Mpeg.Bitrate = int64(kbps)
	enc.Mpeg.BitrateIndex = int64(index)

	avg := float64(enc.Mpeg.GranulesPerFrame) * mp3.GRANULE_SIZE / float64(enc.Wave.SampleRate) *
		(float64(kbps) * 1000 / float64(enc.Mpeg.BitsPerSlot))
	enc.Mpeg.WholeSlotsPerFrame = int64(avg)
	enc.Mpeg.FracSlotsPerFrame = avg - float64(enc.Mpeg.WholeSlotsPerFrame)
	enc.Mpeg.Slot_lag = -enc.Mpeg.FracSlotsPerFrame
	if enc.Mpeg.FracSlotsPerFrame == 0 {
		enc.Mpeg.Padding = 0
	}
}

func validate(cfg EngineConfig) error {
	if !IsMP3SampleRate(cfg.SampleRate) {
		return fmt.Errorf("%w: %d Hz", ErrUnsupportedSampleRate, cfg.SampleRate)
	}
	if cfg.Channels < 1 || cfg.Channels > 2 {
		return fmt.Errorf("%w: %d", ErrUnsupportedChannels, cfg.Channels)
	}
	return nil
}

type shineEngine struct {
	enc      *mp3.Encoder
	channels int
	frame    int
	out      bytes.Buffer

	// framed counts the bytes of every frame encoded so far, emitted the
	// bytes handed out. shine keeps up to three bytes of the last frame in
	// its bit cache.
	framed  int
	emitted int
}

var _ Engine = (*shineEngine)(nil)

func (s *shineEngine) Encode(samples []int16) (out []byte, err error) {
	// Pad the final block with silence so it covers whole frames.
	if want := BlockFrames * s.channels; len(samples) < want {
		padded := make([]int16, want)
		copy(padded, samples)
		samples = padded
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("shine: %v", r)
		}
	}()

	s.out.Reset()
	if err := s.write(samples); err != nil {
		return nil, err
	}
	s.emitted += s.out.Len()
	return bytes.Clone(s.out.Bytes()), nil
}

// write feeds samples one frame at a time. Write strides two frames worth of
// samples per pass, which skips every other mono frame at MPEG-2 rates.
func (s *shineEngine) write(samples []int16) error {
	for i := 0; i+s.frame <= len(samples); i += s.frame {
		if err := s.enc.Write(&s.out, samples[i:i+s.frame]); err != nil {
			return fmt.Errorf("shine: %w", err)
		}
		s.framed += int(s.enc.Mpeg.BitsPerFrame / 8)
	}
	return nil
}

// Flush pushes the cached tail of the last frame out by encoding one frame
// of silence, and returns only that tail.
func (s *shineEngine) Flush() (out []byte, err error) {
	owed := s.framed - s.emitted
	if owed <= 0 {
		return nil, nil
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("shine: %v", r)
		}
	}()

	s.out.Reset()
	if err := s.write(make([]int16, s.frame)); err != nil {
		return nil, err
	}
	if s.out.Len() < owed {
		return nil, fmt.Errorf("shine: %d of %d tail bytes", s.out.Len(), owed)
	}
	s.emitted += owed
	return bytes.Clone(s.out.Bytes()[:owed]), nil
}
