// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audpipe/utils"
)

// Resampler streams src at another sample rate using cubic interpolation.
// It preserves the channel count and applies a one-pole low-pass filter
// when downsampling.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source frames per output frame
	channels int

	// win[0..3] hold frames t-1, t0, t+1, t+2 around the read position.
	win   [4][]float32
	valid [4]bool
	pos   float64

	srcBuf []float32
	primed bool
	eof    bool

	lowPass bool
	alpha   float32
	state   []float32
}

var _ Source = (*Resampler)(nil)

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		ratio:    ratio,
		channels: channels,
		srcBuf:   make([]float32, channels),
		lowPass:  ratio > 1,
		alpha:    0.5,
		state:    make([]float32, channels),
	}
	for i := range r.win {
		r.win[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	err := r.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// readFrame reads one source frame into dst, filtering it when downsampling.
func (r *Resampler) readFrame(dst []float32) (bool, error) {
	n, err := r.src.ReadSamples(r.srcBuf)
	got := n >= r.channels
	if got {
		if r.lowPass {
			for c := range r.channels {
				r.state[c] = r.alpha*r.srcBuf[c] + (1-r.alpha)*r.state[c]
			}
			copy(dst, r.state)
		} else {
			copy(dst, r.srcBuf)
		}
	}

	if err == io.EOF {
		r.eof = true
		return got, nil
	}
	if err != nil {
		return got, fmt.Errorf("%w", err)
	}
	return got, nil
}

// prime loads the first frames. The frame before the start repeats the
// first frame.
func (r *Resampler) prime() error {
	r.primed = true

	n, err := r.src.ReadSamples(r.srcBuf)
	if n < r.channels {
		if err != nil && err != io.EOF {
			return fmt.Errorf("%w", err)
		}
		r.eof = true
		return io.EOF
	}

	// Seed the filter with the first frame to avoid a fade-in.
	copy(r.state, r.srcBuf)
	copy(r.win[0], r.srcBuf)
	copy(r.win[1], r.srcBuf)
	r.valid[0], r.valid[1] = true, true

	if err == io.EOF {
		r.eof = true
	} else if err != nil {
		return fmt.Errorf("%w", err)
	}

	for i := 2; i < len(r.win) && !r.eof; i++ {
		got, err := r.readFrame(r.win[i])
		if err != nil {
			return err
		}
		r.valid[i] = got
	}

	return nil
}

// advance shifts the window one source frame forward. It returns io.EOF once
// no interval is left to interpolate.
func (r *Resampler) advance() error {
	first := r.win[0]
	copy(r.win[:], r.win[1:])
	r.win[3] = first
	copy(r.valid[:], r.valid[1:])
	r.valid[3] = false

	if !r.eof {
		got, err := r.readFrame(r.win[3])
		if err != nil {
			return err
		}
		r.valid[3] = got
	}

	if !r.valid[2] {
		return io.EOF
	}
	return nil
}

// ReadSamples produces interleaved samples at the destination rate.
// len(dst) must be a multiple of Channels().
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	frames := len(dst) / r.channels
	written := 0

	for written < frames {
		for r.pos >= 1 {
			r.pos--
			if err := r.advance(); err != nil {
				if err == io.EOF {
					return written * r.channels, io.EOF
				}
				return written * r.channels, err
			}
		}

		if !r.valid[1] || !r.valid[2] {
			return written * r.channels, io.EOF
		}

		t := float32(r.pos)
		out := dst[written*r.channels:]
		for c := range r.channels {
			y0 := r.win[1][c]
			if r.valid[0] {
				y0 = r.win[0][c]
			}
			y3 := r.win[2][c]
			if r.valid[3] {
				y3 = r.win[3][c]
			}
			out[c] = utils.CubicInterpolate(y0, r.win[1][c], r.win[2][c], y3, t)
		}

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
