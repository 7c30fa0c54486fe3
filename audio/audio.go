// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"context"
	"io"
	"sort"
	"sync"
)

type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// ContextDecoder is implemented by decoders that block on external work
// (subprocesses, network) and can be cancelled.
type ContextDecoder interface {
	Decoder
	DecodeContext(ctx context.Context, r io.Reader) (Source, error)
}

// DecodeWith calls DecodeContext when d supports it and Decode otherwise.
func DecodeWith(ctx context.Context, d Decoder, r io.Reader) (Source, error) {
	if cd, ok := d.(ContextDecoder); ok {
		return cd.DecodeContext(ctx, r)
	}
	return d.Decode(r)
}

// Registry for decoders by format key (e.g., "audio/wav", "audio/mpeg").
type Registry struct {
	codecs map[string]Decoder

	mtx sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
	}
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[format] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	d, ok := r.codecs[format]
	return d, ok
}

// Formats returns the registered keys in sorted order.
func (r *Registry) Formats() []string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	keys := make([]string, 0, len(r.codecs))
	for k := range r.codecs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
