// SPDX-License-Identifier: EPL-2.0

package encoder

import "fmt"

type handleState int

const (
	stateInitialized handleState = iota
	stateSubmitting
	stateFlushed
	stateFailed
)

func (s handleState) String() string {
	return [...]string{"initialized", "submitting", "flushed", "failed"}[s]
}

// Handle drives one Engine through initialized -> submitting -> flushed.
// Blocks are accepted until Flush, which may be called exactly once. Any
// engine error leaves the handle failed.
type Handle struct {
	engine  Engine
	headers *frameHeaderWriter
	cfg     EngineConfig
	state   handleState
}

// NewHandle constructs the engine for cfg with factory.
func NewHandle(cfg EngineConfig, factory EngineFactory) (*Handle, error) {
	if factory == nil {
		factory = NewShineEngine
	}

	engine, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	return &Handle{
		engine:  engine,
		headers: newFrameHeaderWriter(cfg.Mode),
		cfg:     cfg,
	}, nil
}

// Submit encodes one block of interleaved samples.
func (h *Handle) Submit(block []int16) ([]byte, error) {
	if h.state != stateInitialized && h.state != stateSubmitting {
		return nil, fmt.Errorf("%w: submit while %s", ErrHandleState, h.state)
	}
	if len(block)%h.cfg.Channels != 0 {
		h.state = stateFailed
		return nil, fmt.Errorf("%w: block of %d samples for %d channels", ErrEncode, len(block), h.cfg.Channels)
	}

	h.state = stateSubmitting
	out, err := h.engine.Encode(block)
	if err != nil {
		h.state = stateFailed
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	return h.headers.rewrite(out), nil
}

// Flush drains the engine. It may be called once.
func (h *Handle) Flush() ([]byte, error) {
	if h.state != stateInitialized && h.state != stateSubmitting {
		return nil, fmt.Errorf("%w: flush while %s", ErrHandleState, h.state)
	}

	out, err := h.engine.Flush()
	if err != nil {
		h.state = stateFailed
		return nil, fmt.Errorf("%w: flush: %w", ErrEncode, err)
	}
	h.state = stateFlushed

	out = h.headers.rewrite(out)
	return append(out, h.headers.flush()...), nil
}

// Mode returns the channel mode frames are written with.
func (h *Handle) Mode() Mode { return h.cfg.Mode }
