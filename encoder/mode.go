// SPDX-License-Identifier: EPL-2.0

package encoder

// Mode is the MPEG channel mode written to every frame.
type Mode int

const (
	Mono Mode = iota + 1
	JointStereo
)

// ModeFor picks the channel mode for a channel count: one channel is Mono,
// anything wider is JointStereo.
func ModeFor(channels int) Mode {
	if channels <= 1 {
		return Mono
	}
	return JointStereo
}

func (m Mode) String() string {
	switch m {
	case Mono:
		return "mono"
	case JointStereo:
		return "joint-stereo"
	default:
		return "unknown"
	}
}
