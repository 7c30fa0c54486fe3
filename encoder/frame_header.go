// SPDX-License-Identifier: EPL-2.0

package encoder

const headerLen = 4

// Layer III bitrates in kbps by bitrate index.
var (
	bitratesV1  = [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0}
	bitratesV2  = [16]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0}
	sampleRates = map[byte][3]int{
		3: {44100, 48000, 32000}, // MPEG-1
		2: {22050, 24000, 16000}, // MPEG-2
		0: {11025, 12000, 8000},  // MPEG-2.5
	}
)

// frameLength returns the size in bytes of the Layer III frame whose header
// starts h, or false when h is not such a header.
func frameLength(h []byte) (int, bool) {
	if len(h) < headerLen || h[0] != 0xFF || h[1]&0xE0 != 0xE0 {
		return 0, false
	}

	version := (h[1] >> 3) & 0x03
	layer := (h[1] >> 1) & 0x03
	if layer != 0x01 {
		return 0, false
	}

	rates, ok := sampleRates[version]
	if !ok {
		return 0, false
	}

	rateIdx := (h[2] >> 2) & 0x03
	if rateIdx == 3 {
		return 0, false
	}
	rate := rates[rateIdx]

	brIdx := h[2] >> 4
	bitrate := bitratesV1[brIdx]
	coeff := 144
	if version != 3 {
		bitrate = bitratesV2[brIdx]
		coeff = 72
	}
	if bitrate == 0 {
		return 0, false
	}

	padding := int((h[2] >> 1) & 0x01)
	return coeff*bitrate*1000/rate + padding, true
}

// frameHeaderWriter sets the channel mode of every MPEG frame in a byte
// stream. Frames may span buffers, so it keeps the position across calls and
// holds back up to three trailing bytes that may begin a header.
type frameHeaderWriter struct {
	mode  Mode
	skip  int
	carry []byte
}

func newFrameHeaderWriter(mode Mode) *frameHeaderWriter {
	return &frameHeaderWriter{mode: mode}
}

// rewrite patches buf in place and returns the bytes ready to be emitted.
func (w *frameHeaderWriter) rewrite(buf []byte) []byte {
	data := buf
	if len(w.carry) > 0 {
		data = append(w.carry, buf...)
		w.carry = nil
	}

	i := 0
	for i < len(data) {
		if w.skip > 0 {
			n := min(w.skip, len(data)-i)
			i += n
			w.skip -= n
			continue
		}

		if len(data)-i < headerLen {
			if !headerPrefix(data[i:]) {
				i++
				continue
			}
			w.carry = append([]byte(nil), data[i:]...)
			return data[:i]
		}

		size, ok := frameLength(data[i:])
		if !ok {
			i++
			continue
		}

		w.patch(data[i : i+headerLen])
		w.skip = size
	}

	return data
}

// headerPrefix reports whether p could be the start of a frame header.
func headerPrefix(p []byte) bool {
	if len(p) == 0 || p[0] != 0xFF {
		return false
	}
	return len(p) < 2 || p[1]&0xE0 == 0xE0
}

// patch rewrites plain stereo (mode 00) to joint stereo with both intensity
// and M/S off, which decodes identically.
func (w *frameHeaderWriter) patch(h []byte) {
	if w.mode != JointStereo {
		return
	}
	if h[3]>>6 == 0x00 {
		h[3] = h[3]&0x0F | 0x40
	}
}

// flush returns the bytes held back by rewrite.
func (w *frameHeaderWriter) flush() []byte {
	out := w.carry
	w.carry = nil
	return out
}
